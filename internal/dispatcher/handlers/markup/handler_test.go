package markup_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/markstorm/internal/dispatcher/execctx"
	"github.com/dshills/markstorm/internal/dispatcher/handler"
	mh "github.com/dshills/markstorm/internal/dispatcher/handlers/markup"
	"github.com/dshills/markstorm/internal/engine/buffer"
	"github.com/dshills/markstorm/internal/engine/selection"
	"github.com/dshills/markstorm/internal/input"
	"github.com/dshills/markstorm/internal/markup"
)

// deferredCollector keeps the last request so a test can answer it later.
type deferredCollector struct {
	req  *markup.Request
	done func(markup.Metadata) error
}

func (c *deferredCollector) Collect(req *markup.Request, done func(markup.Metadata) error) {
	c.req = req
	c.done = done
}

// syncCollector answers immediately, filling blanks from the seed.
type syncCollector struct {
	meta markup.Metadata
	err  error
}

func (c *syncCollector) Collect(req *markup.Request, done func(markup.Metadata) error) {
	meta := c.meta
	if meta.Title == "" {
		meta.Title = req.Seed.Title
	}
	if meta.URL == "" {
		meta.URL = req.Seed.URL
	}
	c.err = done(meta)
}

type previewRecorder struct {
	contents []string
}

func (p *previewRecorder) Refresh(content string) {
	p.contents = append(p.contents, content)
}

func newContext(text string, start, end int) (*execctx.ExecutionContext, *buffer.Buffer) {
	buf := buffer.New(text, buffer.WithCaret(start, end))
	return execctx.New().WithSelection(selection.New(buf)), buf
}

func caretOf(buf *buffer.Buffer) selection.Range {
	return selection.NewRange(buf.CaretRange())
}

func TestHandlerServesAllActions(t *testing.T) {
	h := mh.NewHandler()

	for _, name := range markup.Names() {
		if !h.CanHandle(name) {
			t.Errorf("expected handler to serve %q", name)
		}
	}
	if h.CanHandle("strike") {
		t.Error("expected unknown action to be rejected")
	}
	if diff := cmp.Diff(markup.Names(), h.Actions()); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleTransform(t *testing.T) {
	h := mh.NewHandler()
	ctx, buf := newContext("hello world", 0, 5)

	result := h.Handle(input.Action{Name: markup.ActionBold}, ctx)

	if !result.IsOK() {
		t.Fatalf("expected ok, got %v: %v", result.Status, result.Error)
	}
	if buf.Value() != "**hello** world" {
		t.Errorf("unexpected buffer %q", buf.Value())
	}
	if got := caretOf(buf); got != selection.NewRange(0, 9) {
		t.Errorf("expected selection [0,9), got %v", got)
	}

	want := []handler.Edit{{
		Range:     selection.NewRange(0, 5),
		NewText:   "**hello**",
		OldText:   "hello",
		Selection: selection.NewRange(0, 9),
	}}
	if diff := cmp.Diff(want, result.Edits); diff != "" {
		t.Errorf("edits mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleTransformUsesOptions(t *testing.T) {
	h := mh.NewHandler()
	ctx, buf := newContext("", 0, 0)
	ctx.Options.FenceLanguage = "go"

	h.Handle(input.Action{Name: markup.ActionSourcecode}, ctx)

	if buf.Value() != "```go\n\n```" {
		t.Errorf("unexpected buffer %q", buf.Value())
	}
	if got := caretOf(buf); got != selection.Caret(6) {
		t.Errorf("expected caret 6, got %v", got)
	}
}

func TestHandleWithoutSelection(t *testing.T) {
	h := mh.NewHandler()

	result := h.Handle(input.Action{Name: markup.ActionBold}, execctx.New())

	if !errors.Is(result.Error, execctx.ErrMissingSelection) {
		t.Errorf("expected ErrMissingSelection, got %v", result.Error)
	}
}

func TestHandleUnknownAction(t *testing.T) {
	h := mh.NewHandler()
	ctx, _ := newContext("x", 0, 1)

	result := h.Handle(input.Action{Name: "strike"}, ctx)

	if !errors.Is(result.Error, markup.ErrUnknownAction) {
		t.Errorf("expected ErrUnknownAction, got %v", result.Error)
	}
}

func TestPromptWithoutCollector(t *testing.T) {
	h := mh.NewHandler()
	ctx, buf := newContext("x", 0, 1)

	result := h.Handle(input.Action{Name: markup.ActionLink}, ctx)

	if !errors.Is(result.Error, execctx.ErrMissingCollector) {
		t.Errorf("expected ErrMissingCollector, got %v", result.Error)
	}
	if buf.Value() != "x" {
		t.Errorf("expected buffer untouched, got %q", buf.Value())
	}
}

func TestImageSynchronousCollector(t *testing.T) {
	h := mh.NewHandler()
	ctx, buf := newContext("see photo.png", 4, 13)
	collector := &syncCollector{meta: markup.Metadata{Title: "Pic"}}
	ctx.WithCollector(collector)

	result := h.Handle(input.Action{Name: markup.ActionImage}, ctx)

	if collector.err != nil {
		t.Fatalf("unexpected collector error: %v", collector.err)
	}
	if !result.IsOK() {
		t.Fatalf("expected ok, got %v", result.Status)
	}
	if buf.Value() != "see ![Pic](photo.png)" {
		t.Errorf("unexpected buffer %q", buf.Value())
	}
	if got := caretOf(buf); got != selection.Caret(21) {
		t.Errorf("expected caret 21, got %v", got)
	}
	if result.GetDataString(handler.DataRequestID) == "" {
		t.Error("expected request id on result")
	}
	if len(h.PendingIDs()) != 0 {
		t.Errorf("expected no pending requests, got %v", h.PendingIDs())
	}
}

func TestLinkAsyncCompletesAtStoredSelection(t *testing.T) {
	h := mh.NewHandler()
	preview := &previewRecorder{}
	ctx, buf := newContext("read docs now", 5, 9)
	collector := &deferredCollector{}
	ctx.WithCollector(collector).WithPreviewer(preview)

	result := h.Handle(input.Action{Name: markup.ActionLink}, ctx)

	if !result.IsAsync() {
		t.Fatalf("expected async, got %v", result.Status)
	}
	id := result.GetDataString(handler.DataRequestID)
	if diff := cmp.Diff([]string{id}, h.PendingIDs()); diff != "" {
		t.Fatalf("pending mismatch (-want +got):\n%s", diff)
	}
	if result.GetDataString(handler.DataRequestKind) != "link" {
		t.Errorf("expected link kind, got %q", result.GetDataString(handler.DataRequestKind))
	}
	if collector.req.Seed != (markup.Seed{Title: "docs"}) {
		t.Errorf("unexpected seed %+v", collector.req.Seed)
	}
	if buf.Value() != "read docs now" {
		t.Fatalf("expected buffer untouched while pending, got %q", buf.Value())
	}

	// the user moves the caret while the dialog is open
	ctx.Selection.SelectOffsets(0, 0)

	if err := collector.done(markup.Metadata{Title: "docs", URL: "http://x.io"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "read [docs](http://x.io/) now"
	if buf.Value() != want {
		t.Errorf("expected %q, got %q", want, buf.Value())
	}
	if got := caretOf(buf); got != selection.Caret(5+len("[docs](http://x.io/)")) {
		t.Errorf("unexpected caret %v", got)
	}
	if diff := cmp.Diff([]string{want}, preview.contents); diff != "" {
		t.Errorf("preview mismatch (-want +got):\n%s", diff)
	}
	if len(h.PendingIDs()) != 0 {
		t.Error("expected request to be resolved")
	}

	err := collector.done(markup.Metadata{Title: "again", URL: "http://y.io"})
	if !errors.Is(err, mh.ErrRequestResolved) {
		t.Errorf("expected ErrRequestResolved, got %v", err)
	}
	if buf.Value() != want {
		t.Errorf("expected a second completion to change nothing, got %q", buf.Value())
	}
}

func TestMissingMetadataKeepsRequestPending(t *testing.T) {
	h := mh.NewHandler()
	ctx, buf := newContext("text", 4, 4)
	collector := &deferredCollector{}
	ctx.WithCollector(collector)

	result := h.Handle(input.Action{Name: markup.ActionImage}, ctx)
	id := result.GetDataString(handler.DataRequestID)

	err := collector.done(markup.Metadata{Title: "only title"})
	if !errors.Is(err, markup.ErrMissingMetadata) {
		t.Fatalf("expected ErrMissingMetadata, got %v", err)
	}
	var merr *markup.MetadataError
	if !errors.As(err, &merr) || !merr.Invalid(markup.FieldURL) {
		t.Errorf("expected url to be reported missing, got %v", err)
	}
	if buf.Value() != "text" {
		t.Errorf("expected buffer untouched, got %q", buf.Value())
	}
	if _, ok := h.Pending(id); !ok {
		t.Fatal("expected request to stay pending")
	}

	if err := collector.done(markup.Metadata{Title: "t", URL: "u.png"}); err != nil {
		t.Fatalf("unexpected error on retry: %v", err)
	}
	if buf.Value() != "text![t](u.png)" {
		t.Errorf("unexpected buffer %q", buf.Value())
	}
}

func TestResume(t *testing.T) {
	h := mh.NewHandler()
	preview := &previewRecorder{}
	ctx, buf := newContext("go here", 3, 7)
	ctx.WithCollector(&deferredCollector{}).WithPreviewer(preview)

	result := h.Handle(input.Action{Name: markup.ActionLink}, ctx)
	id := result.GetDataString(handler.DataRequestID)

	edit, err := h.Resume(id, markup.Metadata{Title: "here", URL: "www.example.com/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if edit.NewText != "[here](www.example.com/)" || edit.OldText != "here" {
		t.Errorf("unexpected edit %+v", edit)
	}
	if buf.Value() != "go [here](www.example.com/)" {
		t.Errorf("unexpected buffer %q", buf.Value())
	}
	if len(preview.contents) != 1 {
		t.Errorf("expected one preview refresh, got %d", len(preview.contents))
	}

	if _, err := h.Resume(id, markup.Metadata{Title: "x", URL: "y"}); !errors.Is(err, mh.ErrRequestNotFound) {
		t.Errorf("expected ErrRequestNotFound after resolution, got %v", err)
	}
}

func TestResumeAfterBufferEdited(t *testing.T) {
	tests := []struct {
		name      string
		edited    string
		want      string
		wantRange selection.Range
		wantOld   string
		wantCaret selection.Range
	}{
		{"shrunk before stored range", "hi", "hi[t](u/)", selection.Caret(2), "", selection.Caret(9)},
		{"shrunk into stored range", "hello world exa", "hello world [t](u/)", selection.NewRange(12, 15), "exa", selection.Caret(19)},
		{"grown after stored range", "hello world example!!", "hello world [t](u/)!!", selection.NewRange(12, 19), "example", selection.Caret(19)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := mh.NewHandler()
			ctx, buf := newContext("hello world example", 12, 19)
			ctx.WithCollector(&deferredCollector{})

			id := h.Handle(input.Action{Name: markup.ActionLink}, ctx).GetDataString(handler.DataRequestID)
			buf.SetValue(tt.edited)

			edit, err := h.Resume(id, markup.Metadata{Title: "t", URL: "u"})
			if err != nil {
				t.Fatalf("Resume: %v", err)
			}
			if buf.Value() != tt.want {
				t.Errorf("buffer = %q, want %q", buf.Value(), tt.want)
			}
			if edit.Range != tt.wantRange || edit.OldText != tt.wantOld {
				t.Errorf("edit range = %v old %q, want %v old %q", edit.Range, edit.OldText, tt.wantRange, tt.wantOld)
			}
			n := len([]rune(buf.Value()))
			if edit.Selection.End > n {
				t.Errorf("edit selection %v exceeds buffer length %d", edit.Selection, n)
			}
			if edit.Selection != tt.wantCaret || caretOf(buf) != tt.wantCaret {
				t.Errorf("selection = %v, host caret = %v, want %v", edit.Selection, caretOf(buf), tt.wantCaret)
			}
		})
	}
}

func TestCancel(t *testing.T) {
	h := mh.NewHandler()
	ctx, buf := newContext("keep", 0, 4)
	collector := &deferredCollector{}
	ctx.WithCollector(collector)

	result := h.Handle(input.Action{Name: markup.ActionImage}, ctx)
	id := result.GetDataString(handler.DataRequestID)

	if err := h.Cancel(id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := h.Cancel(id); !errors.Is(err, mh.ErrRequestNotFound) {
		t.Errorf("expected ErrRequestNotFound on second cancel, got %v", err)
	}
	if err := collector.done(markup.Metadata{Title: "a", URL: "b"}); !errors.Is(err, mh.ErrRequestNotFound) {
		t.Errorf("expected completion after cancel to fail, got %v", err)
	}
	if buf.Value() != "keep" {
		t.Errorf("expected buffer untouched, got %q", buf.Value())
	}
}

func TestCancelDuringCollect(t *testing.T) {
	h := mh.NewHandler()
	ctx, _ := newContext("x", 0, 1)
	ctx.WithCollector(execctx.MetadataCollectorFunc(func(req *markup.Request, done func(markup.Metadata) error) {
		for _, id := range h.PendingIDs() {
			_ = h.Cancel(id)
		}
	}))

	result := h.Handle(input.Action{Name: markup.ActionLink}, ctx)

	if result.Status != handler.StatusCancelled {
		t.Errorf("expected cancelled, got %v", result.Status)
	}
}

func TestPromptSeedFromArgs(t *testing.T) {
	h := mh.NewHandler()
	ctx, _ := newContext("", 0, 0)
	collector := &deferredCollector{}
	ctx.WithCollector(collector)

	action := input.NewAction(markup.ActionLink, input.SourceCLI).WithSeed("Home", "https://example.com")
	h.Handle(action, ctx)

	want := markup.Seed{Title: "Home", URL: "https://example.com"}
	if collector.req.Seed != want {
		t.Errorf("expected seed %+v, got %+v", want, collector.req.Seed)
	}
}
