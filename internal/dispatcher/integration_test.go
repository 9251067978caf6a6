package dispatcher_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/markstorm/internal/dispatcher"
	"github.com/dshills/markstorm/internal/dispatcher/execctx"
	"github.com/dshills/markstorm/internal/dispatcher/handler"
	"github.com/dshills/markstorm/internal/engine/selection"
	"github.com/dshills/markstorm/internal/input"
	"github.com/dshills/markstorm/internal/markup"
)

type lineLogger struct {
	lines []string
}

func (l *lineLogger) Debug(msg string, args ...interface{}) { l.add(msg, args) }
func (l *lineLogger) Info(msg string, args ...interface{})  { l.add(msg, args) }
func (l *lineLogger) Error(msg string, args ...interface{}) { l.add(msg, args) }

func (l *lineLogger) add(msg string, args []interface{}) {
	l.lines = append(l.lines, fmt.Sprintf(msg, args...))
}

func TestSystemRegistersAllActions(t *testing.T) {
	s := dispatcher.NewSystemWithDefaults()

	if diff := cmp.Diff(markup.Names(), s.ListActions()); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
	for _, name := range markup.Names() {
		if !s.CanHandle(name) {
			t.Errorf("expected system to handle %q", name)
		}
	}
}

func TestSystemDispatch(t *testing.T) {
	tests := []struct {
		name       string
		action     string
		text       string
		start, end int
		wantText   string
		wantSel    selection.Range
	}{
		{"bold", markup.ActionBold, "hello world", 0, 5, "**hello** world", selection.NewRange(0, 9)},
		{"unbold", markup.ActionBold, "**hello** world", 0, 9, "hello world", selection.NewRange(0, 5)},
		{"italic caret", markup.ActionItalic, "ab", 1, 1, "a__b", selection.Caret(2)},
		{"h2", markup.ActionH2, "Title", 0, 5, "## Title", selection.Caret(8)},
		{"bullets", markup.ActionBullets, "item", 0, 4, "* item", selection.Caret(6)},
		{"numbers", markup.ActionNumbers, "item", 0, 4, "1. item", selection.Caret(7)},
		{"quote", markup.ActionQuote, "a\nb", 0, 3, "> a\n> b", selection.Caret(7)},
		{"sourcecode", markup.ActionSourcecode, "", 0, 0, "```python\n\n```", selection.Caret(10)},
		{"trailing space trimmed", markup.ActionBold, "word next", 0, 5, "**word** next", selection.NewRange(0, 8)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := dispatcher.NewSystemWithDefaults()
			sel, buf := newSelection(tt.text, tt.start, tt.end)

			result := s.Dispatch(input.Action{Name: tt.action}, sel)

			if !result.IsOK() {
				t.Fatalf("expected ok, got %v: %v", result.Status, result.Error)
			}
			if buf.Value() != tt.wantText {
				t.Errorf("expected %q, got %q", tt.wantText, buf.Value())
			}
			if got := sel.Get(); got != tt.wantSel {
				t.Errorf("expected selection %v, got %v", tt.wantSel, got)
			}
		})
	}
}

func TestSystemWithoutTrim(t *testing.T) {
	cfg := dispatcher.DefaultSystemConfig()
	cfg.TrimTrailingSpace = false
	s := dispatcher.NewSystem(cfg)
	sel, buf := newSelection("word next", 0, 5)

	s.Dispatch(input.Action{Name: markup.ActionBold}, sel)

	if buf.Value() != "**word **next" {
		t.Errorf("expected trailing space kept inside markers, got %q", buf.Value())
	}
}

func TestSystemPreviewRefresh(t *testing.T) {
	s := dispatcher.NewSystemWithDefaults()
	var refreshed []string
	s.SetPreviewer(execctx.PreviewRendererFunc(func(content string) {
		refreshed = append(refreshed, content)
	}))
	sel, _ := newSelection("x", 0, 1)

	s.Dispatch(input.Action{Name: markup.ActionItalic}, sel)
	s.Dispatch(input.Action{Name: "strike"}, sel)

	if diff := cmp.Diff([]string{"_x_"}, refreshed); diff != "" {
		t.Errorf("refresh mismatch (-want +got):\n%s", diff)
	}
}

func TestSystemPromptFlow(t *testing.T) {
	s := dispatcher.NewSystemWithDefaults()
	var refreshed int
	s.SetPreviewer(execctx.PreviewRendererFunc(func(string) { refreshed++ }))
	s.SetCollector(execctx.MetadataCollectorFunc(func(*markup.Request, func(markup.Metadata) error) {}))
	sel, buf := newSelection("see www.example.com", 4, 19)

	result := s.Dispatch(input.Action{Name: markup.ActionLink}, sel)
	if !result.IsAsync() {
		t.Fatalf("expected async, got %v", result.Status)
	}
	if refreshed != 0 {
		t.Error("expected no refresh while the request is pending")
	}

	id := result.GetDataString(handler.DataRequestID)
	if diff := cmp.Diff([]string{id}, s.PendingRequests()); diff != "" {
		t.Fatalf("pending mismatch (-want +got):\n%s", diff)
	}

	if _, err := s.Resume(id, markup.Metadata{URL: "www.example.com"}); !errors.Is(err, markup.ErrMissingMetadata) {
		t.Fatalf("expected ErrMissingMetadata, got %v", err)
	}
	if _, err := s.Resume(id, markup.Metadata{Title: "Example", URL: "www.example.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if buf.Value() != "see [Example](www.example.com/)" {
		t.Errorf("unexpected buffer %q", buf.Value())
	}
	if refreshed != 1 {
		t.Errorf("expected one refresh after completion, got %d", refreshed)
	}
}

func TestSystemSynchronousPromptRefreshesOnce(t *testing.T) {
	s := dispatcher.NewSystemWithDefaults()
	var refreshed int
	s.SetPreviewer(execctx.PreviewRendererFunc(func(string) { refreshed++ }))
	s.SetCollector(execctx.MetadataCollectorFunc(func(req *markup.Request, done func(markup.Metadata) error) {
		_ = done(markup.Metadata{Title: "cat", URL: req.Seed.URL})
	}))
	sel, buf := newSelection("cat.jpg", 0, 7)

	result := s.Dispatch(input.Action{Name: markup.ActionImage}, sel)

	if !result.IsOK() || buf.Value() != "![cat](cat.jpg)" {
		t.Fatalf("unexpected result %v buffer %q", result.Status, buf.Value())
	}
	if refreshed != 1 {
		t.Errorf("expected exactly one refresh, got %d", refreshed)
	}
}

func TestSystemCancel(t *testing.T) {
	s := dispatcher.NewSystemWithDefaults()
	s.SetCollector(execctx.MetadataCollectorFunc(func(*markup.Request, func(markup.Metadata) error) {}))
	sel, buf := newSelection("x", 0, 1)

	result := s.Dispatch(input.Action{Name: markup.ActionImage}, sel)

	if err := s.Cancel(result.GetDataString(handler.DataRequestID)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.PendingRequests()) != 0 || buf.Value() != "x" {
		t.Errorf("expected clean cancel, pending=%v buffer=%q", s.PendingRequests(), buf.Value())
	}
}

func TestSystemDisabledActions(t *testing.T) {
	cfg := dispatcher.DefaultSystemConfig()
	cfg.DisabledActions = []string{markup.ActionH1}
	s := dispatcher.NewSystem(cfg)
	sel, buf := newSelection("Title", 0, 5)

	result := s.Dispatch(input.Action{Name: markup.ActionH1}, sel)

	if result.Status != handler.StatusCancelled {
		t.Errorf("expected cancelled, got %v", result.Status)
	}
	if buf.Value() != "Title" {
		t.Errorf("expected buffer untouched, got %q", buf.Value())
	}
}

func TestSystemAuditLogging(t *testing.T) {
	logger := &lineLogger{}
	cfg := dispatcher.DefaultSystemConfig()
	cfg.Logger = logger
	s := dispatcher.NewSystem(cfg)
	sel, _ := newSelection("x", 0, 1)

	s.Dispatch(input.NewAction(markup.ActionBold, input.SourceKeyboard), sel)

	if len(logger.lines) != 2 {
		t.Fatalf("expected start and completion lines, got %v", logger.lines)
	}
	if !strings.Contains(logger.lines[0], "action=bold source=keyboard") {
		t.Errorf("unexpected start line %q", logger.lines[0])
	}
}

func TestSystemTimingLog(t *testing.T) {
	logger := &lineLogger{}
	cfg := dispatcher.DefaultSystemConfig()
	cfg.DispatcherConfig = cfg.DispatcherConfig.WithMetrics()
	cfg.Logger = logger
	s := dispatcher.NewSystem(cfg)
	sel, _ := newSelection("x", 0, 1)

	s.Dispatch(input.Action{Name: markup.ActionBold}, sel)

	found := false
	for _, line := range logger.lines {
		if strings.HasPrefix(line, "action bold took ") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a timing line, got %v", logger.lines)
	}
}

func TestSystemRejectsInvalidFenceLanguage(t *testing.T) {
	s := dispatcher.NewSystemWithDefaults()
	s.SetOptions(markup.Options{FenceLanguage: "py thon"})
	sel, buf := newSelection("x = 1", 0, 5)

	result := s.Dispatch(input.Action{Name: markup.ActionSourcecode}, sel)

	if result.Status != handler.StatusCancelled {
		t.Fatalf("expected cancelled, got %v", result.Status)
	}
	if !errors.Is(result.Error, dispatcher.ErrInvalidFenceLanguage) {
		t.Errorf("expected ErrInvalidFenceLanguage, got %v", result.Error)
	}
	if buf.Value() != "x = 1" {
		t.Errorf("expected buffer untouched, got %q", buf.Value())
	}

	if result := s.Dispatch(input.Action{Name: markup.ActionBold}, sel); !result.IsOK() {
		t.Errorf("expected other actions to run, got %v", result.Status)
	}
}

func TestSystemDispatchBatchStopsAtPrompt(t *testing.T) {
	s := dispatcher.NewSystemWithDefaults()
	s.SetCollector(execctx.MetadataCollectorFunc(func(*markup.Request, func(markup.Metadata) error) {}))
	sel, buf := newSelection("text", 0, 4)

	results := s.DispatchBatch([]input.Action{
		{Name: markup.ActionLink},
		{Name: markup.ActionBold},
	}, sel, true)

	if len(results) != 1 || !results[0].IsAsync() {
		t.Fatalf("expected the batch to stop at the pending link, got %+v", results)
	}
	if buf.Value() != "text" {
		t.Errorf("unexpected buffer %q", buf.Value())
	}
}

func TestSystemDispatchBatch(t *testing.T) {
	s := dispatcher.NewSystemWithDefaults()
	sel, buf := newSelection("text", 0, 4)

	actions := []input.Action{
		{Name: markup.ActionBold},
		{Name: "strike"},
		{Name: markup.ActionItalic},
	}

	results := s.DispatchBatch(actions, sel, true)
	if len(results) != 2 {
		t.Fatalf("expected batch to stop at the error, got %d results", len(results))
	}
	if buf.Value() != "**text**" {
		t.Errorf("unexpected buffer %q", buf.Value())
	}

	results = s.DispatchBatch(actions, sel, false)
	if len(results) != 3 {
		t.Fatalf("expected all results, got %d", len(results))
	}
}

func TestSystemHandlerOverride(t *testing.T) {
	s := dispatcher.NewSystemWithDefaults()
	s.RegisterHandlerFunc(markup.ActionQuote, func(input.Action, *execctx.ExecutionContext) handler.Result {
		return handler.NoOpWithMessage("overridden")
	})
	sel, _ := newSelection("a", 0, 1)

	result := s.Dispatch(input.Action{Name: markup.ActionQuote}, sel)

	if result.Message != "overridden" {
		t.Errorf("expected later registration to win, got %+v", result)
	}
}
