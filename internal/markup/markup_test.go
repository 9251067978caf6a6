package markup

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/markstorm/internal/engine/selection"
)

func state(text string, start, end int) State {
	return NewState(text, selection.NewRange(start, end))
}

func run(t *testing.T, name string, st State) Change {
	t.Helper()
	out, err := Apply(name, st, DefaultOptions())
	if err != nil {
		t.Fatalf("apply %s: %v", name, err)
	}
	if out.Request != nil {
		t.Fatalf("apply %s: unexpected request", name)
	}
	return out.Change
}

// after returns the state produced by applying c to st.
func after(st State, c Change) State {
	return State{Text: c.ApplyTo(st.Text), Selection: c.Selection}
}

func TestBoldRoundTrip(t *testing.T) {
	st := state("hello world", 0, 5)

	st = after(st, run(t, ActionBold, st))
	want := State{Text: "**hello** world", Selection: selection.NewRange(0, 9)}
	if diff := cmp.Diff(want, st); diff != "" {
		t.Fatalf("bold mismatch (-want +got):\n%s", diff)
	}

	st = after(st, run(t, ActionBold, st))
	want = State{Text: "hello world", Selection: selection.NewRange(0, 5)}
	if diff := cmp.Diff(want, st); diff != "" {
		t.Errorf("unbold mismatch (-want +got):\n%s", diff)
	}
}

func TestBoldInsideMarkers(t *testing.T) {
	st := state("say **hi** now", 6, 8)

	c := run(t, ActionBold, st)

	want := Change{
		Range:     selection.NewRange(4, 10),
		Text:      "hi",
		Selection: selection.NewRange(4, 6),
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("change mismatch (-want +got):\n%s", diff)
	}
	if got := c.ApplyTo(st.Text); got != "say hi now" {
		t.Errorf("expected %q, got %q", "say hi now", got)
	}
}

func TestBoldCaret(t *testing.T) {
	st := state("ab", 1, 1)

	st = after(st, run(t, ActionBold, st))
	if st.Text != "a****b" || st.Selection != selection.Caret(3) {
		t.Fatalf("unexpected state %q %v", st.Text, st.Selection)
	}

	st = after(st, run(t, ActionBold, st))
	if st.Text != "ab" || st.Selection != selection.Caret(1) {
		t.Errorf("expected empty bold to toggle off, got %q %v", st.Text, st.Selection)
	}
}

func TestItalic(t *testing.T) {
	tests := []struct {
		name string
		st   State
		want State
	}{
		{
			name: "selection",
			st:   state("one two", 4, 7),
			want: State{Text: "one _two_", Selection: selection.NewRange(4, 9)},
		},
		{
			name: "caret",
			st:   state("one", 3, 3),
			want: State{Text: "one__", Selection: selection.Caret(4)},
		},
		{
			name: "unwrap",
			st:   state("_x_", 0, 3),
			want: State{Text: "x", Selection: selection.NewRange(0, 1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := after(tt.st, run(t, ActionItalic, tt.st))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestToggleIsIdempotent(t *testing.T) {
	texts := []string{"a", "hello", "two words", "multi\nline", "日本", "x*y", "_"}

	for _, action := range []string{ActionBold, ActionItalic} {
		for _, text := range texts {
			st := state(text, 0, len([]rune(text)))

			wrapped := after(st, run(t, action, st))
			restored := after(wrapped, run(t, action, wrapped))

			if restored.Text != text {
				t.Errorf("%s(%q): expected %q after toggle twice, got %q", action, text, text, restored.Text)
			}
			if restored.Selection != st.Selection {
				t.Errorf("%s(%q): expected selection %v, got %v", action, text, st.Selection, restored.Selection)
			}
		}
	}
}

func TestHeadings(t *testing.T) {
	for level := 1; level <= 6; level++ {
		name := "h" + string(rune('0'+level))
		st := state("Title", 0, 5)

		c := run(t, name, st)

		marker := strings.Repeat("#", level) + " "
		if got := c.ApplyTo(st.Text); got != marker+"Title" {
			t.Errorf("%s: expected %q, got %q", name, marker+"Title", got)
		}
		if want := selection.Caret(5 + level + 1); c.Selection != want {
			t.Errorf("%s: expected caret %v, got %v", name, want, c.Selection)
		}
	}
}

func TestHeadingH2(t *testing.T) {
	st := state("Title", 0, 5)

	got := after(st, run(t, ActionH2, st))

	want := State{Text: "## Title", Selection: selection.Caret(8)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLists(t *testing.T) {
	tests := []struct {
		action string
		want   State
	}{
		{ActionBullets, State{Text: "* item", Selection: selection.Caret(6)}},
		{ActionNumbers, State{Text: "1. item", Selection: selection.Caret(7)}},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			st := state("item", 0, 4)
			got := after(st, run(t, tt.action, st))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSourcecode(t *testing.T) {
	tests := []struct {
		name string
		st   State
		want State
	}{
		{
			name: "caret",
			st:   state("", 0, 0),
			want: State{Text: "```python\n\n```", Selection: selection.Caret(10)},
		},
		{
			name: "single line",
			st:   state("x = 1", 0, 5),
			want: State{Text: "```python\nx = 1\n```", Selection: selection.Caret(15)},
		},
		{
			name: "multi line",
			st:   state("a\nb", 0, 3),
			want: State{Text: "    a\n    b", Selection: selection.Caret(11)},
		},
		{
			name: "multi line with trailing newline",
			st:   state("a\nb\nc", 0, 4),
			want: State{Text: "    a\n    b\nc", Selection: selection.Caret(12)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := after(tt.st, run(t, ActionSourcecode, tt.st))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSourcecodeCaretInsideFence(t *testing.T) {
	st := state("", 0, 0)

	got := after(st, run(t, ActionSourcecode, st))

	if !strings.Contains(got.Text, "```python\n\n```") {
		t.Fatalf("expected fenced block, got %q", got.Text)
	}
	if got.Selection.Start >= len([]rune(got.Text)) {
		t.Errorf("caret should sit inside the fence, got %v", got.Selection)
	}
	lines := strings.Split(got.Text, "\n")
	if lines[1] != "" {
		t.Errorf("expected empty body line, got %q", lines[1])
	}
}

func TestSourcecodeFenceLanguage(t *testing.T) {
	opts := DefaultOptions()
	opts.FenceLanguage = "go"

	out, err := Apply(ActionSourcecode, state("", 0, 0), opts)
	if err != nil {
		t.Fatal(err)
	}
	if out.Change.Text != "```go\n\n```" {
		t.Errorf("unexpected fence %q", out.Change.Text)
	}
	if out.Change.Selection != selection.Caret(6) {
		t.Errorf("expected caret 6, got %v", out.Change.Selection)
	}
}

func TestZeroOptionsUseDefaults(t *testing.T) {
	out, err := Apply(ActionSourcecode, state("", 0, 0), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if out.Change.Text != "```python\n\n```" {
		t.Errorf("unexpected fence %q", out.Change.Text)
	}

	out, err = Apply(ActionLink, state("www.example.com", 0, 15), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if out.Request.Seed != (Seed{URL: "www.example.com"}) {
		t.Errorf("unexpected seed %+v", out.Request.Seed)
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		name string
		st   State
		want State
	}{
		{
			name: "caret",
			st:   state("x", 1, 1),
			want: State{Text: "x> ", Selection: selection.Caret(3)},
		},
		{
			name: "multi line",
			st:   state("a\nb", 0, 3),
			want: State{Text: "> a\n> b", Selection: selection.Caret(7)},
		},
		{
			name: "trailing newline",
			st:   state("a\nb\nc", 0, 4),
			want: State{Text: "> a\n> b\nc", Selection: selection.Caret(8)},
		},
		{
			name: "single line",
			st:   state("wise words", 0, 10),
			want: State{Text: "> wise words", Selection: selection.Caret(12)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := after(tt.st, run(t, ActionQuote, tt.st))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSelectionWithinBounds(t *testing.T) {
	texts := []string{"", "a", "hello world", "a\nb\n", "**x**", "日本語\nテキスト "}
	names := Names()

	for _, text := range texts {
		n := len([]rune(text))
		for start := 0; start <= n; start++ {
			for end := start; end <= n; end++ {
				st := state(text, start, end)
				for _, name := range names {
					a, _ := Lookup(name)
					if a.IsPrompt() {
						continue
					}
					c := a.Run(st, DefaultOptions()).Change
					newLen := len([]rune(c.ApplyTo(text)))
					if !c.Selection.IsValid(newLen) {
						t.Fatalf("%s on %q [%d,%d]: selection %v outside [0,%d]",
							name, text, start, end, c.Selection, newLen)
					}
				}
			}
		}
	}
}

func TestImageSeed(t *testing.T) {
	tests := []struct {
		text string
		want Seed
	}{
		{"photo.png", Seed{URL: "photo.png"}},
		{"anim.gif", Seed{URL: "anim.gif"}},
		{"cat.jpg", Seed{URL: "cat.jpg"}},
		{"My Photo", Seed{Title: "My Photo"}},
		{"", Seed{}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			n := len([]rune(tt.text))
			out, err := Apply(ActionImage, state(tt.text, 0, n), DefaultOptions())
			if err != nil {
				t.Fatal(err)
			}
			if out.Request == nil {
				t.Fatal("expected a request")
			}
			if out.Request.Kind != RequestImage {
				t.Errorf("expected image request, got %v", out.Request.Kind)
			}
			if out.Request.Seed != tt.want {
				t.Errorf("expected seed %+v, got %+v", tt.want, out.Request.Seed)
			}
		})
	}
}

func TestLinkSeed(t *testing.T) {
	tests := []struct {
		text string
		want Seed
	}{
		{"https://example.com", Seed{URL: "https://example.com"}},
		{"www.example.com", Seed{URL: "www.example.com"}},
		{"Example", Seed{Title: "Example"}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			out, _ := Apply(ActionLink, state(tt.text, 0, len(tt.text)), DefaultOptions())
			if out.Request.Seed != tt.want {
				t.Errorf("expected seed %+v, got %+v", tt.want, out.Request.Seed)
			}
		})
	}
}

func TestRequestComplete(t *testing.T) {
	st := state("see photo.png here", 4, 13)
	out, _ := Apply(ActionImage, st, DefaultOptions())

	c, err := out.Request.Complete(Metadata{Title: "Photo", URL: "photo.png"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := c.ApplyTo(st.Text); got != "see ![Photo](photo.png) here" {
		t.Errorf("unexpected text %q", got)
	}
	if c.Selection != selection.Caret(4+len("![Photo](photo.png)")) {
		t.Errorf("unexpected caret %v", c.Selection)
	}
}

func TestLinkComplete(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"http://example.com", "[Ex](http://example.com/)"},
		{"http://example.com/", "[Ex](http://example.com/)"},
	}

	for _, tt := range tests {
		req := &Request{Kind: RequestLink, Stored: selection.Caret(0)}
		c, err := req.Complete(Metadata{Title: "Ex", URL: tt.url})
		if err != nil {
			t.Fatal(err)
		}
		if c.Text != tt.want {
			t.Errorf("expected %q, got %q", tt.want, c.Text)
		}
	}
}

func TestRequestMissingMetadata(t *testing.T) {
	req := &Request{Kind: RequestLink, Stored: selection.Caret(0)}

	_, err := req.Complete(Metadata{Title: "only title"})
	if !errors.Is(err, ErrMissingMetadata) {
		t.Fatalf("expected ErrMissingMetadata, got %v", err)
	}

	var merr *MetadataError
	if !errors.As(err, &merr) {
		t.Fatalf("expected *MetadataError, got %T", err)
	}
	if !merr.Invalid(FieldURL) || merr.Invalid(FieldTitle) {
		t.Errorf("expected only url invalid, got %v", merr.Fields)
	}

	_, err = req.Complete(Metadata{Title: "  ", URL: ""})
	if !errors.As(err, &merr) || len(merr.Fields) != 2 {
		t.Errorf("expected both fields invalid, got %v", err)
	}
}

func TestApplyUnknownAction(t *testing.T) {
	_, err := Apply("frobnicate", state("x", 0, 1), DefaultOptions())

	if !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
	var uerr *UnknownActionError
	if !errors.As(err, &uerr) || uerr.Name != "frobnicate" {
		t.Errorf("expected UnknownActionError naming frobnicate, got %v", err)
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) != 14 {
		t.Fatalf("expected 14 actions, got %d: %v", len(names), names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("names not sorted: %v", names)
		}
	}
}

func TestStateClampsSelection(t *testing.T) {
	st := NewState("abc", selection.Range{Start: -2, End: 10})
	if st.Selection != selection.NewRange(0, 3) {
		t.Errorf("expected [0,3], got %v", st.Selection)
	}
	if st.Selected() != "abc" {
		t.Errorf("expected abc, got %q", st.Selected())
	}
}
