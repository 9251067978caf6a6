// Package preview renders the document to HTML after each edit.
//
// Renderer satisfies execctx.PreviewRenderer: the dispatcher calls Refresh
// with the full buffer once per completed action, and the renderer converts
// it with goldmark using GitHub-Flavored Markdown. Fenced code blocks are
// optionally highlighted with chroma through goldmark-highlighting.
package preview

import (
	"bytes"
	"sync"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// DefaultStyle is the highlighting style used when none is given.
const DefaultStyle = "monokai"

// Logger reports render failures.
type Logger interface {
	Error(msg string, args ...interface{})
}

// Sink receives each rendered document.
type Sink func(html string)

// Renderer converts markdown to HTML and keeps the latest result.
// It is safe for concurrent use; rendering is synchronous.
type Renderer struct {
	mu      sync.RWMutex
	md      goldmark.Markdown
	html    string
	err     error
	renders int
	sinks   []Sink
	logger  Logger

	highlight bool
	style     string
	unsafe    bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithHighlight enables code block highlighting with the named chroma style.
// An empty style selects DefaultStyle.
func WithHighlight(style string) Option {
	return func(r *Renderer) {
		r.highlight = true
		if style != "" {
			r.style = style
		}
	}
}

// WithUnsafeHTML passes raw HTML in the document through unchanged.
func WithUnsafeHTML() Option {
	return func(r *Renderer) {
		r.unsafe = true
	}
}

// WithLogger sets the logger for render failures.
func WithLogger(l Logger) Option {
	return func(r *Renderer) {
		r.logger = l
	}
}

// New creates a renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{style: DefaultStyle}
	for _, opt := range opts {
		opt(r)
	}

	extensions := []goldmark.Extender{extension.GFM}
	if r.highlight {
		extensions = append(extensions, highlighting.NewHighlighting(
			highlighting.WithStyle(r.style),
		))
	}
	var rendererOpts []goldmark.Option
	if r.unsafe {
		rendererOpts = append(rendererOpts, goldmark.WithRendererOptions(html.WithUnsafe()))
	}

	r.md = goldmark.New(append([]goldmark.Option{
		goldmark.WithExtensions(extensions...),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	}, rendererOpts...)...)
	return r
}

// Render converts markdown to HTML without touching the renderer's state.
func (r *Renderer) Render(content string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Refresh renders content, stores the result and forwards it to every sink.
// On failure the previous HTML is kept and the error is available from Err.
func (r *Renderer) Refresh(content string) {
	out, err := r.Render(content)

	r.mu.Lock()
	r.renders++
	r.err = err
	if err == nil {
		r.html = out
	}
	sinks := append([]Sink(nil), r.sinks...)
	r.mu.Unlock()

	if err != nil {
		if r.logger != nil {
			r.logger.Error("preview: render failed: %v", err)
		}
		return
	}
	for _, sink := range sinks {
		sink(out)
	}
}

// OnRender registers a sink for rendered documents.
func (r *Renderer) OnRender(sink Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sinks = append(r.sinks, sink)
}

// HTML returns the most recently rendered document.
func (r *Renderer) HTML() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.html
}

// Err returns the error of the last refresh, if any.
func (r *Renderer) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.err
}

// Renders returns the number of refreshes performed.
func (r *Renderer) Renders() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.renders
}

// Highlighting reports whether code blocks are highlighted, and with which
// style.
func (r *Renderer) Highlighting() (bool, string) {
	return r.highlight, r.style
}
