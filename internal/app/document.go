package app

import (
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/dshills/markstorm/internal/engine/buffer"
	"github.com/dshills/markstorm/internal/engine/selection"
)

// Document is a markdown text with its caret, optionally backed by a file.
type Document struct {
	// Path is the file path (empty for scratch documents).
	Path string

	// Name is the display name (filename or "Untitled").
	Name string

	buffer    *buffer.Buffer
	selection *selection.Selection

	// savedRevision is the buffer revision last read from or written to disk.
	savedRevision atomic.Uint64
}

// NewDocument creates a document with content. An empty path creates a
// scratch document.
func NewDocument(path string, content string) *Document {
	name := filepath.Base(path)
	if path == "" {
		name = "Untitled"
	}

	buf := buffer.New(content)
	doc := &Document{
		Path:      path,
		Name:      name,
		buffer:    buf,
		selection: selection.New(buf),
	}
	doc.savedRevision.Store(buf.Revision())
	return doc
}

// OpenDocument reads a document from disk.
func OpenDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewOperationError("open", path, err)
	}
	return NewDocument(path, string(data)), nil
}

// ReadDocument reads a scratch document from r.
func ReadDocument(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, NewOperationError("read", "", err)
	}
	return NewDocument("", string(data)), nil
}

// Content returns the full document content.
func (d *Document) Content() string {
	return d.buffer.Value()
}

// Selection returns the document's selection adapter.
func (d *Document) Selection() *selection.Selection {
	return d.selection
}

// Select sets the selection to [start, end). Reversed bounds are swapped
// and out-of-range offsets are clamped.
func (d *Document) Select(start, end int) {
	d.selection.Select(selection.NewRange(start, end))
}

// Selected returns the current selection range.
func (d *Document) Selected() selection.Range {
	return d.selection.Get()
}

// IsScratch returns true if the document has no file path.
func (d *Document) IsScratch() bool {
	return d.Path == ""
}

// IsModified returns true if the document changed since it was read or saved.
func (d *Document) IsModified() bool {
	return d.buffer.Revision() != d.savedRevision.Load()
}

// Save writes the document to its path.
func (d *Document) Save() error {
	if d.IsScratch() {
		return ErrNoFilePath
	}
	return d.SaveAs(d.Path)
}

// SaveAs writes the document to path and makes path its file.
func (d *Document) SaveAs(path string) error {
	if err := os.WriteFile(path, []byte(d.Content()), 0644); err != nil {
		return NewOperationError("save", path, err)
	}
	d.Path = path
	d.Name = filepath.Base(path)
	d.savedRevision.Store(d.buffer.Revision())
	return nil
}
