package markup

import (
	"strings"

	"github.com/dshills/markstorm/internal/engine/selection"
)

// RequestKind identifies what a prompt action is asking for.
type RequestKind uint8

const (
	// RequestImage asks for an image title and url.
	RequestImage RequestKind = iota
	// RequestLink asks for a link title and url.
	RequestLink
)

// String returns the kind name.
func (k RequestKind) String() string {
	switch k {
	case RequestImage:
		return "image"
	case RequestLink:
		return "link"
	default:
		return "unknown"
	}
}

// Seed pre-fills the fields of a metadata prompt.
type Seed struct {
	Title string
	URL   string
}

// Metadata is what a collector returns for a prompt.
type Metadata struct {
	Title string
	URL   string
}

// Request is a pending prompt action.
// Stored is the selection captured when the prompt was opened; the edit is
// applied there regardless of where the selection moved meanwhile.
type Request struct {
	Kind   RequestKind
	Seed   Seed
	Stored selection.Range
}

// Validate reports the fields of meta that are blank.
func (r *Request) Validate(meta Metadata) error {
	var fields []string
	if strings.TrimSpace(meta.Title) == "" {
		fields = append(fields, FieldTitle)
	}
	if strings.TrimSpace(meta.URL) == "" {
		fields = append(fields, FieldURL)
	}
	if len(fields) > 0 {
		return &MetadataError{Kind: r.Kind, Fields: fields}
	}
	return nil
}

// Complete turns collected metadata into the edit at the stored selection.
// Incomplete metadata yields a *MetadataError and no change.
func (r *Request) Complete(meta Metadata) (Change, error) {
	if err := r.Validate(meta); err != nil {
		return Change{}, err
	}

	var text string
	switch r.Kind {
	case RequestImage:
		text = "![" + meta.Title + "](" + meta.URL + ")"
	default:
		url := meta.URL
		if !strings.HasSuffix(url, "/") {
			url += "/"
		}
		text = "[" + meta.Title + "](" + url + ")"
	}

	return Change{
		Range:     r.Stored,
		Text:      text,
		Selection: selection.Caret(r.Stored.Start + runeLen(text)),
	}, nil
}

func image(st State, opts Options) *Request {
	req := &Request{Kind: RequestImage, Stored: st.Selection}
	text := st.Selected()
	if text == "" {
		return req
	}
	if hasAnySuffix(text, opts.ImageExtensions) {
		req.Seed.URL = text
	} else {
		req.Seed.Title = text
	}
	return req
}

func link(st State, opts Options) *Request {
	req := &Request{Kind: RequestLink, Stored: st.Selection}
	text := st.Selected()
	if text == "" {
		return req
	}
	if hasAnyPrefix(text, opts.LinkPrefixes) {
		req.Seed.URL = text
	} else {
		req.Seed.Title = text
	}
	return req
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if suffix != "" && strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
