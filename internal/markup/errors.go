package markup

import (
	"errors"
	"fmt"
	"strings"
)

// Markup errors.
var (
	// ErrUnknownAction indicates no action is registered under a name.
	ErrUnknownAction = errors.New("markup: unknown action")

	// ErrMissingMetadata indicates a prompt was completed without a title or url.
	ErrMissingMetadata = errors.New("markup: missing metadata")
)

// UnknownActionError names the action that could not be resolved.
type UnknownActionError struct {
	Name string
}

// Error implements the error interface.
func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("markup: unknown action %q", e.Name)
}

// Unwrap returns ErrUnknownAction.
func (e *UnknownActionError) Unwrap() error {
	return ErrUnknownAction
}

// Metadata field names reported by MetadataError.
const (
	FieldTitle = "title"
	FieldURL   = "url"
)

// MetadataError lists the metadata fields that must be filled in again.
type MetadataError struct {
	Kind   RequestKind
	Fields []string
}

// Error implements the error interface.
func (e *MetadataError) Error() string {
	return fmt.Sprintf("markup: missing %s metadata: %s", e.Kind, strings.Join(e.Fields, ", "))
}

// Unwrap returns ErrMissingMetadata.
func (e *MetadataError) Unwrap() error {
	return ErrMissingMetadata
}

// Invalid reports whether field must be re-entered.
func (e *MetadataError) Invalid(field string) bool {
	for _, f := range e.Fields {
		if f == field {
			return true
		}
	}
	return false
}
