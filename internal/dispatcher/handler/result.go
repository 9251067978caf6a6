package handler

import (
	"fmt"

	"github.com/dshills/markstorm/internal/engine/selection"
)

// ResultStatus indicates the outcome of an action.
type ResultStatus uint8

const (
	// StatusOK indicates successful execution.
	StatusOK ResultStatus = iota
	// StatusNoOp indicates the action had no effect.
	StatusNoOp
	// StatusError indicates an error occurred.
	StatusError
	// StatusAsync indicates the action is waiting for metadata.
	StatusAsync
	// StatusCancelled indicates the action was cancelled.
	StatusCancelled
)

// String returns a string representation of the status.
func (s ResultStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoOp:
		return "no-op"
	case StatusError:
		return "error"
	case StatusAsync:
		return "async"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Edit records a text edit applied by a handler.
type Edit struct {
	// Range is the replaced range, in offsets of the buffer before the edit.
	Range selection.Range
	// NewText is the text that was inserted.
	NewText string
	// OldText is the text that was replaced.
	OldText string
	// Selection is the selection after the edit.
	Selection selection.Range
}

// Common result data keys.
const (
	// DataRequestID holds the id of a pending metadata request.
	DataRequestID = "request_id"
	// DataRequestKind holds the kind of a pending metadata request.
	DataRequestKind = "request_kind"
)

// Result represents the outcome of handling an action.
type Result struct {
	// Status indicates the result status.
	Status ResultStatus

	// Error contains any error that occurred.
	Error error

	// Message is an optional status message for display.
	Message string

	// Edits contains text edits that were applied.
	Edits []Edit

	// Data holds handler-specific return data.
	Data map[string]interface{}
}

// IsOK returns true if the result indicates success.
func (r Result) IsOK() bool {
	return r.Status == StatusOK
}

// IsError returns true if the result indicates an error.
func (r Result) IsError() bool {
	return r.Status == StatusError
}

// IsAsync returns true if the action is still waiting for input.
func (r Result) IsAsync() bool {
	return r.Status == StatusAsync
}

// Changed returns true if the result carries at least one edit.
func (r Result) Changed() bool {
	return len(r.Edits) > 0
}

// Success creates a successful result.
func Success() Result {
	return Result{Status: StatusOK}
}

// SuccessWithMessage creates a successful result with a message.
func SuccessWithMessage(msg string) Result {
	return Result{Status: StatusOK, Message: msg}
}

// SuccessWithEdit creates a successful result recording a single edit.
func SuccessWithEdit(edit Edit) Result {
	return Result{Status: StatusOK, Edits: []Edit{edit}}
}

// NoOp creates a no-operation result.
func NoOp() Result {
	return Result{Status: StatusNoOp}
}

// NoOpWithMessage creates a no-operation result with a message.
func NoOpWithMessage(msg string) Result {
	return Result{Status: StatusNoOp, Message: msg}
}

// Error creates an error result.
func Error(err error) Result {
	return Result{Status: StatusError, Error: err}
}

// Errorf creates an error result with a formatted message.
func Errorf(format string, args ...interface{}) Result {
	return Result{
		Status: StatusError,
		Error:  fmt.Errorf(format, args...),
	}
}

// Async creates an async result.
func Async() Result {
	return Result{Status: StatusAsync}
}

// AsyncWithMessage creates an async result with a message.
func AsyncWithMessage(msg string) Result {
	return Result{Status: StatusAsync, Message: msg}
}

// Cancelled creates a cancelled result.
func Cancelled() Result {
	return Result{Status: StatusCancelled}
}

// CancelledWithMessage creates a cancelled result with a message.
func CancelledWithMessage(msg string) Result {
	return Result{Status: StatusCancelled, Message: msg}
}

// WithMessage returns a copy of the result with the specified message.
func (r Result) WithMessage(msg string) Result {
	r.Message = msg
	return r
}

// WithEdit returns a copy of the result with an edit added.
func (r Result) WithEdit(edit Edit) Result {
	r.Edits = append(r.Edits, edit)
	return r
}

// WithData returns a copy of the result with data added.
func (r Result) WithData(key string, value interface{}) Result {
	data := make(map[string]interface{}, len(r.Data)+1)
	for k, v := range r.Data {
		data[k] = v
	}
	data[key] = value
	r.Data = data
	return r
}

// GetData retrieves a value from the result data.
func (r Result) GetData(key string) (interface{}, bool) {
	if r.Data == nil {
		return nil, false
	}
	v, ok := r.Data[key]
	return v, ok
}

// GetDataString retrieves a string value from the result data.
func (r Result) GetDataString(key string) string {
	if v, ok := r.GetData(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// LastSelection returns the selection left by the final edit.
func (r Result) LastSelection() (selection.Range, bool) {
	if len(r.Edits) == 0 {
		return selection.Range{}, false
	}
	return r.Edits[len(r.Edits)-1].Selection, true
}
