package handler_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/markstorm/internal/dispatcher/handler"
	"github.com/dshills/markstorm/internal/engine/selection"
)

func TestResultStatus(t *testing.T) {
	tests := []struct {
		status   handler.ResultStatus
		expected string
	}{
		{handler.StatusOK, "ok"},
		{handler.StatusNoOp, "no-op"},
		{handler.StatusError, "error"},
		{handler.StatusAsync, "async"},
		{handler.StatusCancelled, "cancelled"},
		{handler.ResultStatus(99), "unknown"},
	}

	for _, tc := range tests {
		if tc.status.String() != tc.expected {
			t.Errorf("ResultStatus(%d).String() = %q, want %q", tc.status, tc.status.String(), tc.expected)
		}
	}
}

func TestConstructors(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name    string
		result  handler.Result
		status  handler.ResultStatus
		message string
	}{
		{"success", handler.Success(), handler.StatusOK, ""},
		{"success message", handler.SuccessWithMessage("done"), handler.StatusOK, "done"},
		{"noop", handler.NoOp(), handler.StatusNoOp, ""},
		{"noop message", handler.NoOpWithMessage("nothing"), handler.StatusNoOp, "nothing"},
		{"error", handler.Error(errBoom), handler.StatusError, ""},
		{"async", handler.Async(), handler.StatusAsync, ""},
		{"async message", handler.AsyncWithMessage("waiting"), handler.StatusAsync, "waiting"},
		{"cancelled", handler.Cancelled(), handler.StatusCancelled, ""},
		{"cancelled message", handler.CancelledWithMessage("stop"), handler.StatusCancelled, "stop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.result.Status != tt.status {
				t.Errorf("expected %v, got %v", tt.status, tt.result.Status)
			}
			if tt.result.Message != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, tt.result.Message)
			}
		})
	}
}

func TestErrorf(t *testing.T) {
	result := handler.Errorf("bad %s", "thing")

	if !result.IsError() {
		t.Fatalf("expected error status, got %v", result.Status)
	}
	if result.Error.Error() != "bad thing" {
		t.Errorf("expected 'bad thing', got %q", result.Error)
	}
}

func TestSuccessWithEdit(t *testing.T) {
	edit := handler.Edit{
		Range:     selection.NewRange(0, 5),
		NewText:   "**hello**",
		OldText:   "hello",
		Selection: selection.NewRange(0, 9),
	}

	result := handler.SuccessWithEdit(edit)

	if !result.Changed() {
		t.Fatal("expected result to report a change")
	}
	if diff := cmp.Diff([]handler.Edit{edit}, result.Edits); diff != "" {
		t.Errorf("edits mismatch (-want +got):\n%s", diff)
	}
	sel, ok := result.LastSelection()
	if !ok || sel != selection.NewRange(0, 9) {
		t.Errorf("expected last selection [0,9), got %v %v", sel, ok)
	}
}

func TestLastSelectionWithoutEdits(t *testing.T) {
	if _, ok := handler.Success().LastSelection(); ok {
		t.Error("expected no selection for a result without edits")
	}
}

func TestWithDataCopies(t *testing.T) {
	base := handler.Async().WithData(handler.DataRequestID, "abc")
	derived := base.WithData(handler.DataRequestKind, "link")

	if _, ok := base.GetData(handler.DataRequestKind); ok {
		t.Error("expected WithData to leave the original result untouched")
	}
	if derived.GetDataString(handler.DataRequestID) != "abc" {
		t.Errorf("expected request id abc, got %q", derived.GetDataString(handler.DataRequestID))
	}
	if derived.GetDataString("missing") != "" {
		t.Error("expected empty string for missing key")
	}
}

func TestWithMessageAndEdit(t *testing.T) {
	result := handler.Success().
		WithMessage("wrapped").
		WithEdit(handler.Edit{NewText: "a"}).
		WithEdit(handler.Edit{NewText: "b"})

	if result.Message != "wrapped" {
		t.Errorf("expected message 'wrapped', got %q", result.Message)
	}
	if len(result.Edits) != 2 {
		t.Errorf("expected 2 edits, got %d", len(result.Edits))
	}
}

func TestIsAsync(t *testing.T) {
	if !handler.Async().IsAsync() {
		t.Error("expected Async() to be async")
	}
	if handler.Success().IsAsync() {
		t.Error("expected Success() not to be async")
	}
}
