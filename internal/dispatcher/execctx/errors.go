package execctx

import "errors"

// Context validation errors.
var (
	// ErrMissingSelection indicates the selection adapter is required but not set.
	ErrMissingSelection = errors.New("execution context: selection is required")

	// ErrMissingCollector indicates a metadata collector is required but not set.
	ErrMissingCollector = errors.New("execution context: metadata collector is required")
)
