package markup

import "errors"

// Pending request errors.
var (
	// ErrRequestNotFound indicates no pending request has the given id.
	ErrRequestNotFound = errors.New("markup handler: no pending request")

	// ErrRequestResolved indicates the request was already completed.
	ErrRequestResolved = errors.New("markup handler: request already resolved")
)
