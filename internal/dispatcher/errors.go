package dispatcher

import (
	"errors"

	"github.com/dshills/markstorm/internal/markup"
)

// Dispatcher errors.
var (
	// ErrUnknownAction indicates no handler is registered for an action name.
	// It is the same sentinel the markup table reports, so callers can test
	// for either with errors.Is.
	ErrUnknownAction = markup.ErrUnknownAction

	// ErrActionCancelled indicates the action was cancelled by a hook.
	ErrActionCancelled = errors.New("dispatcher: action cancelled by hook")

	// ErrPanic indicates the handler panicked.
	ErrPanic = errors.New("dispatcher: handler panic")

	// ErrInvalidAction indicates the action is invalid.
	ErrInvalidAction = errors.New("dispatcher: invalid action")

	// ErrInvalidFenceLanguage indicates the fence language would break the
	// opening code fence.
	ErrInvalidFenceLanguage = errors.New("dispatcher: invalid fence language")
)

// UnknownActionError reports the action name that had no handler.
type UnknownActionError = markup.UnknownActionError
