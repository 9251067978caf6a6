package selection

import "errors"

// Selection errors.
var (
	// ErrNoStoredSelection indicates Load was called before any Store.
	ErrNoStoredSelection = errors.New("selection: no stored selection")
)
