package dispatcher

import (
	"sort"
	"sync"

	"github.com/dshills/markstorm/internal/dispatcher/handler"
)

// Registry manages handler registration by exact action name.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string][]handler.Handler // action name -> handlers (sorted by priority)
}

// NewRegistry creates a new handler registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string][]handler.Handler),
	}
}

// Register adds a handler for an action name.
// Handlers are ordered by priority, highest first; among equal priorities
// the most recent registration wins.
func (r *Registry) Register(actionName string, h handler.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	handlers := append([]handler.Handler{h}, r.handlers[actionName]...)
	sort.SliceStable(handlers, func(i, j int) bool {
		return handlers[i].Priority() > handlers[j].Priority()
	})
	r.handlers[actionName] = handlers
}

// Unregister removes all handlers for an action name.
func (r *Registry) Unregister(actionName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, actionName)
}

// UnregisterHandler removes a specific handler for an action name.
func (r *Registry) UnregisterHandler(actionName string, h handler.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	handlers := r.handlers[actionName]
	for i, existing := range handlers {
		if existing == h {
			handlers = append(handlers[:i:i], handlers[i+1:]...)
			break
		}
	}
	if len(handlers) == 0 {
		delete(r.handlers, actionName)
		return
	}
	r.handlers[actionName] = handlers
}

// Get returns the highest priority handler for an action.
// Returns nil if no handler is registered.
func (r *Registry) Get(actionName string) handler.Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handlers := r.handlers[actionName]
	if len(handlers) == 0 {
		return nil
	}
	return handlers[0]
}

// Has returns true if a handler is registered for the action.
func (r *Registry) Has(actionName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers[actionName]) > 0
}

// List returns all registered action names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered actions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}
