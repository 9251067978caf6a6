// Package notify delivers configuration change events to subscribers.
package notify

import (
	"sort"
	"sync"
)

// ChangeType represents the type of configuration change.
type ChangeType int

const (
	// ChangeSet indicates a setting was added or changed its value.
	ChangeSet ChangeType = iota

	// ChangeReload indicates the configuration was reloaded as a whole.
	// It follows the ChangeSet events of the same reload.
	ChangeReload
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeSet:
		return "set"
	case ChangeReload:
		return "reload"
	default:
		return "unknown"
	}
}

// Change represents a configuration change event.
type Change struct {
	// Path is the dot-separated setting path, e.g. "markup.fence_language".
	// Empty for reload events.
	Path string

	// Type is the type of change.
	Type ChangeType

	// OldValue is the previous value (nil when the setting is new).
	OldValue any

	// NewValue is the new value.
	NewValue any

	// Source identifies where the change came from, e.g. the config file.
	Source string
}

// Observer is called when configuration changes occur.
type Observer func(change Change)

// Subscription represents an active observer subscription.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes this subscription.
func (s *Subscription) Unsubscribe() {
	if s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

type entry struct {
	path     string
	observer Observer
}

// Notifier manages configuration change subscriptions.
type Notifier struct {
	mu sync.RWMutex

	observers map[uint64]entry
	nextID    uint64

	async  bool
	buffer chan Change
	done   chan struct{}
	wg     sync.WaitGroup
	closed bool
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithAsync delivers notifications from a background goroutine.
func WithAsync(bufferSize int) Option {
	return func(n *Notifier) {
		if bufferSize > 0 {
			n.async = true
			n.buffer = make(chan Change, bufferSize)
		}
	}
}

// New creates a new Notifier.
func New(opts ...Option) *Notifier {
	n := &Notifier{
		observers: make(map[uint64]entry),
		done:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(n)
	}

	if n.async {
		n.wg.Add(1)
		go n.processAsync()
	}

	return n
}

// Subscribe registers an observer for all changes.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	return n.SubscribePath("", observer)
}

// SubscribePath registers an observer for a setting or a whole section:
// subscribing to "markup" receives changes to "markup.fence_language".
// Path observers also receive reload events.
func (n *Notifier) SubscribePath(path string, observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.observers[id] = entry{path: path, observer: observer}

	return &Subscription{id: id, notifier: n}
}

// Notify sends a change notification to all relevant observers.
func (n *Notifier) Notify(change Change) {
	n.mu.RLock()
	closed := n.closed
	n.mu.RUnlock()
	if closed {
		return
	}

	if n.async {
		select {
		case n.buffer <- change:
		case <-n.done:
		}
		return
	}

	n.deliverChange(change)
}

// NotifySet is a convenience method for set changes.
func (n *Notifier) NotifySet(path string, oldValue, newValue any, source string) {
	n.Notify(Change{
		Path:     path,
		Type:     ChangeSet,
		OldValue: oldValue,
		NewValue: newValue,
		Source:   source,
	})
}

// NotifyReload is a convenience method for reload events.
func (n *Notifier) NotifyReload(source string) {
	n.Notify(Change{
		Type:   ChangeReload,
		Source: source,
	})
}

// Close shuts down the notifier, delivering buffered changes first.
// It is safe to call Close multiple times.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	n.mu.Unlock()

	close(n.done)
	n.wg.Wait()
}

func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.observers, id)
}

// deliverChange calls matching observers in subscription order, outside the lock.
func (n *Notifier) deliverChange(change Change) {
	n.mu.RLock()
	ids := make([]uint64, 0, len(n.observers))
	for id, e := range n.observers {
		if matches(e.path, change) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	observers := make([]Observer, len(ids))
	for i, id := range ids {
		observers[i] = n.observers[id].observer
	}
	n.mu.RUnlock()

	for _, obs := range observers {
		obs(change)
	}
}

// matches reports whether an observer of path receives change.
func matches(path string, change Change) bool {
	if path == "" || change.Path == "" {
		return true
	}
	return path == change.Path || isParentPath(path, change.Path)
}

// isParentPath checks if parent is a parent path of child.
func isParentPath(parent, child string) bool {
	return len(child) > len(parent) && child[:len(parent)] == parent && child[len(parent)] == '.'
}

// processAsync handles asynchronous notification delivery.
func (n *Notifier) processAsync() {
	defer n.wg.Done()

	for {
		select {
		case change := <-n.buffer:
			n.deliverChange(change)
		case <-n.done:
			for {
				select {
				case change := <-n.buffer:
					n.deliverChange(change)
				default:
					return
				}
			}
		}
	}
}
