// Package watcher reports changes to configuration files.
//
// Files are watched through their parent directory so that editors which
// save by writing a temporary file and renaming it over the original are
// still noticed. Bursts of events for one file are coalesced.
package watcher

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrWatcherClosed is returned when using a closed watcher.
var ErrWatcherClosed = errors.New("watcher: closed")

// Event represents a file change event.
type Event struct {
	// Path is the absolute path to the changed file.
	Path string

	// Op is the operation that triggered the event.
	Op Operation

	// Time is when the event occurred.
	Time time.Time
}

// Operation represents the type of file operation.
type Operation int

const (
	// OpWrite indicates the file was modified.
	OpWrite Operation = iota

	// OpCreate indicates a new file was created.
	OpCreate

	// OpRemove indicates the file was deleted.
	OpRemove

	// OpRename indicates the file was renamed.
	OpRename
)

// String returns the operation name.
func (op Operation) String() string {
	switch op {
	case OpWrite:
		return "write"
	case OpCreate:
		return "create"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Handler is called when a file change is detected.
type Handler func(event Event)

// ErrorHandler is called when the underlying watcher reports an error.
type ErrorHandler func(err error)

// Watcher monitors files for changes.
type Watcher struct {
	mu sync.Mutex

	fsw *fsnotify.Watcher

	files map[string]bool
	dirs  map[string]int

	handlers []Handler
	onError  ErrorHandler

	debounce time.Duration
	pending  map[string]*time.Timer

	closed bool
	done   chan struct{}
	wg     sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long a file must be quiet before its event fires.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithErrorHandler sets the handler for watcher errors.
func WithErrorHandler(h ErrorHandler) Option {
	return func(w *Watcher) {
		w.onError = h
	}
}

// New creates a new file watcher and starts its event loop.
func New(opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		files:    make(map[string]bool),
		dirs:     make(map[string]int),
		debounce: 100 * time.Millisecond,
		pending:  make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	w.wg.Add(1)
	go w.loop()

	return w, nil
}

// Watch adds a file to the watch list. The file does not need to exist yet,
// but its directory does.
func (w *Watcher) Watch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if w.files[absPath] {
		return nil
	}

	dir := filepath.Dir(absPath)
	if w.dirs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	w.files[absPath] = true
	return nil
}

// Unwatch removes a file from the watch list.
func (w *Watcher) Unwatch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if !w.files[absPath] {
		return nil
	}
	delete(w.files, absPath)

	dir := filepath.Dir(absPath)
	w.dirs[dir]--
	if w.dirs[dir] == 0 {
		delete(w.dirs, dir)
		return w.fsw.Remove(dir)
	}
	return nil
}

// OnChange registers a handler for file change events.
func (w *Watcher) OnChange(handler Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, handler)
}

// WatchedFiles returns the list of watched files.
func (w *Watcher) WatchedFiles() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	files := make([]string, 0, len(w.files))
	for path := range w.files {
		files = append(files, path)
	}
	return files
}

// Close stops the watcher. Pending debounced events are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
	close(w.done)
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleFSEvent(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}

// handleFSEvent filters events down to watched files and queues them.
func (w *Watcher) handleFSEvent(ev fsnotify.Event) {
	path, err := filepath.Abs(ev.Name)
	if err != nil {
		return
	}

	w.mu.Lock()
	watched := w.files[path]
	w.mu.Unlock()
	if !watched {
		return
	}

	op, ok := convertOp(ev.Op)
	if !ok {
		return
	}

	event := Event{Path: path, Op: op, Time: time.Now()}
	if w.debounce <= 0 {
		w.emitEvent(event)
		return
	}
	w.queueEvent(event)
}

// convertOp maps an fsnotify operation, preferring the most significant bit.
func convertOp(op fsnotify.Op) (Operation, bool) {
	switch {
	case op.Has(fsnotify.Remove):
		return OpRemove, true
	case op.Has(fsnotify.Rename):
		return OpRename, true
	case op.Has(fsnotify.Create):
		return OpCreate, true
	case op.Has(fsnotify.Write):
		return OpWrite, true
	default:
		return 0, false
	}
}

// queueEvent restarts the quiet period for event.Path; the last event of a
// burst is delivered.
func (w *Watcher) queueEvent(event Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if timer, ok := w.pending[event.Path]; ok {
		timer.Stop()
	}
	w.pending[event.Path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		if w.closed {
			w.mu.Unlock()
			return
		}
		delete(w.pending, event.Path)
		w.mu.Unlock()
		w.emitEvent(event)
	})
}

// emitEvent calls all handlers with the event.
// A panicking handler does not stop the watcher.
func (w *Watcher) emitEvent(event Event) {
	w.mu.Lock()
	handlers := make([]Handler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.Unlock()

	for _, handler := range handlers {
		w.safeCallHandler(handler, event)
	}
}

func (w *Watcher) safeCallHandler(handler Handler, event Event) {
	defer func() {
		_ = recover()
	}()
	handler(event)
}
