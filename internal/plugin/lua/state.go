package lua

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// Default limits for Lua state.
const (
	DefaultExecutionTimeout = 2 * time.Second
	DefaultInstructionLimit = 100_000
)

// Logger receives script output from print and markstorm.log.
type Logger interface {
	Info(msg string, args ...interface{})
}

// State wraps gopher-lua with a sandbox and execution limits.
//
// gopher-lua's LState is not goroutine-safe. The mutex serializes every call
// made through State; callers must not touch L directly while State is in use.
type State struct {
	L *lua.LState

	mu sync.Mutex

	executionTimeout time.Duration
	instructionLimit int64
	logger           Logger

	sandbox *Sandbox

	closed bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithExecutionTimeout bounds every script call. Zero disables the timeout.
func WithExecutionTimeout(d time.Duration) StateOption {
	return func(s *State) {
		s.executionTimeout = d
	}
}

// WithInstructionLimit sets the host call budget per execution.
func WithInstructionLimit(limit int64) StateOption {
	return func(s *State) {
		s.instructionLimit = limit
	}
}

// WithLogger routes script output to logger.
func WithLogger(logger Logger) StateOption {
	return func(s *State) {
		s.logger = logger
	}
}

// NewState creates a new sandboxed Lua state.
func NewState(opts ...StateOption) (*State, error) {
	state := &State{
		executionTimeout: DefaultExecutionTimeout,
		instructionLimit: DefaultInstructionLimit,
	}

	for _, opt := range opts {
		opt(state)
	}

	L := lua.NewState(lua.Options{
		SkipOpenLibs: true,
	})
	state.L = L

	openSafeLibraries(L)

	state.sandbox = NewSandbox(L, state.instructionLimit, state.logger)
	state.sandbox.Install()

	return state, nil
}

// openSafeLibraries opens only safe Lua standard libraries.
// io, os and debug are never opened.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenPackage(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// DoFile executes a Lua file.
func (s *State) DoFile(ctx context.Context, path string) error {
	return s.run(ctx, func() error {
		return s.L.DoFile(path)
	})
}

// DoString executes a Lua chunk.
func (s *State) DoString(ctx context.Context, code string) error {
	return s.run(ctx, func() error {
		return s.L.DoString(code)
	})
}

// Exec runs fn against the underlying LState under the lock, with the
// timeout and budget applied.
func (s *State) Exec(ctx context.Context, fn func(L *lua.LState) error) error {
	return s.run(ctx, func() error {
		return fn(s.L)
	})
}

// Call calls fn with args and returns its results.
// Returns an empty slice (not nil) if the function returns no values.
func (s *State) Call(ctx context.Context, fn *lua.LFunction, args ...lua.LValue) ([]lua.LValue, error) {
	var results []lua.LValue
	err := s.run(ctx, func() error {
		stackTop := s.L.GetTop()

		s.L.Push(fn)
		for _, arg := range args {
			s.L.Push(arg)
		}
		if err := s.L.PCall(len(args), lua.MultRet, nil); err != nil {
			return err
		}

		nRet := s.L.GetTop() - stackTop
		results = make([]lua.LValue, 0, max(nRet, 0))
		for i := 0; i < nRet; i++ {
			results = append(results, s.L.Get(stackTop+i+1))
		}
		if nRet > 0 {
			s.L.Pop(nRet)
		}
		return nil
	})
	return results, err
}

// run executes fn under the lock with the timeout and budget applied.
func (s *State) run(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if s.executionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.executionTimeout)
		defer cancel()
	}

	s.sandbox.ResetInstructionCount()
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	err := s.doWithRecovery(fn)
	if err == nil {
		return nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrExecutionTimeout, err)
	}
	if s.sandbox.Exceeded() {
		return fmt.Errorf("%w: %v", ErrInstructionLimit, err)
	}
	return err
}

// doWithRecovery executes a function with panic recovery.
func (s *State) doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// GetGlobal returns a global variable value.
func (s *State) GetGlobal(name string) lua.LValue {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return lua.LNil
	}
	return s.L.GetGlobal(name)
}

// RegisterModule exposes funcs as the global table name and as a module
// loadable with require(name).
func (s *State) RegisterModule(name string, funcs map[string]lua.LGFunction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	mod := s.L.SetFuncs(s.L.NewTable(), funcs)
	s.L.SetGlobal(name, mod)
	s.L.PreloadModule(name, func(L *lua.LState) int {
		L.Push(mod)
		return 1
	})
	s.sandbox.Allow(name)
}

// Sandbox returns the sandbox guarding this state.
func (s *State) Sandbox() *Sandbox {
	return s.sandbox
}

// IsClosed returns true if the state has been closed.
func (s *State) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close releases all resources associated with the Lua state.
// After Close is called, all other methods will return ErrStateClosed.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.L.Close()
	s.closed = true
	return nil
}
