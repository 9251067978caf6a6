package lua

import (
	"strings"
	"sync"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// Sandbox restricts Lua execution to safe operations.
//
// gopher-lua exposes no instruction hook, so the budget counts calls from
// scripts into the host (markstorm.* functions and print). Runaway pure-Lua
// loops are stopped by the execution timeout instead.
type Sandbox struct {
	L *lua.LState

	instructionLimit int64
	instructionCount int64

	logger Logger

	mu      sync.RWMutex
	modules map[string]bool
}

// builtinModules are the standard modules scripts may require.
var builtinModules = []string{"string", "table", "math"}

// NewSandbox creates a new sandbox for the Lua state.
func NewSandbox(L *lua.LState, instructionLimit int64, logger Logger) *Sandbox {
	s := &Sandbox{
		L:                L,
		instructionLimit: instructionLimit,
		logger:           logger,
		modules:          make(map[string]bool),
	}
	for _, name := range builtinModules {
		s.modules[name] = true
	}
	return s
}

// Install sets up the sandbox restrictions.
func (s *Sandbox) Install() {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		s.L.SetGlobal(name, lua.LNil)
	}

	s.installPrint()
	s.installSafeRequire()
}

// installPrint routes print to the logger, or silences it.
func (s *Sandbox) installPrint() {
	s.L.SetGlobal("print", s.L.NewFunction(func(L *lua.LState) int {
		s.Charge(L)
		parts := make([]string, 0, L.GetTop())
		for i := 1; i <= L.GetTop(); i++ {
			parts = append(parts, L.ToStringMeta(L.Get(i)).String())
		}
		if s.logger != nil {
			s.logger.Info("lua: %s", strings.Join(parts, "\t"))
		}
		return 0
	}))
}

// installSafeRequire clears the module search paths and replaces require
// with a version that only loads allowed modules.
func (s *Sandbox) installSafeRequire() {
	if pkg, ok := s.L.GetGlobal("package").(*lua.LTable); ok {
		s.L.SetField(pkg, "path", lua.LString(""))
		s.L.SetField(pkg, "cpath", lua.LString(""))
	}

	originalRequire := s.L.GetGlobal("require")

	s.L.SetGlobal("require", s.L.NewFunction(func(L *lua.LState) int {
		modName := L.CheckString(1)
		if !s.allowed(modName) {
			L.RaiseError("module %q is not available", modName)
			return 0
		}
		if mod := L.GetGlobal(modName); mod != lua.LNil {
			L.Push(mod)
			return 1
		}
		L.Push(originalRequire)
		L.Push(lua.LString(modName))
		L.Call(1, 1)
		return 1
	}))
}

// Allow permits require(name).
func (s *Sandbox) Allow(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modules[name] = true
}

func (s *Sandbox) allowed(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modules[name]
}

// Charge counts one host call and raises a Lua error once the budget is spent.
func (s *Sandbox) Charge(L *lua.LState) {
	if s.IncrementInstructions(1) {
		L.RaiseError("%s", ErrInstructionLimit.Error())
	}
}

// ResetInstructionCount resets the instruction counter.
func (s *Sandbox) ResetInstructionCount() {
	atomic.StoreInt64(&s.instructionCount, 0)
}

// InstructionCount returns the current instruction count.
func (s *Sandbox) InstructionCount() int64 {
	return atomic.LoadInt64(&s.instructionCount)
}

// IncrementInstructions adds to the instruction count and returns true if limit exceeded.
func (s *Sandbox) IncrementInstructions(n int64) bool {
	count := atomic.AddInt64(&s.instructionCount, n)
	if s.instructionLimit <= 0 {
		return false
	}
	return count > s.instructionLimit
}

// Exceeded reports whether the current execution ran over budget.
func (s *Sandbox) Exceeded() bool {
	return s.instructionLimit > 0 && s.InstructionCount() > s.instructionLimit
}
