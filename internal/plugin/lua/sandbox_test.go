package lua

import (
	"context"
	"errors"
	"fmt"
	"testing"

	glua "github.com/yuin/gopher-lua"
)

type captureLogger struct {
	lines []string
}

func (l *captureLogger) Info(msg string, args ...interface{}) {
	l.lines = append(l.lines, fmt.Sprintf(msg, args...))
}

func TestSandboxRemovesDangerousFunctions(t *testing.T) {
	state, _ := NewState()
	defer state.Close()

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "io", "os", "debug"} {
		if v := state.GetGlobal(name); v != glua.LNil {
			t.Errorf("%s should not be available, got %s", name, v.Type())
		}
	}
}

func TestSandboxRequire(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantErr bool
	}{
		{"string", `local s = require("string"); x = s.upper("a")`, false},
		{"math", `local m = require("math"); x = m.floor(1.5)`, false},
		{"io", `require("io")`, true},
		{"os", `require("os")`, true},
		{"debug", `require("debug")`, true},
		{"file module", `require("evil")`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, _ := NewState()
			defer state.Close()

			err := state.DoString(context.Background(), tt.code)
			if (err != nil) != tt.wantErr {
				t.Errorf("DoString(%q) error = %v, wantErr %v", tt.code, err, tt.wantErr)
			}
		})
	}
}

func TestSandboxPrintGoesToLogger(t *testing.T) {
	logger := &captureLogger{}
	state, _ := NewState(WithLogger(logger))
	defer state.Close()

	if err := state.DoString(context.Background(), `print("hello", 42)`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}

	if len(logger.lines) != 1 || logger.lines[0] != "lua: hello\t42" {
		t.Errorf("logged %q", logger.lines)
	}
}

func TestSandboxInstructionLimit(t *testing.T) {
	state, _ := NewState(WithInstructionLimit(3))
	defer state.Close()

	err := state.DoString(context.Background(), `for i = 1, 10 do print(i) end`)
	if !errors.Is(err, ErrInstructionLimit) {
		t.Fatalf("DoString() error = %v, want ErrInstructionLimit", err)
	}

	if err := state.DoString(context.Background(), `print("ok")`); err != nil {
		t.Errorf("budget not reset between executions: %v", err)
	}
}

func TestSandboxInstructionCounting(t *testing.T) {
	L := glua.NewState()
	defer L.Close()

	sandbox := NewSandbox(L, 5, nil)
	if sandbox.IncrementInstructions(5) {
		t.Error("limit reported exceeded at the limit")
	}
	if !sandbox.IncrementInstructions(1) || !sandbox.Exceeded() {
		t.Error("limit not reported exceeded past the limit")
	}

	sandbox.ResetInstructionCount()
	if sandbox.InstructionCount() != 0 || sandbox.Exceeded() {
		t.Error("ResetInstructionCount() did not reset")
	}
}

func TestSandboxUnlimited(t *testing.T) {
	L := glua.NewState()
	defer L.Close()

	sandbox := NewSandbox(L, 0, nil)
	if sandbox.IncrementInstructions(1 << 40) {
		t.Error("zero limit should be unlimited")
	}
}

func TestSandboxAllow(t *testing.T) {
	L := glua.NewState()
	defer L.Close()

	sandbox := NewSandbox(L, 0, nil)
	if sandbox.allowed("markstorm") {
		t.Error("module allowed before Allow()")
	}
	sandbox.Allow("markstorm")
	if !sandbox.allowed("markstorm") {
		t.Error("module not allowed after Allow()")
	}
	if !sandbox.allowed("string") {
		t.Error("string should be allowed by default")
	}
}
