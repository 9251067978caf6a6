package lua

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/markstorm/internal/engine/selection"
	"github.com/dshills/markstorm/internal/markup"
)

// ModuleName is the global table (and require name) scripts use.
const ModuleName = "markstorm"

// Runtime runs user scripts that register markup actions.
//
// Scripts call markstorm.action(name, fn). When the action is dispatched,
// fn(selected, ctx) receives the selected text and a table with the fields
// start, finish (rune offsets of the selection), text (the whole buffer) and
// args (extra action arguments). It returns the replacement text and an
// optional selection start and end in the edited buffer; returning nil
// leaves the buffer untouched. A table {text=, start=, finish=} is accepted
// in place of the multiple returns.
type Runtime struct {
	state  *State
	bridge *Bridge

	mu      sync.RWMutex
	actions map[string]*lua.LFunction
	options markup.Options
}

// NewRuntime creates a sandboxed runtime with the markstorm module installed.
func NewRuntime(opts ...StateOption) (*Runtime, error) {
	state, err := NewState(opts...)
	if err != nil {
		return nil, err
	}

	r := &Runtime{
		state:   state,
		bridge:  NewBridge(state.L),
		actions: make(map[string]*lua.LFunction),
		options: markup.DefaultOptions(),
	}

	state.RegisterModule(ModuleName, map[string]lua.LGFunction{
		"action":  r.luaAction,
		"apply":   r.luaApply,
		"actions": r.luaActions,
		"log":     r.luaLog,
	})

	return r, nil
}

// SetOptions sets the options used by markstorm.apply.
func (r *Runtime) SetOptions(opts markup.Options) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.options = opts
}

// LoadFile runs a script file, registering the actions it declares.
func (r *Runtime) LoadFile(ctx context.Context, path string) error {
	if err := r.state.DoFile(ctx, path); err != nil {
		return fmt.Errorf("lua: load %s: %w", path, err)
	}
	return nil
}

// LoadString runs a script chunk, registering the actions it declares.
func (r *Runtime) LoadString(ctx context.Context, code string) error {
	return r.state.DoString(ctx, code)
}

// Actions returns the names of the registered actions, sorted.
func (r *Runtime) Actions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a script registered name.
func (r *Runtime) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.actions[name]
	return ok
}

// Run executes the scripted action name against st.
// The boolean result is false when the script declined to edit.
func (r *Runtime) Run(ctx context.Context, name string, st markup.State, args map[string]interface{}) (markup.Change, bool, error) {
	r.mu.RLock()
	fn, ok := r.actions[name]
	r.mu.RUnlock()
	if !ok {
		return markup.Change{}, false, fmt.Errorf("%w: %s", ErrActionNotFound, name)
	}

	st = markup.NewState(st.Text, st.Selection)

	var ret []lua.LValue
	err := r.state.Exec(ctx, func(L *lua.LState) error {
		info := L.NewTable()
		r.bridge.SetTableField(info, "start", st.Selection.Start)
		r.bridge.SetTableField(info, "finish", st.Selection.End)
		r.bridge.SetTableField(info, "text", st.Text)
		if len(args) > 0 {
			r.bridge.SetTableField(info, "args", args)
		}

		top := L.GetTop()
		L.Push(fn)
		L.Push(lua.LString(st.Selected()))
		L.Push(info)
		if err := L.PCall(2, lua.MultRet, nil); err != nil {
			return err
		}
		n := L.GetTop() - top
		for i := 1; i <= n; i++ {
			ret = append(ret, L.Get(top+i))
		}
		if n > 0 {
			L.Pop(n)
		}
		return nil
	})
	if err != nil {
		return markup.Change{}, false, &ScriptError{Action: name, Err: err}
	}

	c, ok, err := r.change(st, ret)
	if err != nil {
		return markup.Change{}, false, &ScriptError{Action: name, Err: err}
	}
	return c, ok, nil
}

// change builds the edit described by an action's return values.
func (r *Runtime) change(st markup.State, ret []lua.LValue) (markup.Change, bool, error) {
	if len(ret) == 0 || ret[0] == lua.LNil {
		return markup.Change{}, false, nil
	}

	var (
		text       string
		start, end int
		hasStart   bool
		hasEnd     bool
	)

	switch v := ret[0].(type) {
	case lua.LString:
		text = string(v)
		if len(ret) > 1 {
			if n, ok := ret[1].(lua.LNumber); ok {
				start, hasStart = int(n), true
			}
		}
		if len(ret) > 2 {
			if n, ok := ret[2].(lua.LNumber); ok {
				end, hasEnd = int(n), true
			}
		}
	case *lua.LTable:
		var ok bool
		if text, ok = r.bridge.GetTableString(v, "text"); !ok {
			return markup.Change{}, false, fmt.Errorf("%w: table without text", ErrInvalidReturn)
		}
		start, hasStart = r.bridge.GetTableInt(v, "start")
		end, hasEnd = r.bridge.GetTableInt(v, "finish")
	default:
		return markup.Change{}, false, fmt.Errorf("%w: %s", ErrInvalidReturn, ret[0].Type())
	}

	rng := st.Selection
	newLen := utf8.RuneCountInString(st.Text) - rng.Len() + utf8.RuneCountInString(text)

	sel := selection.NewRange(rng.Start, rng.Start+utf8.RuneCountInString(text))
	switch {
	case hasStart && hasEnd:
		sel = selection.NewRange(start, end)
	case hasStart:
		sel = selection.Caret(start)
	}

	return markup.Change{
		Range:     rng,
		Text:      text,
		Selection: sel.Clamp(newLen),
	}, true, nil
}

// Close releases the Lua state.
func (r *Runtime) Close() error {
	return r.state.Close()
}

// luaAction implements markstorm.action(name, fn).
func (r *Runtime) luaAction(L *lua.LState) int {
	r.state.sandbox.Charge(L)
	name := L.CheckString(1)
	fn := L.CheckFunction(2)
	if name == "" {
		L.ArgError(1, "action name must not be empty")
		return 0
	}

	r.mu.Lock()
	r.actions[name] = fn
	r.mu.Unlock()
	return 0
}

// luaApply implements markstorm.apply(name, text, start, finish), running a
// built-in transform and returning the new text and selection.
func (r *Runtime) luaApply(L *lua.LState) int {
	r.state.sandbox.Charge(L)
	name := L.CheckString(1)
	text := L.CheckString(2)
	start := L.OptInt(3, 0)
	end := L.OptInt(4, start)

	r.mu.RLock()
	opts := r.options
	r.mu.RUnlock()

	st := markup.NewState(text, selection.NewRange(start, end))
	out, err := markup.Apply(name, st, opts)
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	if out.Request != nil {
		L.RaiseError("action %q needs metadata and cannot be applied from a script", name)
		return 0
	}

	L.Push(lua.LString(out.Change.ApplyTo(st.Text)))
	L.Push(lua.LNumber(out.Change.Selection.Start))
	L.Push(lua.LNumber(out.Change.Selection.End))
	return 3
}

// luaActions implements markstorm.actions(), listing built-in action names.
func (r *Runtime) luaActions(L *lua.LState) int {
	r.state.sandbox.Charge(L)
	L.Push(r.bridge.ToLuaValue(markup.Names()))
	return 1
}

// luaLog implements markstorm.log(...).
func (r *Runtime) luaLog(L *lua.LState) int {
	r.state.sandbox.Charge(L)
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, fmt.Sprint(r.bridge.ToGoValue(L.Get(i))))
	}
	if r.state.logger != nil {
		r.state.logger.Info("lua: %s", strings.Join(parts, " "))
	}
	return 0
}
