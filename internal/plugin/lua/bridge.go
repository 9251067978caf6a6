package lua

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// Bridge converts values between Go and Lua.
type Bridge struct {
	L *lua.LState
}

// NewBridge creates a new Bridge for the given Lua state.
func NewBridge(L *lua.LState) *Bridge {
	return &Bridge{L: L}
}

// ToGoValue converts a Lua value to a Go value.
// Tables become []interface{} when their keys are 1..n, otherwise
// map[string]interface{}.
func (b *Bridge) ToGoValue(lv lua.LValue) interface{} {
	return b.toGoValueWithVisited(lv, make(map[*lua.LTable]bool))
}

func (b *Bridge) toGoValueWithVisited(lv lua.LValue, visited map[*lua.LTable]bool) interface{} {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if visited[v] {
			return nil
		}
		visited[v] = true
		return b.tableToGo(v, visited)
	case *lua.LUserData:
		return v.Value
	default:
		return nil
	}
}

func (b *Bridge) tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) interface{} {
	n := t.Len()
	count := 0
	t.ForEach(func(_, _ lua.LValue) { count++ })

	if n > 0 && n == count {
		arr := make([]interface{}, n)
		for i := 1; i <= n; i++ {
			arr[i-1] = b.toGoValueWithVisited(t.RawGetInt(i), visited)
		}
		return arr
	}

	m := make(map[string]interface{}, count)
	t.ForEach(func(k, v lua.LValue) {
		var key string
		switch kv := k.(type) {
		case lua.LString:
			key = string(kv)
		case lua.LNumber:
			key = fmt.Sprintf("%v", float64(kv))
		default:
			key = k.String()
		}
		m[key] = b.toGoValueWithVisited(v, visited)
	})
	return m
}

// ToLuaValue converts a Go value to a Lua value.
func (b *Bridge) ToLuaValue(v interface{}) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case []string:
		t := b.L.NewTable()
		for i, s := range val {
			t.RawSetInt(i+1, lua.LString(s))
		}
		return t
	case []interface{}:
		t := b.L.NewTable()
		for i, e := range val {
			t.RawSetInt(i+1, b.ToLuaValue(e))
		}
		return t
	case map[string]interface{}:
		t := b.L.NewTable()
		for k, e := range val {
			t.RawSetString(k, b.ToLuaValue(e))
		}
		return t
	case lua.LValue:
		return val
	default:
		ud := b.L.NewUserData()
		ud.Value = v
		return ud
	}
}

// GetTableString gets a string field from a Lua table.
func (b *Bridge) GetTableString(t *lua.LTable, key string) (string, bool) {
	if s, ok := t.RawGetString(key).(lua.LString); ok {
		return string(s), true
	}
	return "", false
}

// GetTableInt gets an int field from a Lua table.
func (b *Bridge) GetTableInt(t *lua.LTable, key string) (int, bool) {
	if n, ok := t.RawGetString(key).(lua.LNumber); ok {
		return int(n), true
	}
	return 0, false
}

// SetTableField sets a field in a Lua table.
func (b *Bridge) SetTableField(t *lua.LTable, key string, value interface{}) {
	t.RawSetString(key, b.ToLuaValue(value))
}
