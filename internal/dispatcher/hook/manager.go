package hook

import (
	"sync"

	"github.com/dshills/markstorm/internal/dispatcher/execctx"
	"github.com/dshills/markstorm/internal/dispatcher/handler"
	"github.com/dshills/markstorm/internal/input"
)

// chain is a list of hooks kept in run order. Names are unique; adding a
// hook under an existing name replaces it. Hooks with equal priority run in
// registration order.
type chain[H Hook] struct {
	hooks []H
	// before reports whether priority a runs before priority b.
	before func(a, b int) bool
}

func (c *chain[H]) add(h H) {
	c.remove(h.Name())

	i := len(c.hooks)
	for j, existing := range c.hooks {
		if c.before(h.Priority(), existing.Priority()) {
			i = j
			break
		}
	}
	c.hooks = append(c.hooks, h)
	copy(c.hooks[i+1:], c.hooks[i:])
	c.hooks[i] = h
}

func (c *chain[H]) remove(name string) bool {
	for i, h := range c.hooks {
		if h.Name() == name {
			c.hooks = append(c.hooks[:i:i], c.hooks[i+1:]...)
			return true
		}
	}
	return false
}

func (c *chain[H]) snapshot() []H {
	return append([]H(nil), c.hooks...)
}

func (c *chain[H]) names() []string {
	names := make([]string, len(c.hooks))
	for i, h := range c.hooks {
		names[i] = h.Name()
	}
	return names
}

// Manager runs pre-dispatch hooks from highest to lowest priority and
// post-dispatch hooks from lowest to highest, so a high priority hook sees
// an action first and its result last.
type Manager struct {
	mu   sync.RWMutex
	pre  chain[PreDispatchHook]
	post chain[PostDispatchHook]
}

// NewManager creates an empty hook manager.
func NewManager() *Manager {
	return &Manager{
		pre:  chain[PreDispatchHook]{before: func(a, b int) bool { return a > b }},
		post: chain[PostDispatchHook]{before: func(a, b int) bool { return a < b }},
	}
}

// RegisterPre adds a pre-dispatch hook, replacing any hook with its name.
func (m *Manager) RegisterPre(h PreDispatchHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pre.add(h)
}

// RegisterPost adds a post-dispatch hook, replacing any hook with its name.
func (m *Manager) RegisterPost(h PostDispatchHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.post.add(h)
}

// Register adds h to every list whose interface it implements.
func (m *Manager) Register(h Hook) {
	if pre, ok := h.(PreDispatchHook); ok {
		m.RegisterPre(pre)
	}
	if post, ok := h.(PostDispatchHook); ok {
		m.RegisterPost(post)
	}
}

// UnregisterPre removes a pre-dispatch hook by name.
func (m *Manager) UnregisterPre(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pre.remove(name)
}

// UnregisterPost removes a post-dispatch hook by name.
func (m *Manager) UnregisterPost(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.post.remove(name)
}

// Unregister removes a hook by name from both lists.
func (m *Manager) Unregister(name string) bool {
	pre := m.UnregisterPre(name)
	post := m.UnregisterPost(name)
	return pre || post
}

// RunPreDispatch runs the pre-dispatch hooks until one cancels the action.
// It returns the name of the cancelling hook, or "" and true when every
// hook let the action through.
func (m *Manager) RunPreDispatch(action *input.Action, ctx *execctx.ExecutionContext) (string, bool) {
	m.mu.RLock()
	hooks := m.pre.snapshot()
	m.mu.RUnlock()

	for _, h := range hooks {
		if !h.PreDispatch(action, ctx) {
			return h.Name(), false
		}
	}
	return "", true
}

// RunPostDispatch runs every post-dispatch hook.
func (m *Manager) RunPostDispatch(action *input.Action, ctx *execctx.ExecutionContext, result *handler.Result) {
	m.mu.RLock()
	hooks := m.post.snapshot()
	m.mu.RUnlock()

	for _, h := range hooks {
		h.PostDispatch(action, ctx, result)
	}
}

// PreHookCount returns the number of pre-dispatch hooks.
func (m *Manager) PreHookCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pre.hooks)
}

// PostHookCount returns the number of post-dispatch hooks.
func (m *Manager) PostHookCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.post.hooks)
}

// PreHookNames returns the pre-dispatch hook names in run order.
func (m *Manager) PreHookNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pre.names()
}

// PostHookNames returns the post-dispatch hook names in run order.
func (m *Manager) PostHookNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.post.names()
}

// Clear removes all hooks.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pre.hooks = nil
	m.post.hooks = nil
}
