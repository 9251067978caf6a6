// Package dispatcher routes markup actions to handlers and coordinates
// execution around a text selection.
//
// # Execution
//
// When an action is dispatched:
//
//  1. The handler registry is consulted. An unknown action name returns an
//     error result wrapping *UnknownActionError; no hook runs and the buffer
//     is not touched.
//  2. An ExecutionContext is built with the selection, the metadata
//     collector, the preview renderer and the markup options.
//  3. Pre-dispatch hooks run in priority order and may cancel the action.
//  4. The handler runs, with panic recovery unless disabled.
//  5. Post-dispatch hooks run and may inspect or modify the result.
//  6. Metrics are recorded when enabled.
//
// # Handlers
//
// Several handlers may be registered for one action name. The highest
// priority wins; among equal priorities the most recent registration wins,
// which lets plugins override a built-in action.
//
// # System
//
// System wires a Dispatcher with the markup handler for every built-in
// action and the standard hooks (audit, action filter, trailing-space trim,
// preview refresh). Prompt actions (image and link) return an async result
// carrying a request id; System.Resume and System.Cancel settle it later.
//
// # Thread Safety
//
// Dispatcher, Registry, Metrics and hook.Manager are safe for concurrent
// use. A single selection must not be dispatched against concurrently.
package dispatcher
