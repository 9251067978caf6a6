// Package hook provides pre/post dispatch hooks for the dispatcher.
//
// Hooks intercept action dispatch for logging, selection adjustment,
// validation and preview refresh. They are ordered by priority.
//
// # Hook Types
//
//   - PreDispatchHook: Called before an action is dispatched. Can cancel the action.
//   - PostDispatchHook: Called after dispatch completes. Can inspect/modify results.
//
// Pre-hooks run from highest to lowest priority; post-hooks run from lowest
// to highest so that high priority hooks see the final result.
//
// # Built-in Hooks
//
//   - AuditHook: Logs all dispatched actions
//   - ActionFilterHook: Cancels disabled actions
//   - ValidationHook: Custom validation before dispatch
//   - TrimSelectionHook: Drops a trailing space from the selection
//   - PreviewHook: Refreshes the preview after edits
//   - TimingHook: Measures action execution time
//
// # Usage Example
//
//	manager := hook.NewManager()
//	manager.Register(hook.NewAuditHook(logger))
//	manager.RegisterPre(hook.NewTrimSelectionHook())
//	manager.RegisterPost(hook.NewPreviewHook())
//
//	if name, ok := manager.RunPreDispatch(&action, ctx); !ok {
//	    return handler.CancelledWithMessage("cancelled by hook " + name)
//	}
//	result := h.Handle(action, ctx)
//	manager.RunPostDispatch(&action, ctx, &result)
package hook
