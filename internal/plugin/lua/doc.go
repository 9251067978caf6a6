// Package lua runs user scripts that add markup actions.
//
// Scripts execute in a sandboxed gopher-lua state: only the base, string,
// table and math libraries are available, dofile/loadfile/load are removed
// and require is restricted to an allow list. Every call has an execution
// timeout, and calls back into the host are counted against an instruction
// budget.
//
// A script registers actions through the markstorm module:
//
//	markstorm.action("strike", function(selected, ctx)
//	    return "~~" .. selected .. "~~"
//	end)
//
//	markstorm.action("shout", function(selected, ctx)
//	    local text, s, e = markstorm.apply("bold", selected:upper(), 0, #selected)
//	    return text, ctx.start + s, ctx.start + e
//	end)
//
// Offsets passed to and returned from scripts are rune offsets, matching
// the rest of markstorm.
//
// Handler adapts a Runtime to the dispatcher so scripted actions are invoked
// exactly like built-in ones.
package lua
