// Package input defines the actions that drive the markup editor.
//
// An Action names a markup operation ("bold", "h2", "link") and carries
// where it came from plus optional arguments. Toolbars, key bindings,
// plugins and the command line all produce Actions; the dispatcher routes
// them to handlers.
package input
