// Package main is the entry point for the markstorm command.
//
// markstorm applies markup actions to a markdown document read from a file
// or standard input and prints the result.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/markstorm/internal/app"
	"github.com/dshills/markstorm/internal/dispatcher"
	"github.com/dshills/markstorm/internal/dispatcher/handler"
	"github.com/dshills/markstorm/internal/input"
	"github.com/dshills/markstorm/internal/markup"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// cliOptions holds the parsed command line.
type cliOptions struct {
	action   string
	start    int
	end      int
	meta     string
	json     bool
	preview  bool
	list     bool
	write    bool
	version  bool
	stats    bool
	file     string
	editor   app.Options
	scripts  []string
	logLevel string
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	if opts.version {
		fmt.Fprintf(stdout, "markstorm %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return exitOK
	}

	opts.editor.LogOutput = stderr
	ed, err := app.New(context.Background(), opts.editor)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to initialize: %v\n", err)
		return exitFailure
	}
	defer ed.Close()

	if opts.list {
		for _, name := range ed.Actions() {
			fmt.Fprintln(stdout, name)
		}
		return exitOK
	}

	actions, err := buildActions(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	doc, err := readDocument(opts.file, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}

	end := opts.end
	if end < 0 {
		end = opts.start
	}
	doc.Select(opts.start, end)

	results := ed.DispatchAll(doc, actions)
	if opts.stats {
		writeStats(stderr, ed.Metrics())
	}
	for _, result := range results {
		if code := report(result, stderr, ed); code != exitOK {
			return code
		}
	}
	result := results[len(results)-1]

	if opts.write {
		if err := doc.Save(); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitFailure
		}
	}

	switch {
	case opts.preview:
		fmt.Fprint(stdout, ed.Preview().HTML())
	case opts.json:
		out, err := encodeJSON(doc, result)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitFailure
		}
		fmt.Fprintln(stdout, out)
	default:
		fmt.Fprint(stdout, doc.Content())
	}
	return exitOK
}

func parseFlags(args []string, stderr io.Writer) (*cliOptions, error) {
	opts := &cliOptions{}
	fs := flag.NewFlagSet("markstorm", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.action, "action", "", "Actions to apply, comma separated (see -list)")
	fs.StringVar(&opts.action, "a", "", "Actions to apply (shorthand)")
	fs.IntVar(&opts.start, "start", 0, "Selection start, in characters")
	fs.IntVar(&opts.end, "end", -1, "Selection end, in characters (default: start)")
	fs.StringVar(&opts.editor.ConfigPath, "config", "", "Path to configuration file")
	fs.StringVar(&opts.editor.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.meta, "meta", "", `Image/link metadata as JSON, e.g. {"title":"..","url":".."}`)
	fs.BoolVar(&opts.json, "json", false, "Print the result as JSON")
	fs.BoolVar(&opts.preview, "preview", false, "Print the rendered HTML instead of markdown")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.BoolVar(&opts.list, "list", false, "List available actions")
	fs.BoolVar(&opts.write, "w", false, "Write the result back to the file")
	fs.BoolVar(&opts.stats, "stats", false, "Print dispatch statistics to stderr")
	fs.BoolVar(&opts.version, "version", false, "Show version information")
	fs.Func("script", "Lua script defining extra actions (repeatable)", func(s string) error {
		opts.scripts = append(opts.scripts, s)
		return nil
	})

	fs.Usage = func() {
		fmt.Fprintf(stderr, "markstorm - markdown selection transforms\n\n")
		fmt.Fprintf(stderr, "Usage: markstorm -action NAME[,NAME...] [-start N] [-end N] [options] [file]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  markstorm -action bold -start 0 -end 5 notes.md\n")
		fmt.Fprintf(stderr, "  echo cat.jpg | markstorm -action image -end 7 -meta '{\"title\":\"cat\"}'\n")
		fmt.Fprintf(stderr, "  markstorm -action bold,italic -end 4 notes.md\n")
		fmt.Fprintf(stderr, "  markstorm -list\n")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if opts.logLevel != "" {
		if _, err := app.ParseLogLevel(opts.logLevel); err != nil {
			return nil, fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", opts.logLevel)
		}
	}

	if fs.NArg() > 1 {
		return nil, fmt.Errorf("expected at most one file, got %d", fs.NArg())
	}
	opts.file = fs.Arg(0)
	if opts.write && opts.file == "" {
		return nil, errors.New("-w needs a file argument")
	}
	if opts.start < 0 {
		return nil, fmt.Errorf("invalid -start %d", opts.start)
	}

	opts.editor.LogLevel = opts.logLevel
	opts.editor.Preview = opts.preview
	opts.editor.Scripts = opts.scripts
	opts.editor.Metrics = opts.stats
	return opts, nil
}

// buildActions creates the actions named by -action, each carrying the
// -meta arguments.
func buildActions(opts *cliOptions) ([]input.Action, error) {
	var names []string
	for _, name := range strings.Split(opts.action, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, errors.New("-action is required (see -list)")
	}

	var meta gjson.Result
	if opts.meta != "" {
		if !gjson.Valid(opts.meta) {
			return nil, fmt.Errorf("-meta is not valid JSON: %s", opts.meta)
		}
		meta = gjson.Parse(opts.meta)
		if !meta.IsObject() {
			return nil, errors.New("-meta must be a JSON object")
		}
	}

	actions := make([]input.Action, len(names))
	for i, name := range names {
		action := input.NewAction(name, input.SourceCLI)
		meta.ForEach(func(key, value gjson.Result) bool {
			switch key.String() {
			case "title":
				action.Args.Title = value.String()
			case "url":
				action.Args.URL = value.String()
			default:
				action = action.WithExtra(key.String(), value.Value())
			}
			return true
		})
		actions[i] = action
	}
	return actions, nil
}

// writeStats prints the dispatch counters followed by one line per action.
func writeStats(w io.Writer, m *dispatcher.Metrics) {
	if m == nil {
		return
	}
	snap := m.Snapshot()
	fmt.Fprintf(w, "dispatches=%d errors=%d async=%d panics=%d avg=%s\n",
		snap.TotalDispatches, snap.TotalErrors, snap.TotalAsync, snap.TotalPanics, snap.AverageDuration)
	for _, am := range m.TopActions(snap.ActionCount) {
		fmt.Fprintf(w, "  %s count=%d errors=%.0f%% avg=%s\n",
			am.Name, am.DispatchCount, am.ErrorRate(), am.AverageActionDuration())
	}
}

func readDocument(path string, stdin io.Reader) (*app.Document, error) {
	if path == "" || path == "-" {
		return app.ReadDocument(stdin)
	}
	return app.OpenDocument(path)
}

// report prints failures and returns the exit code for result.
func report(result handler.Result, stderr io.Writer, ed *app.Editor) int {
	switch result.Status {
	case handler.StatusOK, handler.StatusNoOp:
		return exitOK
	case handler.StatusAsync:
		kind := result.GetDataString(handler.DataRequestKind)
		fmt.Fprintf(stderr, "Error: %s needs a title and url (use -meta)\n", kind)
		return exitFailure
	case handler.StatusCancelled:
		msg := result.Message
		if msg == "" {
			msg = "action cancelled"
		}
		fmt.Fprintf(stderr, "Error: %s\n", msg)
		return exitFailure
	}

	fmt.Fprintf(stderr, "Error: %v\n", result.Error)
	var unknown *markup.UnknownActionError
	if errors.As(result.Error, &unknown) {
		if suggestions := ed.Suggest(unknown.Name); len(suggestions) > 0 {
			fmt.Fprintf(stderr, "Did you mean: %s?\n", strings.Join(suggestions, ", "))
		} else {
			fmt.Fprintf(stderr, "Available actions: %s\n", strings.Join(ed.Actions(), ", "))
		}
		return exitUsage
	}
	return exitFailure
}

// encodeJSON renders the document and its selection as a JSON object.
func encodeJSON(doc *app.Document, result handler.Result) (string, error) {
	sel := doc.Selected()
	out := "{}"
	values := []struct {
		path  string
		value interface{}
	}{
		{"text", doc.Content()},
		{"selection.start", sel.Start},
		{"selection.end", sel.End},
		{"status", result.Status.String()},
	}
	if result.Message != "" {
		values = append(values, struct {
			path  string
			value interface{}
		}{"message", result.Message})
	}

	var err error
	for _, v := range values {
		if out, err = sjson.Set(out, v.path, v.value); err != nil {
			return "", fmt.Errorf("encode %s: %w", v.path, err)
		}
	}
	return out, nil
}
