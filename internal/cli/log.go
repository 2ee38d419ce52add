// Package cli implements the picplan command-line interface.
//
// This package provides commands for computing layout plans from resize
// query strings, rendering step diagrams, exploring layouts interactively,
// and serving the planning API over HTTP. The CLI is built using cobra and
// supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - plan: Compute a layout plan for a source size and query string
//   - diagram: Render the plan as an SVG step diagram
//   - explore: Interactive TUI for trying targets and modes
//   - presets: List presets from the picplan.toml file
//   - serve: Run the HTTP planning service
//   - cache: Manage the render cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The command
// logger is carried through context.Context (the standard charmbracelet
// pattern) so every command and the HTTP middleware share one logger.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
)

// newLogger builds the CLI logger: prefixed, millisecond-timestamped, and
// filtered at the given level. Planning output goes to stdout, so the logger
// always writes to stderr-side writers.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          "picplan",
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.000",
		Level:           level,
	})
}

// loggerCtxKey carries the command logger through cobra's context.
type loggerCtxKey struct{}

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, l)
}

// loggerFromContext retrieves the logger from ctx, falling back to the
// package default so commands always have a usable logger.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
