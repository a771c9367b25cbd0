// Package cli implements the derivgraph command-line interface.
//
// # Commands
//
//   - show, validate, check: load a graph and report on it
//   - render: write DOT or SVG node-link diagrams
//   - export: re-encode a graph as JSON or YAML
//   - schema: print the JSON schema graphs are validated against
//   - browse: interactive terminal browser
//   - serve: HTTP view server
//   - cache: manage the render cache
//
// Every command that takes a [file] argument falls back to the bundled graph.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// passed through context.Context and handed to the loader and the server.
package cli

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// errInvalidGraph is returned after a failed load has already been printed.
var errInvalidGraph = errors.New("derivation graph failed validation")

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs completion of an operation with the elapsed time.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs e.g. "Rendered graph.svg (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
