// Package logging builds the zerolog.Logger shared by the CLI and every
// library component: structured JSON to stderr by default, a human
// console writer when output is a TTY or --verbose is set.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Options configures New.
type Options struct {
	// Verbose forces the human console writer even when stderr isn't a
	// TTY (e.g. output piped to a log viewer that still wants color).
	Verbose bool

	// Level is the minimum level to emit. zerolog.NoLevel selects
	// zerolog.InfoLevel; the zero value is zerolog.DebugLevel.
	Level zerolog.Level

	// Output overrides the destination writer; defaults to os.Stderr.
	Output io.Writer
}

// New builds the root logger every component derives its own
// `.With().Str("component", name).Logger()` sub-logger from.
func New(opts Options) zerolog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	level := opts.Level
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if opts.Verbose || isTerminal(out) {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
