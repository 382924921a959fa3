// Package logging builds the zerolog loggers used by svcrpt commands.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Options configures New.
type Options struct {
	// Verbose lowers the level to debug.
	Verbose bool
	// File, when set, receives a JSON copy of every event.
	File string
	// Stderr is the console destination. Defaults to os.Stderr.
	Stderr io.Writer
	// NoColor disables ANSI colors on the console writer.
	NoColor bool
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns a logger tagged with a fresh run_id. The returned Closer
// releases the log file, if any, and is always non-nil.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	console := zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339, NoColor: opts.NoColor}

	var (
		out    io.Writer = console
		closer io.Closer = nopCloser{}
	)
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("opening log file: %w", err)
		}
		out = zerolog.MultiLevelWriter(console, f)
		closer = f
	}

	level := zerolog.InfoLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("run_id", NewRunID()).
		Logger()
	return logger, closer, nil
}

// NewRunID returns a random identifier for one invocation.
func NewRunID() string {
	return uuid.NewString()
}
