// Package logging configures the process-wide structured logger.
//
// Console output goes to stderr as text. When debug is enabled, every record
// is also written as JSON to a size-rotated file so a failed run can be
// inspected after the fact.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the name of the debug log file inside the log directory.
const FileName = "pytemplate.log"

// Rotation limits for the debug log file.
const (
	maxSizeMB  = 10
	maxBackups = 3
	maxAgeDays = 7
)

// Options controls how Setup builds the logger.
type Options struct {
	// Debug lowers the console level to DEBUG and enables the file log.
	Debug bool
	// Dir is where the debug log file is written. Empty disables the file log.
	Dir string
	// Console receives human-readable records. Defaults to os.Stderr.
	Console io.Writer
	// RunID is attached to every record. A new UUID is generated when empty.
	RunID string
}

// Logger wraps slog.Logger together with the resources it owns.
type Logger struct {
	*slog.Logger
	RunID    string
	FilePath string

	closer io.Closer
}

// Setup builds a Logger from opts. The returned logger must be closed to
// flush the rotating file.
func Setup(opts Options) *Logger {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(console, &slog.HandlerOptions{Level: level}),
	}

	l := &Logger{RunID: runID}
	if opts.Debug && opts.Dir != "" {
		rotator := &lumberjack.Logger{
			Filename:   filepath.Join(opts.Dir, FileName),
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
		}
		handlers = append(handlers, slog.NewJSONHandler(rotator, &slog.HandlerOptions{
			Level:     slog.LevelDebug,
			AddSource: true,
		}))
		l.closer = rotator
		l.FilePath = rotator.Filename
	}

	var h slog.Handler = handlers[0]
	if len(handlers) > 1 {
		h = fanout(handlers)
	}
	l.Logger = slog.New(h).With("run_id", runID)
	return l
}

// Close releases the rotating file, if any.
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// Discard returns a logger that drops every record. Useful as a default for
// components constructed without one.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// fanout sends each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
