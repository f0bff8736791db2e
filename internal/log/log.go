// Package log configures the process-wide slog logger.
package log

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	charmlog "charm.land/log/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LevelEnv selects the log level: debug, info, warn or error.
const LevelEnv = "LAUNCHER_LOG_LEVEL"

const (
	defaultMaxSize = 10 // megabytes
	maxBackups     = 3
	maxAge         = 28 // days
	megabyte       = 1024 * 1024
)

var (
	mu   sync.Mutex
	file *os.File
)

// Options configures Setup.
type Options struct {
	// Level name; unknown or empty values mean info.
	Level string
	// File, when set, receives a JSON copy of every record.
	File string
	// MaxSize in megabytes after which File is rotated, 10 when zero.
	MaxSize int
	// Writer for human readable output, os.Stderr when nil.
	Writer io.Writer
}

// Setup installs a new default logger and returns it. Calling Setup again
// replaces the previous logger and closes its file.
//
// The log file is opened before Setup returns, with the rights the process
// has at that point. If it cannot be opened, the console-only logger is still
// installed and the error is returned.
func Setup(opts Options) (*slog.Logger, error) {
	mu.Lock()
	defer mu.Unlock()

	level := ParseLevel(opts.Level)
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	console := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           charmlog.Level(level),
		Prefix:          "launcher",
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})

	closeFile()

	var (
		handler slog.Handler = console
		err     error
	)
	if opts.File != "" {
		file, err = openFile(opts.File, opts.MaxSize)
		if err == nil {
			handler = fanout{console, slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})}
		}
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, err
}

// openFile opens path for appending, creating it if needed. A file that has
// already reached maxSize is rotated first, so nothing has to rename or
// reopen it later in the invocation.
func openFile(path string, maxSize int) (*os.File, error) {
	if maxSize <= 0 {
		maxSize = defaultMaxSize
	}

	info, err := os.Stat(path)
	switch {
	case err == nil && info.Size() >= int64(maxSize)*megabyte:
		rotator := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    maxSize,
			MaxBackups: maxBackups,
			MaxAge:     maxAge,
		}
		if err := rotator.Rotate(); err != nil {
			return nil, fmt.Errorf("rotate log file: %w", err)
		}
		if err := rotator.Close(); err != nil {
			return nil, fmt.Errorf("rotate log file: %w", err)
		}
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("open log file: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// Close closes the log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	return closeFile()
}

func closeFile() error {
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	return err
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(name string) slog.Level {
	lvl, err := charmlog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return slog.LevelInfo
	}
	return slog.Level(lvl)
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
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
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
