// Package logging sets up the application logger: structured records to a
// size-rotated file, optional console output for non-TUI commands, and a
// notify hook that feeds log lines into the on-screen activity view.
// Writing to stderr while bubbletea owns the terminal corrupts the screen,
// so the TUI runs with console output off and watches the hook instead.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// NotifyFunc receives each log record's level and rendered message.
type NotifyFunc func(level slog.Level, message string)

// Options configure Setup.
type Options struct {
	// FilePath is the rotated log file. Empty disables file logging.
	FilePath string
	// Level is the minimum level written anywhere.
	Level slog.Level
	// Console mirrors records to stderr.
	Console bool
	// Notify, if set, receives every record at or above Level.
	Notify NotifyFunc
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup builds the logger and installs it as the slog default.
func Setup(opts Options) (*slog.Logger, error) {
	var handlers []slog.Handler

	if opts.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0o755); err != nil {
			return nil, err
		}
		rotated := &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     30, // days
			Compress:   true,
		}
		handlers = append(handlers, slog.NewJSONHandler(rotated, &slog.HandlerOptions{Level: opts.Level}))
	}
	if opts.Console {
		handlers = append(handlers, slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: opts.Level}))
	}
	if opts.Notify != nil {
		handlers = append(handlers, &notifyHandler{fn: opts.Notify, level: opts.Level})
	}
	if len(handlers) == 0 {
		handlers = append(handlers, slog.NewTextHandler(io.Discard, nil))
	}

	log := slog.New(fanout(handlers))
	slog.SetDefault(log)
	return log, nil
}

func fanout(handlers []slog.Handler) slog.Handler {
	if len(handlers) == 1 {
		return handlers[0]
	}
	return multiHandler(handlers)
}

// multiHandler fans each record out to every child handler.
type multiHandler []slog.Handler

func (m multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range m {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(multiHandler, len(m))
	for i, h := range m {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (m multiHandler) WithGroup(name string) slog.Handler {
	out := make(multiHandler, len(m))
	for i, h := range m {
		out[i] = h.WithGroup(name)
	}
	return out
}

// notifyHandler turns records into activity callbacks. Attrs beyond the
// message are dropped: the activity view is a human-readable ticker, not a
// structured sink.
type notifyHandler struct {
	fn    NotifyFunc
	level slog.Level
}

func (n *notifyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= n.level
}

func (n *notifyHandler) Handle(_ context.Context, r slog.Record) error {
	n.fn(r.Level, r.Message)
	return nil
}

func (n *notifyHandler) WithAttrs([]slog.Attr) slog.Handler { return n }

func (n *notifyHandler) WithGroup(string) slog.Handler { return n }
