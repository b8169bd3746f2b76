package server

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime/debug"

	"batch-release/internal/config"
)

func setupLogger(cfg *config.Config) *slog.Logger {
	return slog.New(newLogHandler(cfg.Log, os.Stderr))
}

// newLogHandler builds the process log handler. At debug level, error records
// also carry the stack of the goroutine that logged them.
func newLogHandler(cfg config.LogConfig, w io.Writer) slog.Handler {
	level := parseLevel(cfg.Level)
	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	if level == slog.LevelDebug {
		handler = NewStackTraceHandler(handler)
	}
	return handler
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type StackTraceHandler struct {
	handler slog.Handler
}

func NewStackTraceHandler(h slog.Handler) *StackTraceHandler {
	return &StackTraceHandler{handler: h}
}

func (h *StackTraceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *StackTraceHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		r = r.Clone()
		r.Add("stack", string(debug.Stack()))
	}
	return h.handler.Handle(ctx, r)
}

func (h *StackTraceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &StackTraceHandler{handler: h.handler.WithAttrs(attrs)}
}

func (h *StackTraceHandler) WithGroup(name string) slog.Handler {
	return &StackTraceHandler{handler: h.handler.WithGroup(name)}
}
