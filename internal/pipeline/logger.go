package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Logger is the printf-style logger every stage reports progress through.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// slogLogger adapts a *slog.Logger to Logger. Messages are formatted before
// they reach slog; structured attributes come from With.
type slogLogger struct {
	l *slog.Logger
}

// NewLogger creates a text logger writing to w at the given level
// ("debug", "info", "warn" or "error"; anything else means info).
func NewLogger(w io.Writer, level string) Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return &slogLogger{l: slog.New(handler)}
}

// With returns a logger that adds the given attributes to every record.
// Loggers that are not slog-backed are returned unchanged.
func With(log Logger, args ...any) Logger {
	if s, ok := log.(*slogLogger); ok {
		return &slogLogger{l: s.l.With(args...)}
	}
	return log
}

// ParseLevel maps a config level name to a slog level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

func (s *slogLogger) Debug(msg string, args ...interface{}) {
	s.l.Debug(sprintf(msg, args))
}

func (s *slogLogger) Info(msg string, args ...interface{}) {
	s.l.Info(sprintf(msg, args))
}

func (s *slogLogger) Warn(msg string, args ...interface{}) {
	s.l.Warn(sprintf(msg, args))
}

func (s *slogLogger) Error(msg string, args ...interface{}) {
	s.l.Error(sprintf(msg, args))
}

func sprintf(msg string, args []interface{}) string {
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
