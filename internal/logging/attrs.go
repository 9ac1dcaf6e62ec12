package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// Attr aliases slog.Attr for call sites that only import logging.
type Attr = slog.Attr

// String constructs a string attribute.
func String(key, value string) Attr { return slog.String(key, value) }

// Int constructs an integer attribute.
func Int(key string, value int) Attr { return slog.Int(key, value) }

// Float64 constructs a float attribute.
func Float64(key string, value float64) Attr { return slog.Float64(key, value) }

// Error constructs an error attribute under the conventional key.
func Error(err error) Attr {
	if err == nil {
		return slog.String(FieldError, "")
	}
	return slog.String(FieldError, err.Error())
}

// Args converts attrs into the variadic form slog methods expect.
func Args(attrs ...Attr) []any {
	out := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		out = append(out, attr)
	}
	return out
}

// NewNop returns a logger that discards all output.
func NewNop() *slog.Logger {
	return slog.New(NoopHandler{})
}

// NoopHandler drops every record.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h NoopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h NoopHandler) WithGroup(string) slog.Handler           { return h }

// NewComponentLogger tags a logger with a component name. A nil base yields a
// no-op logger.
func NewComponentLogger(base *slog.Logger, component string) *slog.Logger {
	if base == nil {
		return NewNop()
	}
	component = strings.TrimSpace(component)
	if component == "" {
		return base
	}
	return base.With(String(FieldComponent, component))
}

// NewWriterLogger builds a console logger over w at the given level. Tests use
// it to capture output.
func NewWriterLogger(w io.Writer, level string) *slog.Logger {
	lvl := new(slog.LevelVar)
	lvl.Set(parseLevel(level))
	return slog.New(newConsoleHandler(w, lvl, false))
}

// WarnWithContext logs a degraded-but-successful outcome with the event type,
// an operator hint, and the impact.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...any) {
	if logger == nil {
		return
	}
	fields := append([]any{String(FieldEventType, eventType)}, attrs...)
	logger.Warn(msg, fields...)
}

// ErrorWithContext logs a failure with event type and hint fields.
func ErrorWithContext(logger *slog.Logger, msg, eventType, hint string, attrs ...any) {
	if logger == nil {
		return
	}
	fields := []any{String(FieldEventType, eventType)}
	if strings.TrimSpace(hint) != "" {
		fields = append(fields, String(FieldErrorHint, hint))
	}
	fields = append(fields, attrs...)
	logger.Error(msg, fields...)
}
