package logging

import (
	"context"
	"log/slog"

	"mediabuddy/internal/services"
)

const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldStage     = "stage"
	FieldMode      = "mode"
	FieldEventType = "event_type"
	FieldErrorHint = "error_hint"
	FieldImpact    = "impact"
	FieldError     = "error"
)

// ContextFields extracts request id, stage, and mode from ctx as attrs.
func ContextFields(ctx context.Context) []Attr {
	if ctx == nil {
		return nil
	}
	var attrs []Attr
	if id, ok := services.RequestIDFromContext(ctx); ok && id != "" {
		attrs = append(attrs, String(FieldRequestID, id))
	}
	if stage, ok := services.StageFromContext(ctx); ok && stage != "" {
		attrs = append(attrs, String(FieldStage, stage))
	}
	if mode, ok := services.ModeFromContext(ctx); ok && mode != "" {
		attrs = append(attrs, String(FieldMode, mode))
	}
	return attrs
}

// WithContext returns logger enriched with the fields carried by ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	attrs := ContextFields(ctx)
	if len(attrs) == 0 {
		return logger
	}
	return logger.With(Args(attrs...)...)
}
