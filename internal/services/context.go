package services

import "context"

// contextKey values index the run metadata carried through a generation.
type contextKey int

const (
	stageKey contextKey = iota
	modeKey
	requestIDKey
)

func withString(ctx context.Context, key contextKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringValue(ctx context.Context, key contextKey) (string, bool) {
	v, ok := ctx.Value(key).(string)
	return v, ok && v != ""
}

// WithStage records the pipeline stage (sampling, composing, generating).
// A blank stage leaves ctx unchanged.
func WithStage(ctx context.Context, stage string) context.Context {
	return withString(ctx, stageKey, stage)
}

// StageFromContext returns the stage set by WithStage.
func StageFromContext(ctx context.Context) (string, bool) { return stringValue(ctx, stageKey) }

// WithMode records the prompt mode (rewrite, respond, ...).
func WithMode(ctx context.Context, mode string) context.Context {
	return withString(ctx, modeKey, mode)
}

// ModeFromContext returns the mode set by WithMode.
func ModeFromContext(ctx context.Context) (string, bool) { return stringValue(ctx, modeKey) }

// WithRequestID records the id of one generation run.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withString(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the id set by WithRequestID.
func RequestIDFromContext(ctx context.Context) (string, bool) { return stringValue(ctx, requestIDKey) }
