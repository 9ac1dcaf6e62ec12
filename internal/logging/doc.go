// Package logging assembles the structured slog loggers used across mediabuddy.
//
// It owns the console and JSON handlers, maps configured levels, and exposes
// context-aware helpers so pipeline code tags log lines with the request ID,
// stage, and prompt mode carried in the context. A no-op logger is provided for
// tests and wiring code that cannot fail.
package logging
