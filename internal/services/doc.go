// Package services defines shared utilities consumed by the voice pipeline and
// its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp request IDs, pipeline stages, and prompt modes
//     for logging and tracing.
//   - Structured error markers plus the Wrap helper that let callers classify a
//     failure (bad input, misconfiguration, retry later, rejected) with
//     errors.Is while keeping the failing stage in the message.
//
// Use these helpers when wiring new pipeline code so operational behaviour
// (error handling, observability, retries) stays uniform.
package services
