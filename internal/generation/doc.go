// Package generation turns a composed prompt.Request into a validated Result.
//
// Client owns the retry policy. Transient backend failures are retried with
// exponential backoff up to a fixed attempt cap, honouring Retry-After hints,
// and then surface as ErrGenerationUnavailable. Permanent failures surface as
// ErrGenerationRejected without retry. Empty output is treated as transient
// and is never returned as success. A result whose word count falls outside
// the request's tolerance band carries a LengthMismatchWarning instead of
// triggering regeneration.
package generation
