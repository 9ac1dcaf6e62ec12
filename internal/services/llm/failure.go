package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Failure is a classified backend error.
type Failure struct {
	Backend    string
	Op         string
	Transient  bool
	StatusCode int
	RetryAfter time.Duration
	Err        error
}

func (f *Failure) Error() string {
	kind := "permanent"
	if f.Transient {
		kind = "transient"
	}
	if f.StatusCode > 0 {
		return fmt.Sprintf("%s %s: %s failure (http %d): %v", f.Backend, f.Op, kind, f.StatusCode, f.Err)
	}
	return fmt.Sprintf("%s %s: %s failure: %v", f.Backend, f.Op, kind, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// IsTransient reports whether err is a Failure worth retrying.
func IsTransient(err error) bool {
	var failure *Failure
	return errors.As(err, &failure) && failure.Transient
}

// RetryAfterHint returns the server-provided retry delay carried by err.
func RetryAfterHint(err error) (time.Duration, bool) {
	var failure *Failure
	if errors.As(err, &failure) && failure.RetryAfter > 0 {
		return failure.RetryAfter, true
	}
	return 0, false
}

// transientStatus reports whether an HTTP status is worth retrying.
func transientStatus(code int) bool {
	return code == http.StatusRequestTimeout ||
		code == http.StatusTooManyRequests ||
		code >= http.StatusInternalServerError
}

type httpStatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, summarizePayloadSnippet(e.Body))
}

type emptyContentError struct {
	FinishReason string
	Refusal      string
	Snippet      string
}

func (e *emptyContentError) Error() string {
	return fmt.Sprintf("empty content (finish_reason=%q, refusal=%q, response_snippet=%s)", e.FinishReason, e.Refusal, e.Snippet)
}

// malformedResponseError wraps a 2xx response whose body could not be read or
// decoded. Gateways produce these under load.
type malformedResponseError struct{ err error }

func (e *malformedResponseError) Error() string { return e.err.Error() }
func (e *malformedResponseError) Unwrap() error { return e.err }

// classify converts a raw transport or SDK error into a Failure. Context
// cancellation from the caller is returned as-is.
func classify(ctx context.Context, backend, op string, err error) error {
	if err == nil {
		return nil
	}
	if ctx != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	var failure *Failure
	if errors.As(err, &failure) {
		return err
	}
	f := &Failure{Backend: backend, Op: op, Err: err}

	var statusErr *httpStatusError
	var emptyErr *emptyContentError
	var malformedErr *malformedResponseError
	var netErr net.Error
	var urlErr *url.Error
	switch {
	case errors.As(err, &emptyErr), errors.As(err, &malformedErr):
		f.Transient = true
	case errors.As(err, &statusErr):
		f.StatusCode = statusErr.StatusCode
		f.RetryAfter = statusErr.RetryAfter
		f.Transient = transientStatus(statusErr.StatusCode)
	case errors.Is(err, context.DeadlineExceeded):
		// Per-request client timeout rather than the caller's deadline.
		f.Transient = true
	case errors.As(err, &netErr) && netErr.Timeout():
		f.Transient = true
	case errors.As(err, &urlErr):
		// Connection refused, reset, DNS failure.
		f.Transient = true
	}
	return f
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := time.Until(when)
		if delay < 0 {
			return 0, false
		}
		return delay, true
	}
	return 0, false
}

func summarizePayloadSnippet(content string) string {
	clean := strings.Join(strings.Fields(content), " ")
	if clean == "" {
		return "<empty>"
	}
	const limit = 160
	runes := []rune(clean)
	if len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}

// TransientError wraps err as a retryable Failure. Backends outside this
// package use it to take part in the retry policy.
func TransientError(backend string, err error) *Failure {
	return &Failure{Backend: backend, Op: "complete", Transient: true, Err: err}
}

// PermanentError wraps err as a non-retryable Failure.
func PermanentError(backend string, err error) *Failure {
	return &Failure{Backend: backend, Op: "complete", Err: err}
}
