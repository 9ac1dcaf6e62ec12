package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInput marks bad caller input. Never retried.
	ErrInvalidInput = errors.New("invalid input")
	// ErrCorpusEmpty marks a corpus with no usable writing samples.
	ErrCorpusEmpty = errors.New("corpus empty")
	// ErrGenerationUnavailable marks a backend that kept failing transiently
	// until the retry budget ran out. Callers may retry later.
	ErrGenerationUnavailable = errors.New("generation unavailable")
	// ErrGenerationRejected marks a permanent backend rejection.
	ErrGenerationRejected = errors.New("generation rejected")
	// ErrConfiguration marks unusable runtime configuration.
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrGenerationUnavailable
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Retryable reports whether the failure is worth retrying later.
func Retryable(err error) bool {
	return errors.Is(err, ErrGenerationUnavailable)
}

// Kind returns a short label for the marker carried by err.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrCorpusEmpty):
		return "corpus_empty"
	case errors.Is(err, ErrGenerationUnavailable):
		return "generation_unavailable"
	case errors.Is(err, ErrGenerationRejected):
		return "generation_rejected"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "unknown"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
