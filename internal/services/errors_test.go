package services_test

import (
	"errors"
	"strings"
	"testing"

	"mediabuddy/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrGenerationRejected, "generating", "complete", "backend refused", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrGenerationRejected) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"generating", "complete", "backend refused"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrInvalidInput, "", "", "", nil)
	if !errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("expected invalid input marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestKindAndRetryable(t *testing.T) {
	cases := []struct {
		err       error
		kind      string
		retryable bool
	}{
		{services.Wrap(services.ErrInvalidInput, "composing", "", "empty topic", nil), "invalid_input", false},
		{services.Wrap(services.ErrCorpusEmpty, "sampling", "", "", nil), "corpus_empty", false},
		{services.Wrap(services.ErrGenerationUnavailable, "generating", "", "", errors.New("503")), "generation_unavailable", true},
		{services.Wrap(services.ErrGenerationRejected, "generating", "", "", errors.New("401")), "generation_rejected", false},
		{errors.New("other"), "unknown", false},
		{nil, "", false},
	}
	for _, tc := range cases {
		if got := services.Kind(tc.err); got != tc.kind {
			t.Fatalf("Kind(%v) = %q, want %q", tc.err, got, tc.kind)
		}
		if got := services.Retryable(tc.err); got != tc.retryable {
			t.Fatalf("Retryable(%v) = %v, want %v", tc.err, got, tc.retryable)
		}
	}
}
