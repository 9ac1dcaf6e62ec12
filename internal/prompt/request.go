package prompt

import (
	"fmt"
	"strings"

	"mediabuddy/internal/services"
)

// Section headers that partition every prompt.
const (
	SectionStyle   = "STYLE"
	SectionContent = "CONTENT"
	SectionLength  = "LENGTH"
)

// Request is a composed generation request. Build it with Composer; the
// generation client re-checks it with Validate before any network call.
type Request struct {
	Mode   Mode
	System string
	Style  string
	// Content holds the mode instruction and topical material.
	Content         string
	Length          string
	TargetWords     int
	MinWords        int
	MaxWords        int
	Tolerance       float64
	MaxOutputTokens int
}

// Prompt joins the three partitions into the user message.
func (r Request) Prompt() string {
	var b strings.Builder
	writeSection(&b, SectionStyle, r.Style)
	writeSection(&b, SectionContent, r.Content)
	writeSection(&b, SectionLength, r.Length)
	return strings.TrimRight(b.String(), "\n")
}

// Validate checks the invariants every request must satisfy.
func (r Request) Validate() error {
	switch {
	case r.TargetWords <= 0:
		return services.Wrap(services.ErrInvalidInput, "composing", "validate request", fmt.Sprintf("target length must be positive, got %d", r.TargetWords), nil)
	case strings.TrimSpace(r.Content) == "":
		return services.Wrap(services.ErrInvalidInput, "composing", "validate request", "content is empty", nil)
	case r.MaxOutputTokens <= 0:
		return services.Wrap(services.ErrInvalidInput, "composing", "validate request", "max output tokens must be positive", nil)
	case r.MinWords > r.TargetWords || r.MaxWords < r.TargetWords:
		return services.Wrap(services.ErrInvalidInput, "composing", "validate request", "tolerance band does not contain target", nil)
	}
	return nil
}

// WithinTolerance reports whether words falls inside the request's band.
func (r Request) WithinTolerance(words int) bool {
	return words >= r.MinWords && words <= r.MaxWords
}

func sectionHeader(name string) string {
	return "=== " + name + " ==="
}

func writeSection(b *strings.Builder, name, body string) {
	b.WriteString(sectionHeader(name))
	b.WriteByte('\n')
	b.WriteString(strings.TrimSpace(body))
	b.WriteString("\n\n")
}

// ExtractSection returns the body of the named partition from a prompt built
// by Request.Prompt, or "" when absent.
func ExtractSection(prompt, name string) string {
	header := sectionHeader(name)
	start := strings.Index(prompt, header)
	if start < 0 {
		return ""
	}
	rest := prompt[start+len(header):]
	if end := strings.Index(rest, "\n=== "); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}
