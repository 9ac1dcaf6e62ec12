package prompt

import (
	"fmt"
	"strings"

	"mediabuddy/internal/services"
)

// Mode selects what the generation is asked to do with the content.
type Mode string

const (
	// ModeRewrite rewrites a summary or passage in the author's voice.
	ModeRewrite Mode = "rewrite"
	// ModeRespond writes the author's commentary on one article.
	ModeRespond Mode = "respond"
	// ModeSynthesize writes a spoken script over several sources about a topic.
	ModeSynthesize Mode = "synthesize"
	// ModeEnhance expands the user's own draft with supporting context.
	ModeEnhance Mode = "enhance"
	// ModeQuery answers a question, optionally with prior conversation.
	ModeQuery Mode = "query"
)

// Modes lists every supported mode in display order.
func Modes() []Mode {
	return []Mode{ModeRewrite, ModeRespond, ModeSynthesize, ModeEnhance, ModeQuery}
}

// Valid reports whether m is a supported mode.
func (m Mode) Valid() bool {
	for _, known := range Modes() {
		if m == known {
			return true
		}
	}
	return false
}

func (m Mode) String() string { return string(m) }

// ParseMode resolves a case-insensitive mode name. Empty input is rewrite.
func ParseMode(value string) (Mode, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ModeRewrite, nil
	}
	mode := Mode(value)
	if !mode.Valid() {
		return "", services.Wrap(services.ErrInvalidInput, "composing", "parse mode", fmt.Sprintf("unknown mode %q", value), nil)
	}
	return mode, nil
}
