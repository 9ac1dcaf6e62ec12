package textutil

import (
	"strings"
	"unicode"
)

// Slug converts a string to a lowercase filesystem-safe token. Letters and
// digits are kept, runs of anything else become a single dash, and the result
// is capped at maxLen runes. Returns "untitled" for empty input.
func Slug(value string, maxLen int) string {
	value = strings.ToLower(strings.TrimSpace(value))
	var b strings.Builder
	dash := false
	count := 0
	for _, r := range value {
		if maxLen > 0 && count >= maxLen {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			count++
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
			count++
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "untitled"
	}
	return out
}
