package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var punctuationReplacer = strings.NewReplacer(
	"‘", "'",
	"’", "'",
	"“", "\"",
	"”", "\"",
	"\r\n", "\n",
	"\r", "\n",
	"\u00a0", " ",
)

// Normalize applies NFC normalisation, folds typographic quotes to ASCII, and
// normalises line endings. Paragraph breaks are preserved.
func Normalize(text string) string {
	return punctuationReplacer.Replace(norm.NFC.String(text))
}

// CollapseWhitespace joins all whitespace runs into single spaces.
func CollapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// TitleCase renders a label such as a prompt mode for display.
func TitleCase(value string) string {
	return cases.Title(language.English).String(strings.TrimSpace(value))
}
