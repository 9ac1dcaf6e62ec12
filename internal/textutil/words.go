package textutil

import (
	"strings"
	"unicode"
)

// Span is a run of text that is either one word or the separator between two
// words.
type Span struct {
	Text string
	Word bool
}

// Spans splits text into alternating word and separator runs. Concatenating
// the Text of every span reproduces the input. Letters, digits, and inner
// apostrophes or hyphens stay inside a word ("don't", "well-known").
func Spans(text string) []Span {
	var (
		spans   []Span
		current []rune
		inWord  bool
	)
	runes := []rune(text)
	flush := func(nextWord bool) {
		if len(current) > 0 {
			spans = append(spans, Span{Text: string(current), Word: inWord})
			current = current[:0]
		}
		inWord = nextWord
	}
	for i, r := range runes {
		word := isWordRune(r) ||
			((r == '\'' || r == '-') && inWord && len(current) > 0 && i+1 < len(runes) && isWordRune(runes[i+1]))
		if word != inWord {
			flush(word)
		}
		current = append(current, r)
	}
	flush(false)
	return spans
}

// Words returns the word spans of text. Case is preserved.
func Words(text string) []string {
	var words []string
	for _, span := range Spans(text) {
		if span.Word {
			words = append(words, span.Text)
		}
	}
	return words
}

// WordCount returns the number of words in text.
func WordCount(text string) int {
	return len(Words(text))
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// IsNumeric reports whether the word contains a digit.
func IsNumeric(word string) bool {
	for _, r := range word {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// IsCapitalized reports whether the first rune of word is an upper-case letter.
func IsCapitalized(word string) bool {
	for _, r := range word {
		return unicode.IsUpper(r)
	}
	return false
}

// Sentences splits prose into sentences. A sentence ends at '.', '!', '?' or
// an ellipsis followed by whitespace or end of text; closing quotes and
// brackets stay with the sentence they close.
func Sentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	runes := []rune(text)
	var (
		out   []string
		start int
	)
	for i := 0; i < len(runes); i++ {
		if !isTerminal(runes[i]) {
			continue
		}
		end := i + 1
		for end < len(runes) && (isTerminal(runes[end]) || isCloser(runes[end])) {
			end++
		}
		if end < len(runes) && !unicode.IsSpace(runes[end]) {
			i = end - 1
			continue
		}
		if s := strings.TrimSpace(string(runes[start:end])); s != "" {
			out = append(out, s)
		}
		start = end
		i = end - 1
	}
	if start < len(runes) {
		if s := strings.TrimSpace(string(runes[start:])); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '…'
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '”', '’', '»':
		return true
	}
	return false
}
