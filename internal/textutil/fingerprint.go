package textutil

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Fingerprint represents a term-frequency vector for text similarity comparison.
type Fingerprint struct {
	tokens map[string]float64
	norm   float64
}

// NewFingerprint creates a fingerprint from the provided text.
// Returns nil if the text produces no valid tokens.
func NewFingerprint(text string) *Fingerprint {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	counts := make(map[string]float64, len(tokens))
	for _, token := range tokens {
		counts[token]++
	}
	var norm float64
	for _, count := range counts {
		norm += count * count
	}
	return &Fingerprint{
		tokens: counts,
		norm:   math.Sqrt(norm),
	}
}

// Tokenize splits text into lowercase letter/digit runs, dropping tokens
// shorter than three runes.
func Tokenize(text string) []string {
	raw := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	terms := make([]string, 0, len(raw))
	for _, token := range raw {
		if len([]rune(token)) < 3 {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}

// TokenCount returns the number of unique tokens in the fingerprint.
func (f *Fingerprint) TokenCount() int {
	if f == nil {
		return 0
	}
	return len(f.tokens)
}

// Terms returns the unique tokens in lexical order.
func (f *Fingerprint) Terms() []string {
	if f == nil {
		return nil
	}
	out := make([]string, 0, len(f.tokens))
	for token := range f.tokens {
		out = append(out, token)
	}
	sort.Strings(out)
	return out
}

// CosineSimilarity computes the cosine similarity between two fingerprints.
// Returns 0 if either fingerprint is nil or has zero norm.
func CosineSimilarity(a, b *Fingerprint) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	// Iterate the smaller map.
	if len(a.tokens) > len(b.tokens) {
		a, b = b, a
	}
	var dot float64
	for token, count := range a.tokens {
		if other, ok := b.tokens[token]; ok {
			dot += count * other
		}
	}
	if dot == 0 {
		return 0
	}
	sim := dot / (a.norm * b.norm)
	if sim > 1 {
		return 1
	}
	return sim
}

// Distance returns 1 - cosine similarity. Two empty fingerprints are at
// distance 0; an empty one against a non-empty one is at distance 1.
func Distance(a, b *Fingerprint) float64 {
	if a == nil && b == nil {
		return 0
	}
	return 1 - CosineSimilarity(a, b)
}
