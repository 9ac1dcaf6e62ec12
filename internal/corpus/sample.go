package corpus

import "mediabuddy/internal/textutil"

// WritingSample is one immutable unit of corpus text.
type WritingSample struct {
	body   string
	source string
}

// NewSample constructs a sample from an already-normalised body.
func NewSample(body, source string) WritingSample {
	return WritingSample{body: body, source: source}
}

// Body returns the sample text.
func (s WritingSample) Body() string { return s.body }

// Source returns the optional source label ("" when unknown).
func (s WritingSample) Source() string { return s.source }

// WordCount returns the number of words in the body.
func (s WritingSample) WordCount() int { return textutil.WordCount(s.body) }

// FromTexts builds samples from in-memory strings. Blank strings are skipped.
func FromTexts(texts ...string) []WritingSample {
	out := make([]WritingSample, 0, len(texts))
	for _, text := range texts {
		body := textutil.Normalize(text)
		if textutil.CollapseWhitespace(body) == "" {
			continue
		}
		out = append(out, NewSample(body, ""))
	}
	return out
}
