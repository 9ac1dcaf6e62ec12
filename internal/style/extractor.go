package style

import (
	"math"
	"sort"
	"strings"

	"mediabuddy/internal/corpus"
	"mediabuddy/internal/services"
	"mediabuddy/internal/textutil"
)

// Options tunes descriptor derivation.
type Options struct {
	ExcerptCount    int
	MinSupport      int
	MaxExcerptWords int
	VocabularySize  int
}

// DefaultOptions returns the stock derivation settings.
func DefaultOptions() Options {
	return Options{ExcerptCount: 6, MinSupport: 3, MaxExcerptWords: 40, VocabularySize: 12}
}

// Extractor derives descriptors. It is stateless and safe for concurrent use.
type Extractor struct {
	opts Options
}

// NewExtractor returns an extractor; non-positive options take defaults.
func NewExtractor(opts Options) *Extractor {
	def := DefaultOptions()
	if opts.ExcerptCount <= 0 {
		opts.ExcerptCount = def.ExcerptCount
	}
	if opts.MinSupport <= 0 {
		opts.MinSupport = def.MinSupport
	}
	if opts.MaxExcerptWords <= 0 {
		opts.MaxExcerptWords = def.MaxExcerptWords
	}
	if opts.VocabularySize <= 0 {
		opts.VocabularySize = def.VocabularySize
	}
	return &Extractor{opts: opts}
}

// Options returns the effective options.
func (e *Extractor) Options() Options { return e.opts }

type analysed struct {
	sentences [][]string // words per sentence
	raw       []string   // sentence text
}

// lexiconView holds per-corpus word facts used for masking.
type lexiconView struct {
	support    map[string]int
	proper     map[string]struct{}
	minSupport int
}

// Derive computes the descriptor for samples. The result depends only on the
// samples and their order.
func (e *Extractor) Derive(samples []corpus.WritingSample) (Descriptor, error) {
	if len(samples) == 0 {
		return Descriptor{}, services.Wrap(services.ErrCorpusEmpty, "sampling", "derive style", "no writing samples to derive from", nil)
	}

	docs := make([]analysed, len(samples))
	view := lexiconView{
		support:    map[string]int{},
		proper:     map[string]struct{}{},
		minSupport: e.opts.MinSupport,
	}
	for i, sample := range samples {
		seen := map[string]struct{}{}
		for _, sentence := range textutil.Sentences(sample.Body()) {
			words := textutil.Words(sentence)
			if len(words) == 0 {
				continue
			}
			docs[i].sentences = append(docs[i].sentences, words)
			docs[i].raw = append(docs[i].raw, sentence)
			for idx, w := range words {
				lower := strings.ToLower(w)
				seen[lower] = struct{}{}
				if idx > 0 && textutil.IsCapitalized(w) && !isFirstPersonI(lower) && !isClosedClass(lower) {
					view.proper[lower] = struct{}{}
				}
			}
		}
		for w := range seen {
			view.support[w]++
		}
	}

	d := Descriptor{SampleCount: len(samples)}
	d.Sentences = sentenceStats(docs)
	d.Connectives = topConnectives(docs, 6)
	d.Register = register(docs)
	d.Devices = devices(docs, view)
	d.Vocabulary = vocabulary(docs, view, e.opts.VocabularySize)
	d.Excerpts = excerpts(docs, view, e.opts)
	return d, nil
}

func isFirstPersonI(lower string) bool {
	return lower == "i" || strings.HasPrefix(lower, "i'")
}

func isClosedClass(lower string) bool {
	return has(functionWords, lower) || has(connectives, lower) || has(profanity, lower)
}

func isContraction(lower string) bool {
	for _, suffix := range []string{"n't", "'re", "'ve", "'ll", "'d", "'m"} {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	if base, ok := strings.CutSuffix(lower, "'s"); ok {
		return base == "let" || has(functionWords, base)
	}
	return false
}

// keep reports whether a word may appear literally in descriptor output.
// position is the word's index within its sentence.
func (v lexiconView) keep(word string, position int) (bool, string) {
	lower := strings.ToLower(word)
	switch {
	case textutil.IsNumeric(word):
		return false, SlotNumber
	case isFirstPersonI(lower):
		return true, ""
	case position > 0 && textutil.IsCapitalized(word):
		return false, SlotName
	case has(v.proper, lower):
		return false, SlotName
	case isClosedClass(lower), isContraction(lower):
		return true, ""
	case v.support[lower] >= v.minSupport:
		return true, ""
	default:
		return false, SlotWord
	}
}

// skeleton masks one sentence against the view, preserving punctuation and
// spacing. kept is the number of literal words retained.
func (v lexiconView) skeleton(sentence string) (string, int) {
	var (
		b        strings.Builder
		position int
		kept     int
	)
	for _, span := range textutil.Spans(sentence) {
		if !span.Word {
			b.WriteString(span.Text)
			continue
		}
		if ok, slot := v.keep(span.Text, position); ok {
			b.WriteString(span.Text)
			kept++
		} else {
			b.WriteString(slot)
		}
		position++
	}
	return textutil.CollapseWhitespace(b.String()), kept
}

func excerpts(docs []analysed, view lexiconView, opts Options) []string {
	perDoc := make([][]string, len(docs))
	rounds := 0
	for i, doc := range docs {
		for j, words := range doc.sentences {
			if len(words) < 3 || len(words) > opts.MaxExcerptWords {
				continue
			}
			perDoc[i] = append(perDoc[i], doc.raw[j])
		}
		rounds = max(rounds, len(perDoc[i]))
	}

	seen := map[string]struct{}{}
	var out []string
	// Round-robin across samples so one long sample cannot dominate.
	for r := 0; r < rounds && len(out) < opts.ExcerptCount; r++ {
		for i := range perDoc {
			if r >= len(perDoc[i]) || len(out) >= opts.ExcerptCount {
				continue
			}
			skeleton, kept := view.skeleton(perDoc[i][r])
			if kept == 0 {
				continue
			}
			if _, dup := seen[skeleton]; dup {
				continue
			}
			seen[skeleton] = struct{}{}
			out = append(out, skeleton)
		}
	}
	return out
}

func sentenceStats(docs []analysed) SentenceStats {
	var lengths []int
	for _, doc := range docs {
		for _, words := range doc.sentences {
			lengths = append(lengths, len(words))
		}
	}
	stats := SentenceStats{Count: len(lengths)}
	if len(lengths) == 0 {
		return stats
	}
	sort.Ints(lengths)
	var total, short, long int
	for _, n := range lengths {
		total += n
		if n <= 8 {
			short++
		}
		if n >= 25 {
			long++
		}
	}
	count := float64(len(lengths))
	stats.MeanWords = round1(float64(total) / count)
	mid := len(lengths) / 2
	if len(lengths)%2 == 0 {
		stats.MedianWords = float64(lengths[mid-1]+lengths[mid]) / 2
	} else {
		stats.MedianWords = float64(lengths[mid])
	}
	rank := int(math.Ceil(0.9*count)) - 1
	stats.P90Words = lengths[max(rank, 0)]
	stats.ShortRatio = round3(float64(short) / count)
	stats.LongRatio = round3(float64(long) / count)
	return stats
}

func topConnectives(docs []analysed, limit int) []string {
	counts := map[string]int{}
	for _, doc := range docs {
		for _, words := range doc.sentences {
			for _, w := range words {
				if lower := strings.ToLower(w); has(connectives, lower) {
					counts[lower]++
				}
			}
		}
	}
	return ranked(counts, nil, limit)
}

func register(docs []analysed) Register {
	var words, contractions, first, profane int
	for _, doc := range docs {
		for _, sentence := range doc.sentences {
			for _, w := range sentence {
				lower := strings.ToLower(w)
				words++
				if strings.Contains(lower, "'") && isContraction(lower) {
					contractions++
				}
				if has(firstPerson, lower) {
					first++
				}
				if has(profanity, lower) {
					profane++
				}
			}
		}
	}
	reg := Register{Level: "neutral"}
	if words == 0 {
		return reg
	}
	per100 := func(n int) float64 { return round1(float64(n) * 100 / float64(words)) }
	reg.ContractionRate = per100(contractions)
	reg.FirstPersonRate = per100(first)
	reg.ProfanityRate = per100(profane)

	switch {
	case reg.ProfanityRate >= 1:
		reg.Level = "raw"
	case profane > 0, reg.ContractionRate >= 3:
		reg.Level = "casual"
	case reg.ContractionRate < 1:
		reg.Level = "formal"
	default:
		reg.Level = "conversational"
	}
	return reg
}

func devices(docs []analysed, view lexiconView) Devices {
	var total, questions, exclaims, ellipses, dashes, parens int
	openers := map[string]int{}
	for _, doc := range docs {
		for j, sentence := range doc.raw {
			total++
			if strings.Contains(sentence, "...") || strings.Contains(sentence, "…") {
				ellipses++
			}
			if strings.Contains(sentence, "?") {
				questions++
			}
			if strings.Contains(sentence, "!") {
				exclaims++
			}
			if strings.Contains(sentence, " - ") || strings.Contains(sentence, "--") ||
				strings.ContainsAny(sentence, "—–") {
				dashes++
			}
			if strings.Contains(sentence, "(") {
				parens++
			}
			first := doc.sentences[j][0]
			if ok, _ := view.keep(first, 0); ok && !textutil.IsNumeric(first) {
				openers[strings.ToLower(first)]++
			}
		}
	}
	if total == 0 {
		return Devices{}
	}
	share := func(n int) float64 { return round3(float64(n) / float64(total)) }
	repeated := ranked(openers, func(n int) bool { return n >= 2 }, 4)
	for i, opener := range repeated {
		if opener == "i" {
			repeated[i] = "I"
		}
	}
	return Devices{
		QuestionRate:      share(questions),
		ExclamationRate:   share(exclaims),
		EllipsisRate:      share(ellipses),
		DashRate:          share(dashes),
		ParentheticalRate: share(parens),
		RepeatedOpeners:   repeated,
	}
}

func vocabulary(docs []analysed, view lexiconView, limit int) []string {
	freq := map[string]int{}
	for _, doc := range docs {
		for _, sentence := range doc.sentences {
			for _, w := range sentence {
				lower := strings.ToLower(w)
				if !isStyleMarker(lower) || textutil.IsNumeric(lower) || has(view.proper, lower) {
					continue
				}
				if view.support[lower] < view.minSupport {
					continue
				}
				freq[lower]++
			}
		}
	}
	words := make([]string, 0, len(freq))
	for w := range freq {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		a, b := words[i], words[j]
		if view.support[a] != view.support[b] {
			return view.support[a] > view.support[b]
		}
		if freq[a] != freq[b] {
			return freq[a] > freq[b]
		}
		return a < b
	})
	if len(words) > limit {
		words = words[:limit]
	}
	return words
}

func isStyleMarker(lower string) bool {
	if has(functionWords, lower) || has(connectives, lower) {
		return false
	}
	if has(markers, lower) {
		return true
	}
	return len(lower) >= 5 && strings.HasSuffix(lower, "ly")
}

// ranked orders keys by count descending then lexically, keeping those that
// pass filter (nil keeps all) up to limit.
func ranked(counts map[string]int, filter func(int) bool, limit int) []string {
	keys := make([]string, 0, len(counts))
	for k, n := range counts {
		if filter != nil && !filter(n) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
