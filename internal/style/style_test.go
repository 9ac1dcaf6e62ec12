package style

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"mediabuddy/internal/corpus"
	"mediabuddy/internal/services"
	"mediabuddy/internal/textutil"
)

var scenarioCorpus = []string{
	"I love swimming and hate mornings.",
	"Mornings are the worst, though coffee helps.",
	"I can't stand getting up early.",
}

func TestDeriveScenarioMasksTopicalWords(t *testing.T) {
	d, err := NewExtractor(DefaultOptions()).Derive(corpus.FromTexts(scenarioCorpus...))
	if err != nil {
		t.Fatalf("Derive returned error: %v", err)
	}
	rendered := strings.ToLower(d.Render())
	for _, topical := range []string{"swimming", "coffee", "mornings", "early"} {
		if strings.Contains(rendered, topical) {
			t.Fatalf("descriptor leaked %q:\n%s", topical, d.Render())
		}
	}

	want := []string{
		"I [word] [word] and [word] [word].",
		"[word] are the [word], though [word] [word].",
		"I can't [word] getting up [word].",
	}
	if diff := cmp.Diff(want, d.Excerpts); diff != "" {
		t.Fatalf("excerpt mismatch (-want +got):\n%s", diff)
	}
}

func TestDeriveIsDeterministic(t *testing.T) {
	samples := corpus.FromTexts(
		"Honestly, the bus was late again. I waited anyway... and then it rained!",
		"The meeting ran long, but honestly it was fine. Was it useful? Not really.",
		"I keep saying I'll fix the fence. Honestly, I never do.",
		"The report is done (finally) and I'm relieved.",
	)
	extractor := NewExtractor(DefaultOptions())
	first, err := extractor.Derive(samples)
	if err != nil {
		t.Fatalf("Derive returned error: %v", err)
	}
	second, err := extractor.Derive(samples)
	if err != nil {
		t.Fatalf("Derive returned error: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("descriptors differ (-first +second):\n%s", diff)
	}
	if first.Render() != second.Render() {
		t.Fatal("equal descriptors rendered differently")
	}
}

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}']+`)

// Proper nouns and numerals that appear in fewer than three samples must not
// appear anywhere in the rendered descriptor.
func TestDeriveDoesNotLeakSingleSampleFacts(t *testing.T) {
	texts := []string{
		"I drove to Zanzibar in 1987 and honestly it was fine. The road was long, but I kept going.",
		"My neighbour Okonkwo fixed the roof for 31337 dollars. Honestly, the roof still leaks, but I kept quiet.",
		"We met at the Tesla showroom and it was loud. Honestly, I kept my hands in my pockets.",
		"The Berlin trip was cold. I kept a scarf on. Honestly, Berlin was worth it.",
		"The Berlin office closed early, but honestly nobody minded. I kept working anyway.",
	}
	d, err := NewExtractor(DefaultOptions()).Derive(corpus.FromTexts(texts...))
	if err != nil {
		t.Fatalf("Derive returned error: %v", err)
	}
	rendered := d.Render()
	present := map[string]bool{}
	for _, w := range wordPattern.FindAllString(rendered, -1) {
		present[w] = true
	}

	for _, text := range texts {
		for _, sentence := range textutil.Sentences(text) {
			for i, w := range textutil.Words(sentence) {
				fact := textutil.IsNumeric(w) || (i > 0 && textutil.IsCapitalized(w) && w != "I")
				if fact && present[w] {
					t.Fatalf("descriptor leaked %q:\n%s", w, rendered)
				}
			}
		}
	}
	if strings.Contains(rendered, "Berlin") {
		t.Fatalf("proper nouns are masked even with broad support:\n%s", rendered)
	}
	if !strings.Contains(rendered, "kept") {
		t.Fatalf("expected well-supported word to survive:\n%s", rendered)
	}
}

func TestDeriveSignals(t *testing.T) {
	samples := corpus.FromTexts(
		"Honestly, this is pretty damn slow. Why does it take so long? I don't know!",
		"Honestly, I can't tell. It's pretty fine -- mostly. We'll see (maybe).",
		"I think the whole thing's pretty weird... but it works.",
	)
	d, err := NewExtractor(DefaultOptions()).Derive(samples)
	if err != nil {
		t.Fatalf("Derive returned error: %v", err)
	}

	if d.SampleCount != 3 {
		t.Fatalf("SampleCount = %d, want 3", d.SampleCount)
	}
	if d.Register.Level != "raw" {
		t.Fatalf("register level = %q, want raw", d.Register.Level)
	}
	if d.Register.ContractionRate <= 0 {
		t.Fatalf("expected contractions to be counted, got %+v", d.Register)
	}
	if d.Devices.QuestionRate == 0 || d.Devices.ExclamationRate == 0 || d.Devices.EllipsisRate == 0 {
		t.Fatalf("expected device rates, got %+v", d.Devices)
	}
	if d.Devices.DashRate == 0 || d.Devices.ParentheticalRate == 0 {
		t.Fatalf("expected dash and parenthetical rates, got %+v", d.Devices)
	}
	if diff := cmp.Diff([]string{"honestly", "I"}, d.Devices.RepeatedOpeners); diff != "" {
		t.Fatalf("openers mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"pretty"}, d.Vocabulary); diff != "" {
		t.Fatalf("vocabulary mismatch (-want +got):\n%s", diff)
	}
	if len(d.Connectives) == 0 {
		t.Fatal("expected connectives")
	}
}

func TestSentenceStats(t *testing.T) {
	samples := []corpus.WritingSample{corpus.NewSample("One two three. One two three four five. One.", "")}
	d, err := NewExtractor(DefaultOptions()).Derive(samples)
	if err != nil {
		t.Fatalf("Derive returned error: %v", err)
	}
	want := SentenceStats{Count: 3, MeanWords: 3, MedianWords: 3, P90Words: 5, ShortRatio: 1, LongRatio: 0}
	if diff := cmp.Diff(want, d.Sentences); diff != "" {
		t.Fatalf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestDeriveEmpty(t *testing.T) {
	_, err := NewExtractor(Options{}).Derive(nil)
	if !errors.Is(err, services.ErrCorpusEmpty) {
		t.Fatalf("expected ErrCorpusEmpty, got %v", err)
	}
}

func TestExcerptCountAndLengthLimits(t *testing.T) {
	samples := corpus.FromTexts(
		"It is what it is. It was what it was. It will be what it will be.",
		"It is what it is. This is a very long sentence that goes on and on and on well past any sensible limit for a skeleton.",
	)
	d, err := NewExtractor(Options{ExcerptCount: 2, MaxExcerptWords: 10}).Derive(samples)
	if err != nil {
		t.Fatalf("Derive returned error: %v", err)
	}
	if len(d.Excerpts) != 2 {
		t.Fatalf("expected 2 excerpts, got %v", d.Excerpts)
	}
	for _, e := range d.Excerpts {
		if textutil.WordCount(e) > 10 {
			t.Fatalf("excerpt exceeds word limit: %q", e)
		}
	}
}
