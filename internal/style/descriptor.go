package style

import (
	"fmt"
	"strings"
)

// Slot markers written into excerpt skeletons in place of masked words.
const (
	SlotWord   = "[word]"
	SlotName   = "[name]"
	SlotNumber = "[num]"
)

// SentenceStats summarises sentence length in words.
type SentenceStats struct {
	Count       int
	MeanWords   float64
	MedianWords float64
	P90Words    int
	// ShortRatio and LongRatio are the shares of sentences with at most 8 and
	// at least 25 words.
	ShortRatio float64
	LongRatio  float64
}

// Register captures how casual the writing is. Rates are per 100 words.
type Register struct {
	Level           string
	ContractionRate float64
	FirstPersonRate float64
	ProfanityRate   float64
}

// Devices captures rhetorical habits. Rates are shares of sentences.
type Devices struct {
	QuestionRate      float64
	ExclamationRate   float64
	EllipsisRate      float64
	DashRate          float64
	ParentheticalRate float64
	RepeatedOpeners   []string
}

// Descriptor is a cacheable summary of how the corpus author writes. It holds
// no topical content: excerpts are masked skeletons and every listed word is
// either a closed-class word or has support across several samples.
type Descriptor struct {
	SampleCount int
	Sentences   SentenceStats
	Connectives []string
	Register    Register
	Devices     Devices
	Vocabulary  []string
	Excerpts    []string
}

// Empty reports whether the descriptor was derived from no samples.
func (d Descriptor) Empty() bool { return d.SampleCount == 0 }

// Render returns the style guidance text embedded in prompts. Equal
// descriptors render identically.
func (d Descriptor) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Voice profile derived from %d writing samples.\n", d.SampleCount)

	s := d.Sentences
	fmt.Fprintf(&b, "Sentence rhythm: average %.1f words per sentence (median %.1f, 90th percentile %d); %s short, %s long.\n",
		s.MeanWords, s.MedianWords, s.P90Words, percent(s.ShortRatio), percent(s.LongRatio))

	r := d.Register
	fmt.Fprintf(&b, "Register: %s (contractions %.1f per 100 words, first person %.1f per 100 words, profanity %s).\n",
		r.Level, r.ContractionRate, r.FirstPersonRate, profanityLabel(r.ProfanityRate))

	if len(d.Connectives) > 0 {
		fmt.Fprintf(&b, "Favoured connectives: %s.\n", strings.Join(d.Connectives, ", "))
	}

	v := d.Devices
	fmt.Fprintf(&b, "Devices: questions in %s of sentences, exclamations %s, ellipses %s, dashes %s, parentheticals %s.\n",
		percent(v.QuestionRate), percent(v.ExclamationRate), percent(v.EllipsisRate), percent(v.DashRate), percent(v.ParentheticalRate))
	if len(v.RepeatedOpeners) > 0 {
		quoted := make([]string, len(v.RepeatedOpeners))
		for i, opener := range v.RepeatedOpeners {
			quoted[i] = fmt.Sprintf("%q", opener)
		}
		fmt.Fprintf(&b, "Often opens sentences with %s.\n", strings.Join(quoted, ", "))
	}

	if len(d.Vocabulary) > 0 {
		fmt.Fprintf(&b, "Characteristic style words: %s.\n", strings.Join(d.Vocabulary, ", "))
	}

	if len(d.Excerpts) > 0 {
		fmt.Fprintf(&b, "Sentence skeletons (%s, %s and %s mark slots; fill them only from the new topic):\n", SlotWord, SlotName, SlotNumber)
		for _, excerpt := range d.Excerpts {
			b.WriteString("- ")
			b.WriteString(excerpt)
			b.WriteByte('\n')
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func percent(ratio float64) string {
	return fmt.Sprintf("%.0f%%", ratio*100)
}

func profanityLabel(rate float64) string {
	switch {
	case rate == 0:
		return "none"
	case rate < 1:
		return "occasional"
	default:
		return "frequent"
	}
}
