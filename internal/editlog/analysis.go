package editlog

import (
	"strings"

	"mediabuddy/internal/textutil"
)

// EditType labels one kind of change the user made.
type EditType string

const (
	EditLengthAdjustment EditType = "length_adjustment"
	EditAddedPauses      EditType = "added_pauses"
	EditAddedQualifiers  EditType = "added_qualifiers"
)

// lengthAdjustmentWords is the word-count change that counts as a deliberate
// length edit.
const lengthAdjustmentWords = 10

var qualifiers = []string{"actually", "really", "basically", "essentially"}

// Analysis describes the difference between generated and edited text.
type Analysis struct {
	OriginalWords int        `json:"original_words"`
	EditedWords   int        `json:"edited_words"`
	LengthChange  int        `json:"length_change"`
	LengthRatio   float64    `json:"length_ratio"`
	Similarity    float64    `json:"similarity"`
	Magnitude     float64    `json:"magnitude"`
	EditTypes     []EditType `json:"edit_types"`
}

// Analyze compares original with edited. Magnitude is one minus the cosine
// similarity of the two token fingerprints.
func Analyze(original, edited string) Analysis {
	a := Analysis{
		OriginalWords: textutil.WordCount(original),
		EditedWords:   textutil.WordCount(edited),
		LengthRatio:   1,
	}
	a.LengthChange = a.EditedWords - a.OriginalWords
	if a.OriginalWords > 0 {
		a.LengthRatio = float64(a.EditedWords) / float64(a.OriginalWords)
	}

	if textutil.CollapseWhitespace(original) == textutil.CollapseWhitespace(edited) {
		a.Similarity = 1
	} else {
		a.Similarity = textutil.CosineSimilarity(textutil.NewFingerprint(original), textutil.NewFingerprint(edited))
	}
	a.Magnitude = 1 - a.Similarity

	if abs(a.LengthChange) > lengthAdjustmentWords {
		a.EditTypes = append(a.EditTypes, EditLengthAdjustment)
	}
	if strings.Count(edited, ",") > strings.Count(original, ",") {
		a.EditTypes = append(a.EditTypes, EditAddedPauses)
	}
	if hasQualifier(edited) && !hasQualifier(original) {
		a.EditTypes = append(a.EditTypes, EditAddedQualifiers)
	}
	return a
}

func hasQualifier(text string) bool {
	for _, word := range textutil.Words(strings.ToLower(text)) {
		for _, q := range qualifiers {
			if word == q {
				return true
			}
		}
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
