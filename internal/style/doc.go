// Package style derives a topic-independent style descriptor from writing
// samples.
//
// Derivation separates structure from content. Sentence rhythm, connectives,
// register, and rhetorical devices are measured directly. Excerpts are kept
// only as skeletons: every content word without support across enough samples
// is replaced by a slot marker, and proper nouns and numerals are always
// replaced. The resulting Descriptor renders to a stable block of text that
// the prompt composer embeds as style guidance.
package style
