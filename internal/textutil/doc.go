// Package textutil provides the text primitives shared by the corpus, style, and
// edit-learning packages.
//
// The primary use cases are:
//   - Unicode normalisation of raw sample text
//   - Splitting prose into sentences and words
//   - Token fingerprints and cosine similarity for diversity sampling and edit
//     magnitude
//   - Slugs for output file names
//
// Fingerprints are term-frequency vectors over lowercase letter/digit tokens of
// three or more characters.
package textutil
