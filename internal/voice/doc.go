// Package voice is the public entry point of the voice pipeline.
//
// A Generator runs one request through Sampling, Composing and Generating and
// ends in Done or Failed. The style descriptor is topic-independent, so it is
// cached in a caller-owned Context keyed by corpus version and populated at
// most once per version even under concurrent first use.
package voice
