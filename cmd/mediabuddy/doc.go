// Package main hosts the mediabuddy CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, wires the corpus, style
// extractor, prompt composer and generation backend, and hands the work to the
// internal packages. Generated text goes to stdout; logs and warnings go to
// stderr so output can be piped.
//
// Keep this package lean: add behaviour to the internal packages first, then
// surface it here through a command or flag.
package main
