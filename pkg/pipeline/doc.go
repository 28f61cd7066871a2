// Package pipeline is the concurrent engine every linker stage runs on.
//
// A pipeline is a set of stages connected by channels. Root steps produce
// elements, steps transform them (optionally fanned out over several
// goroutines), splitters duplicate or route a stream, mergers join
// several streams, and sinks consume them. Each stage reports failures on
// its own error channel; Run merges those channels and returns the first
// error, cancelling the shared context so every other stage unwinds.
//
// Pipeline options observe the run: measure collects per-step timings and
// drawer renders the executed graph. Both attach through the hooks in the
// model package.
package pipeline
