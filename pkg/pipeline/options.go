package pipeline

import "github.com/askiada/go-linker/pkg/pipeline/model"

// StepOption tunes a single step.
type StepOption[O any] func(s *model.Step[O])

// StepConcurrency fans the step function out over the given number of
// goroutines. Element ordering across goroutines is not preserved.
func StepConcurrency[O any](concurrent int) StepOption[O] {
	return func(s *model.Step[O]) {
		s.Details.Concurrent = concurrent
	}
}

// StepKeepOpen leaves the step output channel open when the step function
// returns, for producers feeding the same channel from several root steps.
func StepKeepOpen[O any]() StepOption[O] {
	return func(s *model.Step[O]) {
		s.KeepOpen = true
	}
}

// SplitterOption tunes a splitter.
type SplitterOption[I any] func(s *Splitter[I])

// SplitterBufferSize sets the per-branch buffer of a splitter.
func SplitterBufferSize[I any](bufferSize int) SplitterOption[I] {
	return func(s *Splitter[I]) {
		s.bufferSize = bufferSize
	}
}
