package model

import "time"

// PipelineOption is the hook surface a pipeline-level option implements.
// Measurement and drawing are both built on it.
type PipelineOption interface {
	// New initialises the option before any step is added.
	New() error

	pipelineStepOption
	pipelineSplitterOption
	pipelineMergerOption
	pipelineSinkOption

	// Finish runs once the whole pipeline has drained.
	Finish() error
}

type pipelineStepOption interface {
	// PrepareStep runs when the step is added to the pipeline.
	PrepareStep(parentStep, step *StepInfo) error
	// OnStepOutput runs every time the step pushes an element downstream.
	OnStepOutput(parentStep, step *StepInfo, iterationDuration, computationDuration time.Duration) error
}

type pipelineSplitterOption interface {
	PrepareSplitter(parentStep, splitterStep *StepInfo) error
	OnSplitterOutput(parentStep, splitterStep *StepInfo, iterationDuration, computationDuration time.Duration) error
}

type pipelineMergerOption interface {
	PrepareMerger(parentSteps []*StepInfo, step *StepInfo) error
	OnMergerOutput(parentStep, outputStep *StepInfo, iterationDuration time.Duration) error
}

type pipelineSinkOption interface {
	PrepareSink(parentStep, step *StepInfo) error
	OnSinkOutput(parentStep, step *StepInfo, iterationDuration, computationDuration time.Duration) error
	// AfterSink runs when the sink has consumed its whole input.
	AfterSink(step *StepInfo, totalDuration time.Duration) error
}
