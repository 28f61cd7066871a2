package model

type StepType string

const (
	RootStepType     StepType = "root"
	NormalStepType   StepType = "step"
	SplitterStepType StepType = "splitter"
	MergerStepType   StepType = "merger"
	SinkStepType     StepType = "sink"
)

// StepInfo describes a step independently of its element type. Options
// only ever see StepInfo, never the generic Step.
type StepInfo struct {
	Type       StepType
	Name       string
	Concurrent int
	BufferSize int
}

// StartStep and EndStep are the virtual boundaries of every pipeline.
var (
	StartStep = &Step[any]{Details: &StepInfo{Name: "start"}}
	EndStep   = &Step[any]{Details: &StepInfo{Name: "end"}}
)

// Step is a stage output: a channel of O plus its descriptor.
type Step[O any] struct {
	Output   chan O
	KeepOpen bool
	Details  *StepInfo
}
