package drawer

import (
	"time"

	"github.com/askiada/go-linker/pkg/pipeline/measure"
)

// Drawer renders the pipeline graph.
type Drawer interface {
	// AddStep adds a step to the pipeline graph.
	AddStep(stepName string) error
	// AddLink adds a link between parent and child steps.
	AddLink(parentStepName, childStepName string) error
	// Draw writes the pipeline graph to its output file.
	Draw() error
	// SetTotalTime annotates a step with the elapsed time since startTime.
	SetTotalTime(stepName string, startTime time.Time) error
	// AddMeasure annotates the graph with collected metrics.
	AddMeasure(measure measure.Measure) error
}
