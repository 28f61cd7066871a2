package pipeline

import (
	"context"

	"github.com/pkg/errors"

	"github.com/askiada/go-linker/pkg/pipeline/model"
)

// AddRootStep adds a producer stage. stepFn owns the output channel for
// the duration of the call; the channel is closed when stepFn returns
// unless the step is kept open.
func AddRootStep[O any](p *Pipeline, name string, stepFn func(ctx context.Context, output chan<- O) error, opts ...StepOption[O]) (*model.Step[O], error) {
	if p == nil {
		return nil, ErrPipelineMustBeSet
	}

	step := &model.Step[O]{
		Details: &model.StepInfo{
			Type:       model.RootStepType,
			Name:       name,
			Concurrent: 1,
		},
		Output: make(chan O),
	}
	for _, opt := range opts {
		opt(step)
	}

	for _, opt := range p.opts {
		err := opt.PrepareStep(model.StartStep.Details, step.Details)
		if err != nil {
			return nil, errors.Wrap(err, "unable to prepare root step")
		}
	}

	errC := make(chan error, 1)
	go func() {
		defer func() {
			if !step.KeepOpen {
				close(step.Output)
			}
			close(errC)
		}()
		if err := stepFn(p.ctx, step.Output); err != nil {
			errC <- err
		}
	}()
	p.errcList.add(newErrorChan(name, errC))

	return step, nil
}
