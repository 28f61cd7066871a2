package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/askiada/go-linker/pkg/pipeline/model"
)

func runOneToOne[I, O any](p *Pipeline, goIdx int, input *model.Step[I], output *model.Step[O], fn func(context.Context, I) (O, error)) error {
outer:
	for {
		startIter := time.Now()
		select {
		case <-p.ctx.Done():
			return errors.Wrapf(p.ctx.Err(), "go routine %d:", goIdx)
		case in, ok := <-input.Output:
			if !ok {
				break outer
			}
			startFn := time.Now()
			out, err := fn(p.ctx, in)
			if err != nil {
				return errors.Wrapf(err, "go routine %d:", goIdx)
			}
			endFn := time.Since(startFn)

			// Check the context again so running goroutines stop
			// pushing new elements once the pipeline is cancelled.
			select {
			case <-p.ctx.Done():
				return errors.Wrapf(p.ctx.Err(), "go routine %d:", goIdx)
			case output.Output <- out:
				err = p.onStepOutput(input.Details, output.Details, time.Since(startIter)-endFn, endFn)
				if err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func runOneToMany[I, O any](p *Pipeline, goIdx int, input *model.Step[I], output *model.Step[O], fn func(context.Context, I) ([]O, error)) error {
outer:
	for {
		startIter := time.Now()
		select {
		case <-p.ctx.Done():
			return errors.Wrapf(p.ctx.Err(), "go routine %d:", goIdx)
		case in, ok := <-input.Output:
			if !ok {
				break outer
			}
			startFn := time.Now()
			outs, err := fn(p.ctx, in)
			if err != nil {
				return errors.Wrapf(err, "go routine %d:", goIdx)
			}
			endFn := time.Since(startFn)
			for _, out := range outs {
				select {
				case <-p.ctx.Done():
					return errors.Wrapf(p.ctx.Err(), "go routine %d:", goIdx)
				case output.Output <- out:
					err = p.onStepOutput(input.Details, output.Details, time.Since(startIter)-endFn, endFn)
					if err != nil {
						return err
					}
				}
			}
		}
	}

	return nil
}

func (p *Pipeline) onStepOutput(parent, step *model.StepInfo, iterationDuration, computationDuration time.Duration) error {
	for _, opt := range p.opts {
		err := opt.OnStepOutput(parent, step, iterationDuration, computationDuration)
		if err != nil {
			return errors.Wrap(err, "unable to run on step output function")
		}
	}

	return nil
}

// concurrently runs fn over output.Details.Concurrent goroutines and
// waits for all of them. One goroutine failing cancels the rest.
func concurrently(concurrent int, fn func(goIdx int) error) error {
	if concurrent <= 1 {
		return fn(1)
	}

	errGrp := errgroup.Group{}
	errGrp.SetLimit(concurrent)
	for goIdx := 0; goIdx < concurrent; goIdx++ {
		localGoIdx := goIdx
		errGrp.Go(func() error {
			return fn(localGoIdx)
		})
	}

	return errGrp.Wait()
}

func prepareStep[I, O any](p *Pipeline, name string, input *model.Step[I], opts ...StepOption[O]) (*model.Step[O], error) {
	step := &model.Step[O]{
		Details: &model.StepInfo{
			Type:       model.NormalStepType,
			Name:       name,
			Concurrent: 1,
		},
		Output: make(chan O),
	}
	for _, opt := range opts {
		opt(step)
	}

	for _, opt := range p.opts {
		err := opt.PrepareStep(input.Details, step.Details)
		if err != nil {
			return nil, errors.Wrap(err, "unable to prepare step")
		}
	}

	return step, nil
}

func startStep[I, O any](p *Pipeline, input *model.Step[I], step *model.Step[O], run func(goIdx int) error) {
	errC := make(chan error, 1)
	go func() {
		defer func() {
			if !step.KeepOpen {
				close(step.Output)
			}
			close(errC)
		}()
		if err := concurrently(step.Details.Concurrent, run); err != nil {
			errC <- err
		}
	}()
	p.errcList.add(newErrorChan(step.Details.Name, errC))
}

// AddStepOneToOne adds a stage producing exactly one output element per
// input element.
func AddStepOneToOne[I, O any](p *Pipeline, name string, input *model.Step[I], fn func(context.Context, I) (O, error), opts ...StepOption[O]) (*model.Step[O], error) {
	if p == nil {
		return nil, ErrPipelineMustBeSet
	}
	if input == nil {
		return nil, ErrInputMustBeSet
	}

	step, err := prepareStep(p, name, input, opts...)
	if err != nil {
		return nil, err
	}
	startStep(p, input, step, func(goIdx int) error {
		return runOneToOne(p, goIdx, input, step, fn)
	})

	return step, nil
}

// AddStepOneToMany adds a stage producing zero or more output elements
// per input element.
func AddStepOneToMany[I, O any](p *Pipeline, name string, input *model.Step[I], fn func(context.Context, I) ([]O, error), opts ...StepOption[O]) (*model.Step[O], error) {
	if p == nil {
		return nil, ErrPipelineMustBeSet
	}
	if input == nil {
		return nil, ErrInputMustBeSet
	}

	step, err := prepareStep(p, name, input, opts...)
	if err != nil {
		return nil, err
	}
	startStep(p, input, step, func(goIdx int) error {
		return runOneToMany(p, goIdx, input, step, fn)
	})

	return step, nil
}
