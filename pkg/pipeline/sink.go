package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-linker/pkg/pipeline/model"
)

func prepareSink[I any](p *Pipeline, name string, input *model.Step[I]) (*model.Step[I], error) {
	step := &model.Step[I]{
		Details: &model.StepInfo{
			Type:       model.SinkStepType,
			Name:       name,
			Concurrent: 1,
		},
	}
	for _, opt := range p.opts {
		err := opt.PrepareSink(input.Details, step.Details)
		if err != nil {
			return nil, errors.Wrap(err, "unable to prepare sink")
		}
	}

	return step, nil
}

func (p *Pipeline) afterSink(step *model.StepInfo) error {
	for _, opt := range p.opts {
		err := opt.AfterSink(step, time.Since(p.startTime))
		if err != nil {
			return errors.Wrap(err, "unable to run after sink function")
		}
	}

	return nil
}

// AddSink adds a terminal stage consuming one element per call.
func AddSink[I any](p *Pipeline, name string, input *model.Step[I], sinkFn func(ctx context.Context, input I) error) error {
	if p == nil {
		return ErrPipelineMustBeSet
	}
	if input == nil {
		return ErrInputMustBeSet
	}

	step, err := prepareSink(p, name, input)
	if err != nil {
		return err
	}

	errC := make(chan error, 1)
	go func() {
		defer close(errC)
	outer:
		for {
			startIter := time.Now()
			select {
			case <-p.ctx.Done():
				errC <- p.ctx.Err()

				break outer
			case in, ok := <-input.Output:
				if !ok {
					break outer
				}
				startFn := time.Now()
				if err := sinkFn(p.ctx, in); err != nil {
					errC <- err

					break outer
				}
				endFn := time.Since(startFn)
				err := p.onSinkOutput(input.Details, step.Details, time.Since(startIter)-endFn, endFn)
				if err != nil {
					errC <- err

					break outer
				}
			}
		}
		if err := p.afterSink(step.Details); err != nil {
			errC <- err
		}
	}()
	p.errcList.add(newErrorChan(name, errC))

	return nil
}

// AddSinkFromChan adds a terminal stage that owns the whole input channel.
func AddSinkFromChan[I any](p *Pipeline, name string, input *model.Step[I], sinkFn func(ctx context.Context, input <-chan I) error) error {
	if p == nil {
		return ErrPipelineMustBeSet
	}
	if input == nil {
		return ErrInputMustBeSet
	}

	step, err := prepareSink(p, name, input)
	if err != nil {
		return err
	}

	errC := make(chan error, 1)
	go func() {
		defer close(errC)
		if err := sinkFn(p.ctx, input.Output); err != nil {
			errC <- err

			return
		}
		if err := p.afterSink(step.Details); err != nil {
			errC <- err
		}
	}()
	p.errcList.add(newErrorChan(name, errC))

	return nil
}

func (p *Pipeline) onSinkOutput(parent, step *model.StepInfo, iterationDuration, computationDuration time.Duration) error {
	for _, opt := range p.opts {
		err := opt.OnSinkOutput(parent, step, iterationDuration, computationDuration)
		if err != nil {
			return errors.Wrap(err, "unable to run on sink output function")
		}
	}

	return nil
}
