package pipeline

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-linker/pkg/pipeline/model"
)

func prepareMerger[I any](p *Pipeline, name string, output chan I, steps ...*model.Step[I]) (*model.Step[I], error) {
	outputStep := &model.Step[I]{
		Details: &model.StepInfo{
			Type:       model.MergerStepType,
			Name:       name,
			Concurrent: 1,
		},
		Output: output,
	}

	stepInfos := make([]*model.StepInfo, len(steps))
	for i, step := range steps {
		stepInfos[i] = step.Details
	}

	for _, opt := range p.opts {
		err := opt.PrepareMerger(stepInfos, outputStep.Details)
		if err != nil {
			return nil, errors.Wrap(err, "unable to prepare merger")
		}
	}

	return outputStep, nil
}

func runStepMerger[I any](p *Pipeline, errC chan<- error, step, outputStep *model.Step[I]) {
	for {
		startIter := time.Now()
		select {
		case <-p.ctx.Done():
			errC <- p.ctx.Err()

			return
		case entry, ok := <-step.Output:
			if !ok {
				return
			}

			select {
			case <-p.ctx.Done():
				errC <- p.ctx.Err()

				return
			case outputStep.Output <- entry:
				for _, opt := range p.opts {
					err := opt.OnMergerOutput(step.Details, outputStep.Details, time.Since(startIter))
					if err != nil {
						errC <- errors.Wrap(err, "unable to run on merger output function")

						return
					}
				}
			}
		}
	}
}

// AddMerger merges the output of several steps into a single stream. The
// merged channel closes once every input channel is drained.
func AddMerger[I any](p *Pipeline, name string, steps ...*model.Step[I]) (*model.Step[I], error) {
	if p == nil {
		return nil, ErrPipelineMustBeSet
	}
	if len(steps) == 0 {
		return nil, ErrInputMustBeSet
	}

	output := make(chan I)
	outputStep, err := prepareMerger(p, name, output, steps...)
	if err != nil {
		return nil, err
	}

	errC := make(chan error, len(steps))
	wgrp := sync.WaitGroup{}
	wgrp.Add(len(steps))

	go func() {
		wgrp.Wait()
		close(errC)
		close(output)
	}()

	for _, step := range steps {
		localStep := step
		go func() {
			defer wgrp.Done()
			runStepMerger(p, errC, localStep, outputStep)
		}()
	}

	p.errcList.add(newErrorChan(name, errC))

	return outputStep, nil
}
