package pipeline

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-linker/pkg/pipeline/model"
)

// Splitter duplicates or routes one stream into several branches.
type Splitter[I any] struct {
	mu            sync.Mutex
	currIdx       int
	mainStep      *model.Step[I]
	splittedSteps []*model.Step[I]
	bufferSize    int
	Total         int
}

// Get returns the next unclaimed branch.
func (s *Splitter[I]) Get() (*model.Step[I], bool) {
	s.mu.Lock()
	defer func() {
		s.currIdx++
		s.mu.Unlock()
	}()
	if s.currIdx >= len(s.splittedSteps) {
		return nil, false
	}

	return s.splittedSteps[s.currIdx], true
}

// SplitterFn decides whether an element belongs to a branch.
type SplitterFn[I any] func(input I) (bool, error)

// AddSplitter duplicates every input element to total branches.
func AddSplitter[I any](p *Pipeline, name string, input *model.Step[I], total int, opts ...SplitterOption[I]) (*Splitter[I], error) {
	return addSplitter(p, name, input, total, nil, opts...)
}

// AddSplitterFn routes input elements: each branch receives the elements
// its function accepts. One element may land in several branches.
func AddSplitterFn[I any](p *Pipeline, name string, input *model.Step[I], fns []SplitterFn[I], opts ...SplitterOption[I]) (*Splitter[I], error) {
	return addSplitter(p, name, input, len(fns), fns, opts...)
}

func addSplitter[I any](p *Pipeline, name string, input *model.Step[I], total int, fns []SplitterFn[I], opts ...SplitterOption[I]) (*Splitter[I], error) {
	if p == nil {
		return nil, ErrPipelineMustBeSet
	}
	if input == nil {
		return nil, ErrInputMustBeSet
	}
	if total == 0 {
		return nil, ErrSplitterTotal
	}

	splitter := &Splitter[I]{
		Total: total,
		mainStep: &model.Step[I]{
			Details: &model.StepInfo{
				Type:       model.SplitterStepType,
				Name:       name,
				Concurrent: 1,
			},
		},
	}
	for _, opt := range opts {
		opt(splitter)
	}
	if splitter.bufferSize == 0 {
		splitter.bufferSize = 1
	}

	for _, opt := range p.opts {
		err := opt.PrepareSplitter(input.Details, splitter.mainStep.Details)
		if err != nil {
			return nil, errors.Wrap(err, "unable to prepare splitter")
		}
	}

	splitter.splittedSteps = make([]*model.Step[I], total)
	buffers := make([]chan I, total)
	for i := range buffers {
		buffers[i] = make(chan I, splitter.bufferSize)
		splitter.splittedSteps[i] = &model.Step[I]{
			Details: &model.StepInfo{
				Type: model.SplitterStepType,
				Name: name,
			},
			Output: make(chan I),
		}
	}

	// One slot per forwarding goroutine plus one for the feeder, so no
	// sender blocks when Run has already returned.
	errC := make(chan error, total+1)

	// One forwarding goroutine per branch drains its buffer, applying the
	// branch function when routing.
	wgrp := &sync.WaitGroup{}
	wgrp.Add(total)
	for i := range buffers {
		localIdx := i
		go func() {
			defer wgrp.Done()
			defer close(splitter.splittedSteps[localIdx].Output)
			for {
				select {
				case <-p.ctx.Done():
					errC <- p.ctx.Err()

					return
				case elem, ok := <-buffers[localIdx]:
					if !ok {
						return
					}
					if fns != nil {
						keep, err := fns[localIdx](elem)
						if err != nil {
							errC <- errors.Wrap(err, "unable to run splitter function")

							return
						}
						if !keep {
							continue
						}
					}
					select {
					case <-p.ctx.Done():
						errC <- p.ctx.Err()

						return
					case splitter.splittedSteps[localIdx].Output <- elem:
					}
				}
			}
		}()
	}

	go func() {
		defer func() {
			for _, buf := range buffers {
				close(buf)
			}
			wgrp.Wait()
			close(errC)
		}()

	outer:
		for {
			startIter := time.Now()
			select {
			case <-p.ctx.Done():
				errC <- p.ctx.Err()

				break outer
			case entry, ok := <-input.Output:
				if !ok {
					break outer
				}
				startFn := time.Now()
				for _, buf := range buffers {
					select {
					case <-p.ctx.Done():
						errC <- p.ctx.Err()

						break outer
					case buf <- entry:
					}
				}
				endFn := time.Since(startFn)

				for _, opt := range p.opts {
					err := opt.OnSplitterOutput(input.Details, splitter.mainStep.Details, time.Since(startIter)-endFn, endFn)
					if err != nil {
						errC <- errors.Wrap(err, "unable to run on splitter output function")

						break outer
					}
				}
			}
		}
	}()
	p.errcList.add(newErrorChan(name, errC))

	return splitter, nil
}
