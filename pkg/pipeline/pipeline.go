package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-linker/pkg/pipeline/model"
)

// Pipeline is a set of running stages sharing one context.
type Pipeline struct {
	ctx       context.Context
	cancel    context.CancelFunc
	errcList  *errorChans
	opts      []model.PipelineOption
	startTime time.Time
}

// New creates a pipeline. Stages start running as soon as they are added;
// Run only waits for them.
func New(ctx context.Context, opts ...model.PipelineOption) (*Pipeline, error) {
	dCtx, cancel := context.WithCancel(ctx)
	pipe := &Pipeline{
		ctx:       dCtx,
		cancel:    cancel,
		errcList:  &errorChans{},
		opts:      opts,
		startTime: time.Now(),
	}

	for _, opt := range opts {
		if err := opt.New(); err != nil {
			cancel()

			return nil, errors.Wrap(err, "unable to apply pipeline option")
		}
	}

	return pipe, nil
}

// Run waits for every stage to finish. It returns on the first stage
// error and cancels all remaining stages.
func (p *Pipeline) Run() error {
	defer p.cancel()

	errc := mergeErrors(p.errcList.all()...)
	for err := range errc {
		if err != nil {
			p.cancel()
			// Keep draining so no stage goroutine stays blocked on its
			// error channel.
			go func() {
				for range errc {
				}
			}()

			return err
		}
	}

	return p.finishRun()
}

func (p *Pipeline) finishRun() error {
	for _, opt := range p.opts {
		if err := opt.Finish(); err != nil {
			return errors.Wrap(err, "unable to finish pipeline option")
		}
	}

	return nil
}
