package pipeline_test

import (
	"context"
	"testing"

	"github.com/askiada/go-linker/pkg/pipeline/model"
)

func createInputStep(t *testing.T, total int) *model.Step[int] {
	t.Helper()
	inputChan := make(chan int)
	go func() {
		defer close(inputChan)
		for i := 0; i < total; i++ {
			inputChan <- i
		}
	}()

	return &model.Step[int]{
		Details: &model.StepInfo{Name: "input"},
		Output:  inputChan,
	}
}

func createInputStepWithCancel(t *testing.T, total, offset int, cancel context.CancelFunc) *model.Step[int] {
	t.Helper()
	inputChan := make(chan int)
	go func() {
		defer close(inputChan)
		for i := 0; i < total; i++ {
			if i == offset {
				cancel()
			}
			inputChan <- i
		}
	}()

	return &model.Step[int]{
		Details: &model.StepInfo{Name: "input"},
		Output:  inputChan,
	}
}

func processOutputChan(t *testing.T, output <-chan int) (res []int) {
	t.Helper()
	for out := range output {
		res = append(res, out)
	}

	return res
}
