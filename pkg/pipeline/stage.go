// Package pipeline provides the stage abstraction and the data passed
// between stages of a captioning run.
package pipeline

import (
	"context"
	"time"
)

// Stage is one step of a run: it turns an input into an output.
type Stage[In, Out any] interface {
	Execute(ctx context.Context, input In) (Out, error)
}

// StageFunc adapts a plain function to Stage.
type StageFunc[In, Out any] func(ctx context.Context, input In) (Out, error)

// Execute implements Stage.
func (f StageFunc[In, Out]) Execute(ctx context.Context, input In) (Out, error) {
	return f(ctx, input)
}

// Observer receives the wall time of one stage execution.
type Observer func(name string, elapsed time.Duration, err error)

// Timed wraps stage so that every Execute call is reported to observe under
// name, whether it succeeds or not. A nil observe returns stage unchanged.
func Timed[In, Out any](name string, stage Stage[In, Out], observe Observer) Stage[In, Out] {
	if observe == nil {
		return stage
	}
	return StageFunc[In, Out](func(ctx context.Context, input In) (Out, error) {
		start := time.Now()
		out, err := stage.Execute(ctx, input)
		observe(name, time.Since(start), err)
		return out, err
	})
}
