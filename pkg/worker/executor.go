package worker

import (
	"context"
	"errors"
	"time"

	"github.com/cuemby/burrow/pkg/types"
)

// ErrSimulatedFailure is returned by the sleep executor's failure hook
var ErrSimulatedFailure = errors.New("simulated task failure")

// SleepExecutor simulates execution by sleeping for the task's estimated
// duration. Used by the simulate command and by tests; real deployments
// plug in their own Executor.
type SleepExecutor struct {
	// Scale multiplies the estimated duration; 0.01 runs a simulation at
	// 100x speed. Zero means no sleep at all.
	Scale float64

	// MaxSleep caps a single simulated execution regardless of estimate
	MaxSleep time.Duration

	// ShouldFail, when set, decides per attempt whether execution fails
	ShouldFail func(task *types.Task) bool
}

func (e *SleepExecutor) Execute(ctx context.Context, task *types.Task) error {
	d := time.Duration(float64(task.EstimatedDurationMS)*e.Scale) * time.Millisecond
	if e.MaxSleep > 0 && d > e.MaxSleep {
		d = e.MaxSleep
	}

	if d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if e.ShouldFail != nil && e.ShouldFail(task) {
		return ErrSimulatedFailure
	}
	return nil
}
