/*
Package worker executes tasks handed out by the scheduler.

A Pool runs a fixed number of workers. The scheduler dispatches tasks it
has transitioned to running; a worker executes each through the
configured Executor and reports the outcome with Scheduler.Complete,
which releases the task's resources and applies the retry policy on
failure.

The Executor interface is the integration point for real workloads:

	type Executor interface {
		Execute(ctx context.Context, task *types.Task) error
	}

How work actually runs (a process, a container, a remote service call)
is entirely the executor's business. The pool guarantees only that every
dispatched task gets exactly one Complete call.

Cancellation is cooperative: stopping the pool cancels the shared
context, and executors are expected to honor it. A task whose execution
is cut short reports as a failure and re-enters the retry path.

SleepExecutor ships for simulations and tests; it sleeps for the task's
estimated duration (scaled) and fails on demand via its ShouldFail hook.

	pool := worker.NewPool(sched, &worker.SleepExecutor{Scale: 0.01}, 4)
	pool.Start()
	sched.Start(pool)
*/
package worker
