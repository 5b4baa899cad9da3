/*
Package scheduler implements resource-aware priority task selection with
exponential-backoff retry.

The scheduler is the only writer of task status after submission. It
polls the store for schedulable work, checks the resource pool for
admission, and drives every transition of the task state machine:

	pending → queued → running → completed
	                       │
	                       ├→ failed                 (budget exhausted)
	                       └→ retrying → queued/running (recoverable)

	pending|queued → skipped        (manual)
	any non-terminal → cancelled    (manual, idempotent)

# Selection Algorithm

SelectNext considers tasks in pending, queued or retrying whose retry
delay has elapsed, orders them by priority descending with ties broken
oldest-first, and returns the first one whose declared resources fit
current availability. Selection, reservation and the transition to
running happen under a single mutex, so two concurrent SelectNext calls
can never jointly exceed pool capacity.

Eligible tasks that do not fit are marked queued and passed over; a
lower-priority task that does fit runs instead (no backfill reservation
for the blocked one). When nothing fits SelectNext returns (nil, nil)
immediately; callers poll rather than block.

The strict priority order means a continuous stream of critical tasks
starves low-priority ones indefinitely. That is a documented property of
the design, not a bug; there is no aging mechanism.

# Completion and Retry

Workers report outcomes through Complete(taskID, success, executionMS).
Resources are released unconditionally, success or failure. A failed
task with retry budget left moves to retrying with its retry count
incremented and a NotBefore gate of now + policy delay; the gate is
enforced by the eligibility check in SelectNext, never by a sleeping
goroutine. A task whose failure would exceed its budget moves straight
to failed.

# Error Semantics

  - resource.ErrInsufficientResources / resource.ErrAccountingError:
    contract violations; propagated to the caller, never swallowed
  - store.ErrInvalidTransition inside selection: expected stale-state
    race; the decision is re-run a bounded number of times
  - store.ErrInvalidTransition from Complete/Cancel/Skip: surfaced to
    the caller, which should re-fetch and re-decide

# Run Loop

	sched := scheduler.NewScheduler(st, pool, policy,
		scheduler.WithPollInterval(time.Second),
		scheduler.WithBroker(broker),
	)
	sched.Start(workerPool) // sweeps and dispatches until Stop
	defer sched.Stop()

Each sweep drains everything currently runnable and stops at the first
pass where nothing fits; freed capacity is seen on the next tick.

# See Also

  - pkg/retry - Backoff policy applied on failure
  - pkg/resource - Admission and reservation accounting
  - pkg/store - Transition guards that surface races
  - pkg/worker - Dispatcher implementation executing tasks
*/
package scheduler
