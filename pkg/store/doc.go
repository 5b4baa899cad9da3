/*
Package store owns the canonical set of tasks and their lifecycle states.

The Store interface is the single source of truth for task status. Every
lifecycle change goes through Transition, which takes the set of statuses
the caller believes the task to be in. If the task has moved in the
meantime the transition fails with ErrInvalidTransition rather than
silently overwriting state, which turns stale-state races into visible,
recoverable errors.

# Implementations

MemoryStore keeps tasks in a mutex-guarded map. Get and List take only a
shared read lock, so display traffic never serializes behind mutations.
This is the default backend for embedded use and tests.

BoltStore persists tasks as JSON values in a single BoltDB bucket. Each
transition runs inside one update transaction, matching the memory
store's atomicity. Both implementations share the transition logic, so
their semantics can not diverge.

# Transition Contract

	task, err := st.Transition(id,
		[]types.TaskStatus{types.TaskPending, types.TaskQueued},
		types.TaskRunning, nil)
	if errors.Is(err, store.ErrInvalidTransition) {
		// someone else moved the task first; re-fetch and re-decide
	}

Transitions to retrying increment the retry count in the same atomic
step; transitions to running stamp StartedAt and clear the retry gate;
transitions to a terminal status stamp FinishedAt. The optional Update
argument records execution time, an error message, or the next retry
eligibility time together with the status change.

# Deletion

Delete is permitted only for pending and terminal tasks. Deleting a task
that is anywhere in flight (queued, running, retrying) fails with
ErrTaskBusy; cancel it first.

# Error Taxonomy

  - ErrDuplicateTaskID: Submit with an id that already exists
  - ErrNotFound: no task with the given id
  - ErrInvalidTransition: current status not in the caller's from-set
  - ErrTaskBusy: Delete on an in-flight task

All errors wrap these sentinels; match with errors.Is.

# See Also

  - pkg/scheduler - The only writer of status after creation
  - pkg/types - Task model and status definitions
*/
package store
