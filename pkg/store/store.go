package store

import (
	"errors"
	"time"

	"github.com/cuemby/burrow/pkg/types"
)

var (
	// ErrDuplicateTaskID is returned by Submit when the id already exists
	ErrDuplicateTaskID = errors.New("duplicate task id")

	// ErrNotFound is returned when no task has the given id
	ErrNotFound = errors.New("task not found")

	// ErrInvalidTransition means the task's current status was not in the
	// caller's from-set. Expected under concurrency: re-fetch and retry
	// the decision, not the task.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrTaskBusy is returned by Delete for a running task
	ErrTaskBusy = errors.New("task is running")
)

// Filter selects tasks by status, priority and type. Fields are
// conjunctive; a zero field matches all tasks in that dimension.
type Filter struct {
	Status   []types.TaskStatus
	Priority types.Priority
	Type     types.TaskType
}

// Match reports whether t satisfies every set dimension of f.
func (f Filter) Match(t *types.Task) bool {
	if len(f.Status) > 0 && !statusIn(t.Status, f.Status) {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	return true
}

// Update carries optional fields applied together with a transition.
type Update struct {
	ExecutionTimeMS int64
	Error           string

	// NotBefore gates re-selection after a retry transition
	NotBefore time.Time
}

// Store is the canonical owner of tasks and their states. All lifecycle
// transitions go through Transition so stale-state races surface as
// ErrInvalidTransition instead of lost updates.
type Store interface {
	// Submit inserts a new task in pending state
	Submit(task *types.Task) error

	// Get returns a copy of the task with the given id
	Get(id string) (*types.Task, error)

	// List returns copies of all tasks matching the filter
	List(f Filter) ([]*types.Task, error)

	// Transition atomically moves a task from one of the given statuses
	// to another, applying up (may be nil) in the same step. Moving to
	// retrying increments the retry count. Returns the updated task.
	Transition(id string, from []types.TaskStatus, to types.TaskStatus, up *Update) (*types.Task, error)

	// Delete removes a task; only permitted when terminal or pending
	Delete(id string) error

	Close() error
}

func statusIn(s types.TaskStatus, set []types.TaskStatus) bool {
	for _, candidate := range set {
		if s == candidate {
			return true
		}
	}
	return false
}

// applyTransition mutates t in place for a permitted from->to move.
// Shared by both store implementations so their semantics can not drift.
func applyTransition(t *types.Task, from []types.TaskStatus, to types.TaskStatus, up *Update, now time.Time) error {
	if !statusIn(t.Status, from) {
		return ErrInvalidTransition
	}

	t.Status = to
	switch to {
	case types.TaskRunning:
		t.StartedAt = now
		t.NotBefore = time.Time{}
	case types.TaskRetrying:
		t.RetryCount++
	}
	if to.Terminal() {
		t.FinishedAt = now
	}

	if up != nil {
		if up.ExecutionTimeMS != 0 {
			t.ExecutionTimeMS = up.ExecutionTimeMS
		}
		if up.Error != "" {
			t.Error = up.Error
		}
		if !up.NotBefore.IsZero() {
			t.NotBefore = up.NotBefore
		}
	}
	return nil
}

// deletable reports whether a task in status s may be removed
func deletable(s types.TaskStatus) bool {
	return s.Terminal() || s == types.TaskPending
}
