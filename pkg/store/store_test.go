package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/burrow/pkg/types"
)

// backends runs a subtest against every Store implementation so the two
// can not drift apart behaviorally.
func backends(t *testing.T, fn func(t *testing.T, st Store)) {
	t.Helper()

	t.Run("memory", func(t *testing.T) {
		st := NewMemoryStore()
		defer st.Close()
		fn(t, st)
	})

	t.Run("bolt", func(t *testing.T) {
		st, err := NewBoltStore(t.TempDir())
		require.NoError(t, err)
		defer st.Close()
		fn(t, st)
	})
}

func newTask(id string, priority types.Priority) *types.Task {
	task := types.NewTask("task-"+id, types.TaskTypeETL, priority, types.Resources{
		CPUCores: 1,
		MemoryMB: 1024,
	})
	task.ID = id
	task.CreatedAt = time.Now()
	return task
}

func TestSubmit(t *testing.T) {
	backends(t, func(t *testing.T, st Store) {
		task := newTask("t1", types.PriorityNormal)
		require.NoError(t, st.Submit(task))

		got, err := st.Get("t1")
		require.NoError(t, err)
		assert.Equal(t, types.TaskPending, got.Status)
		assert.Equal(t, "task-t1", got.Name)
	})
}

func TestSubmitDuplicate(t *testing.T) {
	backends(t, func(t *testing.T, st Store) {
		require.NoError(t, st.Submit(newTask("t1", types.PriorityNormal)))

		err := st.Submit(newTask("t1", types.PriorityHigh))
		assert.ErrorIs(t, err, ErrDuplicateTaskID)
	})
}

func TestGetNotFound(t *testing.T) {
	backends(t, func(t *testing.T, st Store) {
		_, err := st.Get("missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

// TestGetReturnsCopy verifies callers can not mutate stored state
// through the returned task.
func TestGetReturnsCopy(t *testing.T) {
	backends(t, func(t *testing.T, st Store) {
		require.NoError(t, st.Submit(newTask("t1", types.PriorityNormal)))

		got, err := st.Get("t1")
		require.NoError(t, err)
		got.Status = types.TaskRunning
		got.RetryCount = 99

		fresh, err := st.Get("t1")
		require.NoError(t, err)
		assert.Equal(t, types.TaskPending, fresh.Status)
		assert.Equal(t, 0, fresh.RetryCount)
	})
}

func TestListFilters(t *testing.T) {
	backends(t, func(t *testing.T, st Store) {
		high := newTask("t1", types.PriorityHigh)
		high.Type = types.TaskTypeML
		low := newTask("t2", types.PriorityLow)
		critical := newTask("t3", types.PriorityCritical)
		critical.Type = types.TaskTypeML

		for _, task := range []*types.Task{high, low, critical} {
			require.NoError(t, st.Submit(task))
		}
		_, err := st.Transition("t3", []types.TaskStatus{types.TaskPending}, types.TaskQueued, nil)
		require.NoError(t, err)

		tests := []struct {
			name   string
			filter Filter
			want   int
		}{
			{"empty filter matches all", Filter{}, 3},
			{"by status", Filter{Status: []types.TaskStatus{types.TaskPending}}, 2},
			{"by priority", Filter{Priority: types.PriorityHigh}, 1},
			{"by type", Filter{Type: types.TaskTypeML}, 2},
			{"conjunctive", Filter{Type: types.TaskTypeML, Status: []types.TaskStatus{types.TaskQueued}}, 1},
			{"no match", Filter{Priority: types.PriorityNormal}, 0},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := st.List(tt.filter)
				require.NoError(t, err)
				assert.Len(t, got, tt.want)
			})
		}
	})
}

func TestTransitionGuard(t *testing.T) {
	backends(t, func(t *testing.T, st Store) {
		require.NoError(t, st.Submit(newTask("t1", types.PriorityNormal)))

		// Guard mismatch: task is pending, caller believes it is running
		_, err := st.Transition("t1", []types.TaskStatus{types.TaskRunning}, types.TaskCompleted, nil)
		assert.ErrorIs(t, err, ErrInvalidTransition)

		// Status unchanged after the refused transition
		got, err := st.Get("t1")
		require.NoError(t, err)
		assert.Equal(t, types.TaskPending, got.Status)
	})
}

func TestTransitionToRunning(t *testing.T) {
	backends(t, func(t *testing.T, st Store) {
		task := newTask("t1", types.PriorityNormal)
		task.NotBefore = time.Now().Add(time.Hour)
		require.NoError(t, st.Submit(task))

		got, err := st.Transition("t1", types.Schedulable, types.TaskRunning, nil)
		require.NoError(t, err)
		assert.Equal(t, types.TaskRunning, got.Status)
		assert.False(t, got.StartedAt.IsZero())
		assert.True(t, got.NotBefore.IsZero(), "retry gate should clear on start")
	})
}

func TestTransitionToRetryingIncrementsCount(t *testing.T) {
	backends(t, func(t *testing.T, st Store) {
		require.NoError(t, st.Submit(newTask("t1", types.PriorityNormal)))
		_, err := st.Transition("t1", types.Schedulable, types.TaskRunning, nil)
		require.NoError(t, err)

		gate := time.Now().Add(2 * time.Second)
		got, err := st.Transition("t1",
			[]types.TaskStatus{types.TaskRunning}, types.TaskRetrying,
			&Update{NotBefore: gate, Error: "boom", ExecutionTimeMS: 120})
		require.NoError(t, err)

		assert.Equal(t, 1, got.RetryCount)
		assert.Equal(t, "boom", got.Error)
		assert.Equal(t, int64(120), got.ExecutionTimeMS)
		assert.WithinDuration(t, gate, got.NotBefore, time.Millisecond)
	})
}

func TestTransitionToTerminalStampsFinish(t *testing.T) {
	backends(t, func(t *testing.T, st Store) {
		require.NoError(t, st.Submit(newTask("t1", types.PriorityNormal)))
		_, err := st.Transition("t1", types.Schedulable, types.TaskRunning, nil)
		require.NoError(t, err)

		got, err := st.Transition("t1",
			[]types.TaskStatus{types.TaskRunning}, types.TaskCompleted,
			&Update{ExecutionTimeMS: 500})
		require.NoError(t, err)
		assert.False(t, got.FinishedAt.IsZero())
		assert.Equal(t, int64(500), got.ExecutionTimeMS)
	})
}

func TestDelete(t *testing.T) {
	backends(t, func(t *testing.T, st Store) {
		require.NoError(t, st.Submit(newTask("t1", types.PriorityNormal)))
		assert.NoError(t, st.Delete("t1"))

		_, err := st.Get("t1")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDeleteBusy(t *testing.T) {
	backends(t, func(t *testing.T, st Store) {
		require.NoError(t, st.Submit(newTask("t1", types.PriorityNormal)))
		_, err := st.Transition("t1", types.Schedulable, types.TaskRunning, nil)
		require.NoError(t, err)

		assert.ErrorIs(t, st.Delete("t1"), ErrTaskBusy)

		// Terminal task becomes deletable
		_, err = st.Transition("t1", []types.TaskStatus{types.TaskRunning}, types.TaskCompleted, nil)
		require.NoError(t, err)
		assert.NoError(t, st.Delete("t1"))
	})
}

func TestDeleteQueuedRefused(t *testing.T) {
	backends(t, func(t *testing.T, st Store) {
		require.NoError(t, st.Submit(newTask("t1", types.PriorityNormal)))
		_, err := st.Transition("t1", []types.TaskStatus{types.TaskPending}, types.TaskQueued, nil)
		require.NoError(t, err)

		assert.ErrorIs(t, st.Delete("t1"), ErrTaskBusy)
	})
}

func TestDeleteNotFound(t *testing.T) {
	backends(t, func(t *testing.T, st Store) {
		assert.ErrorIs(t, st.Delete("missing"), ErrNotFound)
	})
}

// TestBoltPersistence verifies tasks survive a close/reopen cycle.
func TestBoltPersistence(t *testing.T) {
	dir := t.TempDir()

	st, err := NewBoltStore(dir)
	require.NoError(t, err)
	require.NoError(t, st.Submit(newTask("t1", types.PriorityHigh)))
	require.NoError(t, st.Close())

	reopened, err := NewBoltStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get("t1")
	require.NoError(t, err)
	assert.Equal(t, types.PriorityHigh, got.Priority)
	assert.Equal(t, types.TaskPending, got.Status)
}
