package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/resource"
	"github.com/cuemby/burrow/pkg/retry"
	"github.com/cuemby/burrow/pkg/scheduler"
	"github.com/cuemby/burrow/pkg/store"
	"github.com/cuemby/burrow/pkg/types"
)

func TestMain(m *testing.M) {
	log.Discard()
	m.Run()
}

func newTestScheduler(t *testing.T) (*scheduler.Scheduler, *store.MemoryStore) {
	t.Helper()

	st := store.NewMemoryStore()
	pool, err := resource.NewPool(types.Resources{CPUCores: 8, MemoryMB: 16384})
	require.NoError(t, err)
	policy, err := retry.NewPolicy(1, time.Millisecond, 10*time.Millisecond, 2, false)
	require.NoError(t, err)

	return scheduler.NewScheduler(st, pool, policy,
		scheduler.WithPollInterval(10*time.Millisecond)), st
}

func submitTask(t *testing.T, sched *scheduler.Scheduler, id string, durationMS int64) {
	t.Helper()
	task := types.NewTask("task-"+id, types.TaskTypeETL, types.PriorityNormal,
		types.Resources{CPUCores: 1, MemoryMB: 1024})
	task.ID = id
	task.EstimatedDurationMS = durationMS
	require.NoError(t, sched.Submit(task))
}

func waitForStatus(t *testing.T, st store.Store, id string, want types.TaskStatus) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		task, err := st.Get(id)
		require.NoError(t, err)
		if task.Status == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	task, _ := st.Get(id)
	t.Fatalf("task %s never reached %s, stuck at %s", id, want, task.Status)
}

// TestPoolRunsDispatchedTasks drives tasks through the full
// select-execute-complete cycle with the scheduler's run loop.
func TestPoolRunsDispatchedTasks(t *testing.T) {
	sched, st := newTestScheduler(t)

	pool := NewPool(sched, &SleepExecutor{}, 2)
	pool.Start()
	defer pool.Stop()
	sched.Start(pool)
	defer sched.Stop()

	submitTask(t, sched, "t1", 0)
	submitTask(t, sched, "t2", 0)

	waitForStatus(t, st, "t1", types.TaskCompleted)
	waitForStatus(t, st, "t2", types.TaskCompleted)
}

// TestPoolReportsFailures verifies a failing execution lands in the
// retry path and eventually fails permanently.
func TestPoolReportsFailures(t *testing.T) {
	sched, st := newTestScheduler(t)

	exec := &SleepExecutor{ShouldFail: func(*types.Task) bool { return true }}
	pool := NewPool(sched, exec, 1)
	pool.Start()
	defer pool.Stop()
	sched.Start(pool)
	defer sched.Stop()

	task := types.NewTask("doomed", types.TaskTypeETL, types.PriorityNormal,
		types.Resources{CPUCores: 1, MemoryMB: 1024})
	task.ID = "t1"
	task.MaxRetries = 1
	require.NoError(t, sched.Submit(task))

	waitForStatus(t, st, "t1", types.TaskFailed)

	got, err := st.Get("t1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.RetryCount)
}

// TestPoolRecoversAfterFailure verifies a task that fails once and then
// succeeds completes with the retry recorded.
func TestPoolRecoversAfterFailure(t *testing.T) {
	sched, st := newTestScheduler(t)

	var attempts atomic.Int32
	exec := &SleepExecutor{ShouldFail: func(*types.Task) bool {
		return attempts.Add(1) == 1
	}}
	pool := NewPool(sched, exec, 1)
	pool.Start()
	defer pool.Stop()
	sched.Start(pool)
	defer sched.Stop()

	submitTask(t, sched, "t1", 0)
	waitForStatus(t, st, "t1", types.TaskCompleted)

	got, err := st.Get("t1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.RetryCount)
}

func TestNewPoolMinimumWorkers(t *testing.T) {
	sched, _ := newTestScheduler(t)
	pool := NewPool(sched, &SleepExecutor{}, 0)
	assert.Equal(t, 1, pool.count)
}

func TestSleepExecutorScalesDuration(t *testing.T) {
	exec := &SleepExecutor{Scale: 0.001, MaxSleep: 50 * time.Millisecond}
	task := types.NewTask("sleepy", types.TaskTypeETL, types.PriorityNormal,
		types.Resources{CPUCores: 1, MemoryMB: 512})
	task.EstimatedDurationMS = 10_000

	start := time.Now()
	require.NoError(t, exec.Execute(context.Background(), task))
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 10*time.Millisecond)
	assert.Less(t, elapsed, time.Second)
}

func TestSleepExecutorHonoursCancellation(t *testing.T) {
	exec := &SleepExecutor{Scale: 1}
	task := types.NewTask("slow", types.TaskTypeETL, types.PriorityNormal,
		types.Resources{CPUCores: 1, MemoryMB: 512})
	task.EstimatedDurationMS = 60_000

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- exec.Execute(ctx, task) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("execution did not stop on cancellation")
	}
}
