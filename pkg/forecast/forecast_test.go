package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/resource"
	"github.com/cuemby/burrow/pkg/store"
	"github.com/cuemby/burrow/pkg/types"
)

func TestMain(m *testing.M) {
	log.Discard()
	m.Run()
}

func newForecastFixture(t *testing.T, capacity types.Resources) (*Forecaster, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	pool, err := resource.NewPool(capacity)
	require.NoError(t, err)
	return NewForecaster(st, pool, 0), st
}

func addBacklogTask(t *testing.T, st *store.MemoryStore, id string, res types.Resources, durationMS int64) {
	t.Helper()
	task := types.NewTask("task-"+id, types.TaskTypeETL, types.PriorityNormal, res)
	task.ID = id
	task.EstimatedDurationMS = durationMS
	require.NoError(t, st.Submit(task))
}

// TestForecastSumsBacklogDemand checks demand aggregation over a mixed
// backlog against an 8-core pool.
func TestForecastSumsBacklogDemand(t *testing.T) {
	f, st := newForecastFixture(t, types.Resources{CPUCores: 8, MemoryMB: 16384, GPUCount: 1})

	addBacklogTask(t, st, "a", types.Resources{CPUCores: 2, MemoryMB: 2048}, 60_000)
	addBacklogTask(t, st, "b", types.Resources{CPUCores: 3, MemoryMB: 4096}, 120_000)
	addBacklogTask(t, st, "c", types.Resources{CPUCores: 1, MemoryMB: 1024, GPUCount: 1}, 30_000)

	fc, err := f.Forecast(60)
	require.NoError(t, err)

	assert.Equal(t, 3, fc.PredictedTasks)
	assert.Equal(t, 6.0, fc.ResourceDemand.CPUCores)
	assert.Equal(t, int64(7168), fc.ResourceDemand.MemoryMB)
	assert.Equal(t, 1, fc.ResourceDemand.GPUCount)
	assert.InDelta(t, 75.0, fc.Utilization.CPUPercent, 0.01)
	assert.InDelta(t, 100.0, fc.Utilization.GPUPercent, 0.01)
	assert.Equal(t, 60, fc.WindowMinutes)
	assert.False(t, fc.GeneratedAt.IsZero())
}

// TestForecastExcludesTasksBeyondWindow verifies a task whose estimated
// duration exceeds the window is not counted.
func TestForecastExcludesTasksBeyondWindow(t *testing.T) {
	f, st := newForecastFixture(t, types.Resources{CPUCores: 8, MemoryMB: 16384})

	addBacklogTask(t, st, "short", types.Resources{CPUCores: 1, MemoryMB: 1024}, 30_000)
	addBacklogTask(t, st, "long", types.Resources{CPUCores: 4, MemoryMB: 8192}, 10*60_000)

	fc, err := f.Forecast(5)
	require.NoError(t, err)

	assert.Equal(t, 1, fc.PredictedTasks)
	assert.Equal(t, 1.0, fc.ResourceDemand.CPUCores)
}

// TestForecastIncludesUnestimatedTasks verifies a task without a duration
// estimate always counts toward the window.
func TestForecastIncludesUnestimatedTasks(t *testing.T) {
	f, st := newForecastFixture(t, types.Resources{CPUCores: 8, MemoryMB: 16384})

	addBacklogTask(t, st, "no-estimate", types.Resources{CPUCores: 2, MemoryMB: 2048}, 0)

	fc, err := f.Forecast(1)
	require.NoError(t, err)
	assert.Equal(t, 1, fc.PredictedTasks)
	assert.Equal(t, 2.0, fc.ResourceDemand.CPUCores)
}

// TestForecastOverSubscription verifies utilization above 100% is
// reported as-is and produces a recommendation.
func TestForecastOverSubscription(t *testing.T) {
	f, st := newForecastFixture(t, types.Resources{CPUCores: 4, MemoryMB: 8192})

	addBacklogTask(t, st, "a", types.Resources{CPUCores: 4, MemoryMB: 2048}, 0)
	addBacklogTask(t, st, "b", types.Resources{CPUCores: 4, MemoryMB: 2048}, 0)

	fc, err := f.Forecast(30)
	require.NoError(t, err)

	assert.InDelta(t, 200.0, fc.Utilization.CPUPercent, 0.01)
	require.NotEmpty(t, fc.Recommendations)
	assert.Contains(t, fc.Recommendations[0], "CPU")
}

// TestForecastZeroCapacityDimension verifies GPU demand against a pool
// with no GPUs stays finite.
func TestForecastZeroCapacityDimension(t *testing.T) {
	f, st := newForecastFixture(t, types.Resources{CPUCores: 8, MemoryMB: 16384, GPUCount: 0})

	addBacklogTask(t, st, "gpu", types.Resources{CPUCores: 1, MemoryMB: 1024, GPUCount: 2}, 0)

	fc, err := f.Forecast(15)
	require.NoError(t, err)

	assert.Equal(t, 200.0, fc.Utilization.GPUPercent)
	require.Len(t, fc.Recommendations, 1)
	assert.Contains(t, fc.Recommendations[0], "GPU")
}

func TestForecastEmptyBacklog(t *testing.T) {
	f, _ := newForecastFixture(t, types.Resources{CPUCores: 8, MemoryMB: 16384})

	fc, err := f.Forecast(60)
	require.NoError(t, err)

	assert.Equal(t, 0, fc.PredictedTasks)
	assert.Equal(t, types.Resources{}, fc.ResourceDemand)
	assert.Zero(t, fc.Utilization.CPUPercent)
	assert.Empty(t, fc.Recommendations)
}

func TestForecastInvalidWindow(t *testing.T) {
	f, _ := newForecastFixture(t, types.Resources{CPUCores: 8, MemoryMB: 16384})

	_, err := f.Forecast(0)
	assert.Error(t, err)
	_, err = f.Forecast(-5)
	assert.Error(t, err)
}

// TestForecastIgnoresNonBacklogTasks verifies running and terminal tasks
// do not contribute to demand.
func TestForecastIgnoresNonBacklogTasks(t *testing.T) {
	f, st := newForecastFixture(t, types.Resources{CPUCores: 8, MemoryMB: 16384})

	addBacklogTask(t, st, "pending", types.Resources{CPUCores: 1, MemoryMB: 1024}, 0)
	addBacklogTask(t, st, "running", types.Resources{CPUCores: 2, MemoryMB: 2048}, 0)
	addBacklogTask(t, st, "done", types.Resources{CPUCores: 4, MemoryMB: 4096}, 0)

	_, err := st.Transition("running", types.Schedulable, types.TaskRunning, nil)
	require.NoError(t, err)
	_, err = st.Transition("done", types.Schedulable, types.TaskRunning, nil)
	require.NoError(t, err)
	_, err = st.Transition("done", []types.TaskStatus{types.TaskRunning}, types.TaskCompleted, nil)
	require.NoError(t, err)

	fc, err := f.Forecast(60)
	require.NoError(t, err)
	assert.Equal(t, 1, fc.PredictedTasks)
	assert.Equal(t, 1.0, fc.ResourceDemand.CPUCores)
}

func TestCustomThreshold(t *testing.T) {
	st := store.NewMemoryStore()
	pool, err := resource.NewPool(types.Resources{CPUCores: 10, MemoryMB: 16384})
	require.NoError(t, err)
	f := NewForecaster(st, pool, 50)

	task := types.NewTask("half", types.TaskTypeML, types.PriorityNormal,
		types.Resources{CPUCores: 6, MemoryMB: 1024})
	task.ID = "half"
	require.NoError(t, st.Submit(task))

	fc, err := f.Forecast(60)
	require.NoError(t, err)
	assert.InDelta(t, 60.0, fc.Utilization.CPUPercent, 0.01)
	assert.NotEmpty(t, fc.Recommendations, "60 percent demand should trip a 50 percent threshold")
}
