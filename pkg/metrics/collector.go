package metrics

import (
	"time"

	"github.com/cuemby/burrow/pkg/resource"
	"github.com/cuemby/burrow/pkg/store"
	"github.com/cuemby/burrow/pkg/types"
)

// Collector periodically refreshes task and pool gauges from the store
// and resource pool.
type Collector struct {
	store    store.Store
	pool     *resource.Pool
	interval time.Duration
	stopCh   chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(st store.Store, pool *resource.Pool, interval time.Duration) *Collector {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Collector{
		store:    st,
		pool:     pool,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins collecting metrics
func (c *Collector) Start() {
	ticker := time.NewTicker(c.interval)
	go func() {
		// Collect immediately on start
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	c.collectTaskMetrics()
	c.collectPoolMetrics()
}

func (c *Collector) collectTaskMetrics() {
	tasks, err := c.store.List(store.Filter{})
	if err != nil {
		return
	}

	counts := make(map[types.TaskStatus]int)
	for _, task := range tasks {
		counts[task.Status]++
	}

	// Reset every known status so emptied states drop to zero
	for _, status := range []types.TaskStatus{
		types.TaskPending, types.TaskQueued, types.TaskRunning,
		types.TaskRetrying, types.TaskCompleted, types.TaskFailed,
		types.TaskCancelled, types.TaskSkipped,
	} {
		TasksTotal.WithLabelValues(string(status)).Set(float64(counts[status]))
	}
}

func (c *Collector) collectPoolMetrics() {
	snap := c.pool.Snapshot()

	PoolCapacity.WithLabelValues("cpu_cores").Set(snap.Total.CPUCores)
	PoolCapacity.WithLabelValues("memory_mb").Set(float64(snap.Total.MemoryMB))
	PoolCapacity.WithLabelValues("gpu_count").Set(float64(snap.Total.GPUCount))

	PoolUsed.WithLabelValues("cpu_cores").Set(snap.Used.CPUCores)
	PoolUsed.WithLabelValues("memory_mb").Set(float64(snap.Used.MemoryMB))
	PoolUsed.WithLabelValues("gpu_count").Set(float64(snap.Used.GPUCount))
}
