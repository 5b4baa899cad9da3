package forecast

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/resource"
	"github.com/cuemby/burrow/pkg/store"
	"github.com/cuemby/burrow/pkg/types"
)

// DefaultThresholdPercent triggers recommendations when any projected
// utilization dimension exceeds it.
const DefaultThresholdPercent = 90.0

// Forecaster projects resource demand over a future window from the
// pending/queued/retrying backlog. It only reads; it never influences
// scheduling decisions.
type Forecaster struct {
	store     store.Store
	pool      *resource.Pool
	threshold float64
	logger    zerolog.Logger

	stopCh chan struct{}
}

// NewForecaster creates a forecaster with the given advisory threshold.
// A zero threshold selects the default.
func NewForecaster(st store.Store, pool *resource.Pool, thresholdPercent float64) *Forecaster {
	if thresholdPercent <= 0 {
		thresholdPercent = DefaultThresholdPercent
	}
	return &Forecaster{
		store:     st,
		pool:      pool,
		threshold: thresholdPercent,
		logger:    log.WithComponent("forecast"),
		stopCh:    make(chan struct{}),
	}
}

// Forecast sums resource requirements across backlog tasks that fall
// within the window. Tasks without a duration estimate are assumed to
// start immediately and occupy the full window, a conservative upper
// bound. Utilization percentages are not capped: values over 100 signal
// over-subscription and must reach the caller.
func (f *Forecaster) Forecast(windowMinutes int) (*types.DemandForecast, error) {
	if windowMinutes <= 0 {
		return nil, fmt.Errorf("forecast window must be positive: %d", windowMinutes)
	}

	backlog, err := f.store.List(store.Filter{Status: types.Schedulable})
	if err != nil {
		return nil, fmt.Errorf("failed to list backlog: %w", err)
	}

	windowMS := int64(windowMinutes) * int64(time.Minute/time.Millisecond)

	var demand types.Resources
	predicted := 0
	for _, task := range backlog {
		// No estimate: assume it starts now and runs the full window
		if task.EstimatedDurationMS > windowMS {
			continue
		}
		demand = demand.Add(task.Resources)
		predicted++
	}

	total := f.pool.Total()
	util := types.Utilization{
		CPUPercent:    percent(demand.CPUCores, total.CPUCores),
		MemoryPercent: percent(float64(demand.MemoryMB), float64(total.MemoryMB)),
		GPUPercent:    percent(float64(demand.GPUCount), float64(total.GPUCount)),
	}

	fc := &types.DemandForecast{
		WindowMinutes:   windowMinutes,
		GeneratedAt:     time.Now(),
		PredictedTasks:  predicted,
		ResourceDemand:  demand,
		Utilization:     util,
		Recommendations: f.recommend(util, predicted),
	}
	return fc, nil
}

// recommend generates advisory text for dimensions above the threshold.
// Presentation only; nothing acts on these strings.
func (f *Forecaster) recommend(util types.Utilization, predicted int) []string {
	var recs []string
	if util.CPUPercent > f.threshold {
		recs = append(recs, fmt.Sprintf(
			"Projected CPU utilization %.0f%% exceeds %.0f%%; consider adding CPU capacity or deferring %d backlog tasks",
			util.CPUPercent, f.threshold, predicted))
	}
	if util.MemoryPercent > f.threshold {
		recs = append(recs, fmt.Sprintf(
			"Projected memory utilization %.0f%% exceeds %.0f%%; consider adding memory capacity",
			util.MemoryPercent, f.threshold))
	}
	if util.GPUPercent > f.threshold {
		recs = append(recs, fmt.Sprintf(
			"Projected GPU utilization %.0f%% exceeds %.0f%%; GPU tasks will queue",
			util.GPUPercent, f.threshold))
	}
	return recs
}

// StartRefresh periodically recomputes the forecast for the given window
// and publishes the utilization gauges.
func (f *Forecaster) StartRefresh(windowMinutes int, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				fc, err := f.Forecast(windowMinutes)
				if err != nil {
					f.logger.Error().Err(err).Msg("Forecast refresh failed")
					continue
				}
				metrics.ForecastUtilization.WithLabelValues("cpu_cores").Set(fc.Utilization.CPUPercent)
				metrics.ForecastUtilization.WithLabelValues("memory_mb").Set(fc.Utilization.MemoryPercent)
				metrics.ForecastUtilization.WithLabelValues("gpu_count").Set(fc.Utilization.GPUPercent)
			case <-f.stopCh:
				return
			}
		}
	}()
}

// Stop stops the refresh loop
func (f *Forecaster) Stop() {
	close(f.stopCh)
}

// percent returns demand/total*100. Demand against a zero-capacity
// dimension is reported as a large finite figure rather than +Inf so the
// value survives JSON encoding.
func percent(demand, total float64) float64 {
	if total <= 0 {
		if demand <= 0 {
			return 0
		}
		return demand * 100
	}
	return demand / total * 100
}
