package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Task metrics
	TasksTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "burrow_tasks_total",
			Help: "Total number of tasks by status",
		},
		[]string{"status"},
	)

	TasksScheduled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "burrow_tasks_scheduled_total",
			Help: "Total number of tasks handed to workers",
		},
	)

	TasksRetried = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "burrow_tasks_retried_total",
			Help: "Total number of failure-driven requeues",
		},
	)

	TasksFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "burrow_tasks_failed_total",
			Help: "Total number of tasks that exhausted their retry budget",
		},
	)

	SchedulingLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "burrow_scheduling_latency_seconds",
			Help:    "Time taken by one selection decision in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	TaskExecutionTime = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "burrow_task_execution_seconds",
			Help:    "Reported task execution time in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 14),
		},
		[]string{"type"},
	)

	// Resource pool metrics
	PoolCapacity = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "burrow_pool_capacity",
			Help: "Total pool capacity by resource dimension",
		},
		[]string{"resource"},
	)

	PoolUsed = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "burrow_pool_used",
			Help: "Reserved pool capacity by resource dimension",
		},
		[]string{"resource"},
	)

	// Forecast metrics
	ForecastUtilization = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "burrow_forecast_utilization_percent",
			Help: "Projected resource utilization over the forecast window; may exceed 100",
		},
		[]string{"resource"},
	)
)

func init() {
	prometheus.MustRegister(TasksTotal)
	prometheus.MustRegister(TasksScheduled)
	prometheus.MustRegister(TasksRetried)
	prometheus.MustRegister(TasksFailed)
	prometheus.MustRegister(SchedulingLatency)
	prometheus.MustRegister(TaskExecutionTime)
	prometheus.MustRegister(PoolCapacity)
	prometheus.MustRegister(PoolUsed)
	prometheus.MustRegister(ForecastUtilization)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
