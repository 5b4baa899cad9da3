/*
Package metrics exposes Prometheus metrics and health endpoints for
Burrow.

# Metrics

Task flow:
  - burrow_tasks_total{status}: gauge of tasks by lifecycle status
  - burrow_tasks_scheduled_total: tasks handed to workers
  - burrow_tasks_retried_total: failure-driven requeues
  - burrow_tasks_failed_total: tasks that exhausted their retry budget
  - burrow_scheduling_latency_seconds: selection decision latency
  - burrow_task_execution_seconds{type}: reported execution times

Capacity:
  - burrow_pool_capacity{resource} / burrow_pool_used{resource}
  - burrow_forecast_utilization_percent{resource}: projected utilization,
    deliberately unclamped, so values over 100 alert on over-subscription

Task and pool gauges are refreshed by Collector on a fixed interval;
counters and histograms are updated inline by the scheduler.

# HTTP Endpoints

	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/health", metrics.HealthHandler())
	mux.HandleFunc("/healthz", metrics.LivenessHandler())

Components report into the health registry with SetComponentHealth; the
process is unhealthy when any component is.
*/
package metrics
