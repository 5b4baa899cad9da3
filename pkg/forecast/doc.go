/*
Package forecast projects resource demand from the task backlog for
capacity-planning display.

A Forecaster reads tasks in pending, queued or retrying state and sums
their declared resource requirements over a future window. Tasks whose
duration estimate exceeds the window are excluded; tasks without an
estimate are assumed to start immediately and occupy the whole window,
the conservative upper bound.

The result is a DemandForecast: projected demand, per-dimension
utilization percentages against total pool capacity, and free-text
recommendations when a dimension exceeds the advisory threshold
(90% by default). Utilization is deliberately not capped at 100; an
over-subscribed window is exactly what capacity planners need to see.

Forecasts are derived state: recomputed on request or on the refresh
interval, never persisted, and never consulted by the scheduler itself.

	f := forecast.NewForecaster(st, pool, 90)
	fc, err := f.Forecast(60)
	// fc.ResourceDemand, fc.Utilization, fc.Recommendations

StartRefresh feeds the burrow_forecast_utilization_percent gauges for
dashboards.
*/
package forecast
