/*
Package types defines the core data structures used throughout Burrow.

This package contains the fundamental types of Burrow's domain model: tasks,
priorities, statuses, resource shapes and demand forecasts. All other
packages build on these types for scheduling decisions, resource accounting
and state management.

# Core Types

Task lifecycle:
  - Task: A schedulable unit of work with priority, resource requirement
    and retry budget
  - TaskStatus: pending, queued, running, retrying, completed, failed,
    cancelled, skipped
  - Priority: critical > high > normal > low, totally ordered via Rank()
  - TaskType: Display/filter tag (etl, ml, data_quality, notification,
    report) with no scheduling semantics

Resource accounting:
  - Resources: CPU cores, memory (MB) and GPU units, used for both task
    requirements and pool capacity
  - Utilization: Per-dimension usage percentages

Capacity planning:
  - DemandForecast: Derived projection of resource pressure over a future
    window; recomputed on demand, never persisted

# Task State Machine

	pending → queued → running → completed
	                       │
	                       ├→ failed       (retry budget exhausted)
	                       └→ retrying → queued  (recoverable failure)

	pending|queued → skipped   (manual skip)
	any non-terminal → cancelled

Terminal states are completed, failed, cancelled and skipped; use
TaskStatus.Terminal() rather than enumerating them at call sites.

# Invariants

  - 0 <= RetryCount <= MaxRetries at every observable point
  - Resources of a queued task never change
  - Available capacity is always derived (total - used), never stored

# Usage Example

	task := &types.Task{
		Name:     "nightly-etl",
		Type:     types.TaskTypeETL,
		Priority: types.PriorityHigh,
		Resources: types.Resources{
			CPUCores: 2,
			MemoryMB: 4096,
		},
		EstimatedDurationMS: 900000,
	}
	if err := task.Validate(); err != nil {
		// reject before submission
	}

# See Also

  - pkg/store - Task persistence and lifecycle transitions
  - pkg/scheduler - Selection algorithm and state machine enforcement
  - pkg/resource - Capacity accounting over the Resources shape
*/
package types
