package types

import (
	"fmt"
	"time"
)

// Task represents a single schedulable unit of work
type Task struct {
	ID          string
	Name        string
	Description string
	Type        TaskType
	Priority    Priority
	Status      TaskStatus

	// Resources are immutable once the task has been queued
	Resources Resources

	// EstimatedDurationMS is advisory; used by demand forecasting only
	EstimatedDurationMS int64

	MaxRetries int
	RetryCount int

	// NotBefore gates re-selection of a retrying task. Zero means
	// eligible immediately.
	NotBefore time.Time

	CreatedBy string
	CreatedAt time.Time

	StartedAt       time.Time
	FinishedAt      time.Time
	ExecutionTimeMS int64
	Error           string
}

// DefaultMaxRetries is applied when a task is built without an explicit
// retry budget.
const DefaultMaxRetries = 3

// NewTask builds a task with the stock defaults. Callers that need a
// different retry budget (including zero, meaning fail on first error)
// set MaxRetries explicitly afterwards.
func NewTask(name string, taskType TaskType, priority Priority, resources Resources) *Task {
	return &Task{
		Name:       name,
		Type:       taskType,
		Priority:   priority,
		Resources:  resources,
		Status:     TaskPending,
		MaxRetries: DefaultMaxRetries,
	}
}

// Validate checks the fields a caller controls at submission time.
func (t *Task) Validate() error {
	if !t.Priority.Valid() {
		return fmt.Errorf("invalid priority: %q", t.Priority)
	}
	if err := t.Resources.Validate(); err != nil {
		return err
	}
	if t.EstimatedDurationMS < 0 {
		return fmt.Errorf("estimated duration must not be negative: %d", t.EstimatedDurationMS)
	}
	if t.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative: %d", t.MaxRetries)
	}
	return nil
}

// TaskType tags a task for filtering and display. It carries no
// scheduling semantics.
type TaskType string

const (
	TaskTypeETL          TaskType = "etl"
	TaskTypeML           TaskType = "ml"
	TaskTypeDataQuality  TaskType = "data_quality"
	TaskTypeNotification TaskType = "notification"
	TaskTypeReport       TaskType = "report"
)

// Priority orders tasks for selection: critical > high > normal > low
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityNormal   Priority = "normal"
	PriorityLow      Priority = "low"
)

// Rank returns the numeric ordering of a priority; higher runs first.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 3
	case PriorityHigh:
		return 2
	case PriorityNormal:
		return 1
	case PriorityLow:
		return 0
	}
	return -1
}

// Valid reports whether p is one of the defined priorities
func (p Priority) Valid() bool {
	return p.Rank() >= 0
}

// TaskStatus represents the lifecycle state of a task
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskQueued    TaskStatus = "queued"
	TaskRunning   TaskStatus = "running"
	TaskRetrying  TaskStatus = "retrying"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
	TaskCancelled TaskStatus = "cancelled"
	TaskSkipped   TaskStatus = "skipped"
)

// Terminal reports whether no further transition can occur from s.
func (s TaskStatus) Terminal() bool {
	switch s {
	case TaskCompleted, TaskFailed, TaskCancelled, TaskSkipped:
		return true
	}
	return false
}

// Schedulable statuses are the ones selectNext considers.
var Schedulable = []TaskStatus{TaskPending, TaskQueued, TaskRetrying}

// Resources describes compute capacity in three independent dimensions.
// The same shape is used for task requirements, pool totals and pool usage.
type Resources struct {
	CPUCores float64
	MemoryMB int64
	GPUCount int
}

// Validate checks a task resource requirement: CPU and memory must be
// positive, GPU may be zero.
func (r Resources) Validate() error {
	if r.CPUCores <= 0 {
		return fmt.Errorf("cpu cores must be positive: %g", r.CPUCores)
	}
	if r.MemoryMB <= 0 {
		return fmt.Errorf("memory must be positive: %d MB", r.MemoryMB)
	}
	if r.GPUCount < 0 {
		return fmt.Errorf("gpu count must not be negative: %d", r.GPUCount)
	}
	return nil
}

// Add returns r + other component-wise
func (r Resources) Add(other Resources) Resources {
	return Resources{
		CPUCores: r.CPUCores + other.CPUCores,
		MemoryMB: r.MemoryMB + other.MemoryMB,
		GPUCount: r.GPUCount + other.GPUCount,
	}
}

// Sub returns r - other component-wise
func (r Resources) Sub(other Resources) Resources {
	return Resources{
		CPUCores: r.CPUCores - other.CPUCores,
		MemoryMB: r.MemoryMB - other.MemoryMB,
		GPUCount: r.GPUCount - other.GPUCount,
	}
}

// Fits reports whether r fits within capacity component-wise. All three
// dimensions are checked independently; there is no weighted fallback.
func (r Resources) Fits(capacity Resources) bool {
	return r.CPUCores <= capacity.CPUCores &&
		r.MemoryMB <= capacity.MemoryMB &&
		r.GPUCount <= capacity.GPUCount
}

// NonNegative reports whether no component of r is below zero
func (r Resources) NonNegative() bool {
	return r.CPUCores >= 0 && r.MemoryMB >= 0 && r.GPUCount >= 0
}

func (r Resources) String() string {
	return fmt.Sprintf("cpu=%g mem=%dMB gpu=%d", r.CPUCores, r.MemoryMB, r.GPUCount)
}

// Utilization holds per-dimension usage percentages. Values over 100 are
// meaningful for forecasts and are never clamped here.
type Utilization struct {
	CPUPercent    float64
	MemoryPercent float64
	GPUPercent    float64
}

// DemandForecast is a derived projection of resource pressure over a
// future window. It is recomputed on demand and never persisted.
type DemandForecast struct {
	WindowMinutes   int
	GeneratedAt     time.Time
	PredictedTasks  int
	ResourceDemand  Resources
	Utilization     Utilization
	Recommendations []string
}
