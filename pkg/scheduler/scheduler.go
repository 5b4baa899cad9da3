package scheduler

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cuemby/burrow/pkg/events"
	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/resource"
	"github.com/cuemby/burrow/pkg/retry"
	"github.com/cuemby/burrow/pkg/store"
	"github.com/cuemby/burrow/pkg/types"
)

// selectRetries bounds how often one SelectNext call re-runs its
// decision after losing a stale-state race.
const selectRetries = 3

// defaultPollInterval paces the run loop between selection sweeps
const defaultPollInterval = time.Second

// Dispatcher receives tasks the scheduler has transitioned to running.
// Implementations execute the task and eventually call Complete.
type Dispatcher interface {
	Dispatch(task *types.Task)
}

// Scheduler selects the next eligible task by priority, resource fit and
// readiness, and drives all task state transitions after submission.
// One mutex covers the select-reserve-transition critical section, so
// concurrent selection can never jointly over-commit the pool.
type Scheduler struct {
	store  store.Store
	pool   *resource.Pool
	policy retry.Policy
	broker *events.Broker
	logger zerolog.Logger

	pollInterval time.Duration

	// now is the clock; replaced in tests
	now func() time.Time

	mu     sync.Mutex
	stopCh chan struct{}
	doneCh chan struct{}
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithPollInterval sets the run loop sweep interval
func WithPollInterval(d time.Duration) Option {
	return func(s *Scheduler) { s.pollInterval = d }
}

// WithClock replaces the scheduler's clock, for tests
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithBroker attaches an event broker for lifecycle events
func WithBroker(b *events.Broker) Option {
	return func(s *Scheduler) { s.broker = b }
}

// NewScheduler creates a scheduler over the given store and pool.
func NewScheduler(st store.Store, pool *resource.Pool, policy retry.Policy, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:        st,
		pool:         pool,
		policy:       policy,
		logger:       log.WithComponent("scheduler"),
		pollInterval: defaultPollInterval,
		now:          time.Now,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates a task, fills in defaults and inserts it in pending
// state. The task keeps the caller's ID when set; otherwise one is
// assigned.
func (s *Scheduler) Submit(task *types.Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if task.Priority == "" {
		task.Priority = types.PriorityNormal
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = s.now()
	}
	if err := task.Validate(); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}

	if err := s.store.Submit(task); err != nil {
		return err
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("priority", string(task.Priority)).
		Str("resources", task.Resources.String()).
		Msg("Task submitted")
	s.publish(events.EventTaskSubmitted, task, "")
	return nil
}

// SelectNext picks the highest-priority eligible task that fits current
// resource availability, reserves its resources and transitions it to
// running. It returns (nil, nil) when nothing is runnable; it never
// blocks waiting for capacity.
func (s *Scheduler) SelectNext() (*types.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.SchedulingLatency)

	for attempt := 0; attempt < selectRetries; attempt++ {
		task, raced, err := s.trySelect()
		if err != nil {
			return nil, err
		}
		if !raced {
			return task, nil
		}
		// Lost a stale-state race; re-run the decision
	}
	return nil, nil
}

// trySelect runs one selection pass. raced reports that the chosen task
// changed state underneath us and the decision should be re-run.
func (s *Scheduler) trySelect() (task *types.Task, raced bool, err error) {
	candidates, err := s.store.List(store.Filter{Status: types.Schedulable})
	if err != nil {
		return nil, false, fmt.Errorf("failed to list schedulable tasks: %w", err)
	}

	now := s.now()
	eligible := candidates[:0]
	for _, c := range candidates {
		if c.NotBefore.After(now) {
			continue
		}
		eligible = append(eligible, c)
	}

	// Priority descending, then oldest first. Stable within a band, so
	// a continuous stream of critical tasks can still starve low ones;
	// there is deliberately no aging mechanism.
	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].Priority.Rank() != eligible[j].Priority.Rank() {
			return eligible[i].Priority.Rank() > eligible[j].Priority.Rank()
		}
		return eligible[i].CreatedAt.Before(eligible[j].CreatedAt)
	})

	for _, c := range eligible {
		if !s.pool.CanAdmit(c.Resources) {
			s.markQueued(c)
			continue
		}

		if err := s.pool.Reserve(c.Resources); err != nil {
			// CanAdmit held under our own lock; a failure here means the
			// pool is shared with a writer outside this scheduler.
			return nil, false, err
		}

		running, err := s.store.Transition(c.ID, types.Schedulable, types.TaskRunning, nil)
		if err != nil {
			if relErr := s.pool.Release(c.Resources); relErr != nil {
				return nil, false, relErr
			}
			if errors.Is(err, store.ErrInvalidTransition) {
				return nil, true, nil
			}
			return nil, false, err
		}

		metrics.TasksScheduled.Inc()
		s.logger.Info().
			Str("task_id", running.ID).
			Str("priority", string(running.Priority)).
			Str("resources", running.Resources.String()).
			Msg("Task selected")
		s.publish(events.EventTaskStarted, running, "")
		return running, false, nil
	}

	return nil, false, nil
}

// markQueued flags an eligible but inadmissible task as seen by the
// scheduler and awaiting resources. Best effort; a lost race here just
// means the task moved on.
func (s *Scheduler) markQueued(task *types.Task) {
	if task.Status == types.TaskQueued {
		return
	}
	queued, err := s.store.Transition(task.ID,
		[]types.TaskStatus{types.TaskPending, types.TaskRetrying},
		types.TaskQueued, nil)
	if err != nil {
		return
	}
	s.publish(events.EventTaskQueued, queued, "awaiting resources")
}

// Complete records the outcome of a running task. Resources are released
// unconditionally; a failed task is requeued per the retry policy or
// moved to failed once its budget is spent.
func (s *Scheduler) Complete(taskID string, success bool, executionTimeMS int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.store.Get(taskID)
	if err != nil {
		return err
	}
	if task.Status != types.TaskRunning {
		return fmt.Errorf("%w: task %s is %s, not running", store.ErrInvalidTransition, taskID, task.Status)
	}

	// A task never holds resources past its terminal or retrying state
	if err := s.pool.Release(task.Resources); err != nil {
		return err
	}

	up := &store.Update{ExecutionTimeMS: executionTimeMS}
	metrics.TaskExecutionTime.WithLabelValues(string(task.Type)).
		Observe(float64(executionTimeMS) / 1000)

	if success {
		completed, err := s.store.Transition(taskID,
			[]types.TaskStatus{types.TaskRunning}, types.TaskCompleted, up)
		if err != nil {
			return err
		}
		s.logger.Info().
			Str("task_id", taskID).
			Int64("execution_ms", executionTimeMS).
			Msg("Task completed")
		s.publish(events.EventTaskCompleted, completed, "")
		return nil
	}

	if s.policy.ShouldRetry(task) {
		delay := s.policy.NextDelay(task.RetryCount)
		up.NotBefore = s.now().Add(delay)
		up.Error = "execution failed"

		retrying, err := s.store.Transition(taskID,
			[]types.TaskStatus{types.TaskRunning}, types.TaskRetrying, up)
		if err != nil {
			return err
		}
		metrics.TasksRetried.Inc()
		s.logger.Warn().
			Str("task_id", taskID).
			Int("retry_count", retrying.RetryCount).
			Int("max_retries", retrying.MaxRetries).
			Dur("delay", delay).
			Msg("Task failed, retry scheduled")
		s.publish(events.EventTaskRetrying, retrying, "")
		return nil
	}

	up.Error = "execution failed, retry budget exhausted"
	failed, err := s.store.Transition(taskID,
		[]types.TaskStatus{types.TaskRunning}, types.TaskFailed, up)
	if err != nil {
		return err
	}
	metrics.TasksFailed.Inc()
	s.logger.Error().
		Str("task_id", taskID).
		Int("retry_count", failed.RetryCount).
		Msg("Task failed permanently")
	s.publish(events.EventTaskFailed, failed, "")
	return nil
}

// Cancel moves a task from any non-terminal state to cancelled,
// releasing its resources when it was running. Cancelling an
// already-cancelled task is a no-op.
func (s *Scheduler) Cancel(taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.store.Get(taskID)
	if err != nil {
		return err
	}
	if task.Status == types.TaskCancelled {
		return nil
	}

	wasRunning := task.Status == types.TaskRunning
	cancelled, err := s.store.Transition(taskID,
		[]types.TaskStatus{
			types.TaskPending, types.TaskQueued,
			types.TaskRunning, types.TaskRetrying,
		},
		types.TaskCancelled, nil)
	if err != nil {
		return err
	}

	if wasRunning {
		if err := s.pool.Release(task.Resources); err != nil {
			return err
		}
	}

	s.logger.Info().Str("task_id", taskID).Msg("Task cancelled")
	s.publish(events.EventTaskCancelled, cancelled, "")
	return nil
}

// Skip moves a task that has not started to skipped, on user action.
func (s *Scheduler) Skip(taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	skipped, err := s.store.Transition(taskID,
		[]types.TaskStatus{types.TaskPending, types.TaskQueued},
		types.TaskSkipped, nil)
	if err != nil {
		return err
	}

	s.logger.Info().Str("task_id", taskID).Msg("Task skipped")
	s.publish(events.EventTaskSkipped, skipped, "")
	return nil
}

// Start begins the run loop, sweeping for runnable tasks on the poll
// interval and handing them to the dispatcher.
func (s *Scheduler) Start(d Dispatcher) {
	go s.run(d)
}

// Stop stops the run loop and waits for it to exit
func (s *Scheduler) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

func (s *Scheduler) run(d Dispatcher) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(d)
		case <-s.stopCh:
			return
		}
	}
}

// sweep drains every currently runnable task. It stops when nothing
// fits; freed capacity is picked up on the next tick.
func (s *Scheduler) sweep(d Dispatcher) {
	for {
		task, err := s.SelectNext()
		if err != nil {
			s.logger.Error().Err(err).Msg("Scheduling sweep aborted")
			return
		}
		if task == nil {
			return
		}
		d.Dispatch(task)
	}
}

func (s *Scheduler) publish(eventType events.EventType, task *types.Task, message string) {
	if s.broker == nil {
		return
	}
	s.broker.PublishTask(eventType, task, message)
}
