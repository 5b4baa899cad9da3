package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/scheduler"
	"github.com/cuemby/burrow/pkg/types"
)

// Executor runs a task's payload. Implementations decide what execution
// means (process, container, remote call); the pool only cares about the
// returned error.
type Executor interface {
	Execute(ctx context.Context, task *types.Task) error
}

// Pool executes dispatched tasks on a fixed set of workers and reports
// outcomes back to the scheduler. It implements scheduler.Dispatcher.
type Pool struct {
	scheduler *scheduler.Scheduler
	executor  Executor
	count     int
	logger    zerolog.Logger

	taskCh chan *types.Task
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPool creates a pool of count workers executing through exec.
func NewPool(sched *scheduler.Scheduler, exec Executor, count int) *Pool {
	if count <= 0 {
		count = 1
	}
	return &Pool{
		scheduler: sched,
		executor:  exec,
		count:     count,
		logger:    log.WithComponent("worker"),
		taskCh:    make(chan *types.Task),
	}
}

// Start launches the workers
func (p *Pool) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	for i := 0; i < p.count; i++ {
		p.wg.Add(1)
		go p.runWorker(ctx)
	}
}

// Stop cancels in-flight executions and waits for the workers to exit.
// Tasks caught mid-execution are reported as failures and follow the
// normal retry path on the next run.
func (p *Pool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

// Dispatch hands a running task to the pool. Blocks until a worker is
// free; the task already holds its resources, so waiting here does not
// distort accounting.
func (p *Pool) Dispatch(task *types.Task) {
	p.taskCh <- task
}

func (p *Pool) runWorker(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case task := <-p.taskCh:
			p.execute(ctx, task)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Pool) execute(ctx context.Context, task *types.Task) {
	start := time.Now()
	err := p.executor.Execute(ctx, task)
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		p.logger.Warn().
			Str("task_id", task.ID).
			Err(err).
			Int64("execution_ms", elapsed).
			Msg("Task execution failed")
	}

	if cerr := p.scheduler.Complete(task.ID, err == nil, elapsed); cerr != nil {
		// Completion against a task that was cancelled mid-flight is the
		// expected reason to land here
		p.logger.Debug().
			Str("task_id", task.ID).
			Err(cerr).
			Msg("Completion not recorded")
	}
}
