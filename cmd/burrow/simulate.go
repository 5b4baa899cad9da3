package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/cuemby/burrow/pkg/config"
	"github.com/cuemby/burrow/pkg/forecast"
	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/resource"
	"github.com/cuemby/burrow/pkg/retry"
	"github.com/cuemby/burrow/pkg/scheduler"
	"github.com/cuemby/burrow/pkg/store"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/cuemby/burrow/pkg/worker"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a task workload through the scheduler at accelerated speed",
	Long: `Load a YAML workload, run every task through the scheduler with a
simulated executor and print the outcome. Useful for validating
priorities, capacity sizing and retry behavior before deployment.

Example workload:

  tasks:
    - name: nightly-etl
      type: etl
      priority: high
      cpu_cores: 2
      memory_mb: 4096
      estimated_duration_ms: 60000`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().StringP("file", "f", "", "Workload YAML file (required)")
	simulateCmd.Flags().Float64("cpu", 8, "Pool CPU cores")
	simulateCmd.Flags().Int64("memory", 16384, "Pool memory (MB)")
	simulateCmd.Flags().Int("gpu", 0, "Pool GPU units")
	simulateCmd.Flags().Int("workers", 4, "Worker count")
	simulateCmd.Flags().Float64("fail-rate", 0, "Probability that a task attempt fails (0..1)")
	simulateCmd.Flags().Duration("timeout", 2*time.Minute, "Give up after this long")
	_ = simulateCmd.MarkFlagRequired("file")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")
	cpu, _ := cmd.Flags().GetFloat64("cpu")
	memory, _ := cmd.Flags().GetInt64("memory")
	gpu, _ := cmd.Flags().GetInt("gpu")
	workers, _ := cmd.Flags().GetInt("workers")
	failRate, _ := cmd.Flags().GetFloat64("fail-rate")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	log.Init(log.Config{Level: log.WarnLevel})

	workload, err := config.LoadWorkload(file)
	if err != nil {
		return err
	}

	st := store.NewMemoryStore()
	pool, err := resource.NewPool(types.Resources{CPUCores: cpu, MemoryMB: memory, GPUCount: gpu})
	if err != nil {
		return err
	}

	// Short, deterministic-shape backoff so simulations finish quickly
	policy, err := retry.NewPolicy(types.DefaultMaxRetries, 50*time.Millisecond, time.Second, 2, false)
	if err != nil {
		return err
	}

	sched := scheduler.NewScheduler(st, pool, policy,
		scheduler.WithPollInterval(20*time.Millisecond))

	executor := &worker.SleepExecutor{
		Scale:    0.001, // 1000x speed
		MaxSleep: 100 * time.Millisecond,
	}
	if failRate > 0 {
		executor.ShouldFail = func(*types.Task) bool { return rand.Float64() < failRate }
	}

	workerPool := worker.NewPool(sched, executor, workers)
	workerPool.Start()
	defer workerPool.Stop()

	for _, wt := range workload.Tasks {
		if err := sched.Submit(wt.Task()); err != nil {
			return fmt.Errorf("failed to submit %q: %w", wt.Name, err)
		}
	}

	// Forecast before anything runs
	fc, err := forecast.NewForecaster(st, pool, 0).Forecast(60)
	if err != nil {
		return err
	}
	fmt.Printf("Workload: %d tasks, projected demand %s (cpu %.0f%%, mem %.0f%%)\n\n",
		fc.PredictedTasks, fc.ResourceDemand, fc.Utilization.CPUPercent, fc.Utilization.MemoryPercent)

	sched.Start(workerPool)
	defer sched.Stop()

	deadline := time.Now().Add(timeout)
	for {
		tasks, err := st.List(store.Filter{})
		if err != nil {
			return err
		}
		remaining := 0
		for _, t := range tasks {
			if !t.Status.Terminal() {
				remaining++
			}
		}
		if remaining == 0 {
			printSummary(tasks)
			return nil
		}
		if time.Now().After(deadline) {
			printSummary(tasks)
			return fmt.Errorf("simulation timed out with %d tasks unfinished", remaining)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func printSummary(tasks []*types.Task) {
	counts := make(map[types.TaskStatus]int)
	for _, t := range tasks {
		counts[t.Status]++
	}

	fmt.Printf("%-28s %-10s %-10s %-8s %s\n", "TASK", "PRIORITY", "STATUS", "RETRIES", "EXEC(MS)")
	for _, t := range tasks {
		fmt.Printf("%-28s %-10s %-10s %-8d %d\n",
			t.Name, t.Priority, t.Status, t.RetryCount, t.ExecutionTimeMS)
	}
	fmt.Printf("\ncompleted=%d failed=%d cancelled=%d skipped=%d\n",
		counts[types.TaskCompleted], counts[types.TaskFailed],
		counts[types.TaskCancelled], counts[types.TaskSkipped])
}
