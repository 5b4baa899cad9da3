package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cuemby/burrow/pkg/config"
	"github.com/cuemby/burrow/pkg/events"
	"github.com/cuemby/burrow/pkg/forecast"
	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/resource"
	"github.com/cuemby/burrow/pkg/retry"
	"github.com/cuemby/burrow/pkg/scheduler"
	"github.com/cuemby/burrow/pkg/store"
	"github.com/cuemby/burrow/pkg/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Burrow scheduler daemon",
	Long: `Run the scheduler, worker pool, forecaster and metrics endpoint as a
single process. Task submission transport is intentionally not part of
the daemon; embed the scheduler or front it with your own API layer.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("config", "c", "", "Path to YAML config (defaults apply when omitted)")
}

func runServe(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	log.Init(log.Config{
		Level:      log.Level(cfg.Log.Level),
		JSONOutput: cfg.Log.JSON,
	})
	logger := log.WithComponent("serve")
	metrics.SetVersion(Version)

	// Store
	var st store.Store
	switch cfg.Store.Backend {
	case "bolt":
		if err := os.MkdirAll(cfg.Store.DataDir, 0700); err != nil {
			return fmt.Errorf("failed to create data dir: %w", err)
		}
		boltStore, err := store.NewBoltStore(cfg.Store.DataDir)
		if err != nil {
			return err
		}
		st = boltStore
	default:
		st = store.NewMemoryStore()
	}
	defer st.Close()
	metrics.SetComponentHealth("store", true, cfg.Store.Backend)

	// Resource pool
	capacity := cfg.Pool.Resources()
	if cfg.Pool.Auto {
		detected, err := resource.Detect()
		if err != nil {
			return fmt.Errorf("capacity auto-detection failed: %w", err)
		}
		detected.GPUCount = cfg.Pool.GPUCount
		capacity = detected
	}
	pool, err := resource.NewPool(capacity)
	if err != nil {
		return err
	}
	logger.Info().Str("capacity", capacity.String()).Msg("Resource pool initialized")
	metrics.SetComponentHealth("pool", true, capacity.String())

	// Retry policy
	policy, err := retry.NewPolicy(
		cfg.Retry.MaxRetries,
		cfg.Retry.InitialDelay(),
		cfg.Retry.MaxDelay(),
		cfg.Retry.ExponentialBase,
		cfg.Retry.Jitter,
	)
	if err != nil {
		return err
	}

	// Events
	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	// Scheduler + workers
	sched := scheduler.NewScheduler(st, pool, policy,
		scheduler.WithPollInterval(time.Duration(cfg.Scheduler.PollIntervalMS)*time.Millisecond),
		scheduler.WithBroker(broker),
	)

	workers := worker.NewPool(sched, &worker.SleepExecutor{Scale: 1}, cfg.Scheduler.Workers)
	workers.Start()
	defer workers.Stop()

	sched.Start(workers)
	defer sched.Stop()
	metrics.SetComponentHealth("scheduler", true, "")

	// Observability
	collector := metrics.NewCollector(st, pool, time.Duration(cfg.Metrics.CollectIntervalS)*time.Second)
	collector.Start()
	defer collector.Stop()

	forecaster := forecast.NewForecaster(st, pool, cfg.Forecast.ThresholdPercent)
	forecaster.StartRefresh(cfg.Forecast.WindowMinutes, time.Duration(cfg.Forecast.RefreshIntervalS)*time.Second)
	defer forecaster.Stop()

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/health", metrics.HealthHandler())
	mux.HandleFunc("/healthz", metrics.LivenessHandler())

	httpErrCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Metrics.ListenAddr).Msg("Metrics endpoint listening")
		httpErrCh <- http.ListenAndServe(cfg.Metrics.ListenAddr, mux)
	}()

	logger.Info().Msg("Burrow is running; press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("Shutting down")
		return nil
	case err := <-httpErrCh:
		return fmt.Errorf("metrics endpoint failed: %w", err)
	}
}
