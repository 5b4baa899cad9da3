package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cuemby/burrow/pkg/types"
)

// Config is the daemon configuration. The scheduler core never reads
// files or the environment; everything here is resolved by the command
// layer and passed in at construction.
type Config struct {
	Log       LogConfig       `yaml:"log"`
	Store     StoreConfig     `yaml:"store"`
	Pool      PoolConfig      `yaml:"pool"`
	Retry     RetryConfig     `yaml:"retry"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Forecast  ForecastConfig  `yaml:"forecast"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type StoreConfig struct {
	// Backend is "memory" or "bolt"
	Backend string `yaml:"backend"`
	DataDir string `yaml:"data_dir"`
}

type PoolConfig struct {
	// Auto detects host CPU and memory capacity; GPU stays at the
	// configured value
	Auto     bool    `yaml:"auto"`
	CPUCores float64 `yaml:"cpu_cores"`
	MemoryMB int64   `yaml:"memory_mb"`
	GPUCount int     `yaml:"gpu_count"`
}

// Resources returns the configured capacity as the shared resource shape
func (p PoolConfig) Resources() types.Resources {
	return types.Resources{
		CPUCores: p.CPUCores,
		MemoryMB: p.MemoryMB,
		GPUCount: p.GPUCount,
	}
}

type RetryConfig struct {
	MaxRetries      int     `yaml:"max_retries"`
	InitialDelayS   float64 `yaml:"initial_delay_s"`
	MaxDelayS       float64 `yaml:"max_delay_s"`
	ExponentialBase float64 `yaml:"exponential_base"`
	Jitter          bool    `yaml:"jitter"`
}

// InitialDelay returns the initial delay as a duration
func (r RetryConfig) InitialDelay() time.Duration {
	return time.Duration(r.InitialDelayS * float64(time.Second))
}

// MaxDelay returns the delay cap as a duration
func (r RetryConfig) MaxDelay() time.Duration {
	return time.Duration(r.MaxDelayS * float64(time.Second))
}

type SchedulerConfig struct {
	PollIntervalMS int `yaml:"poll_interval_ms"`
	Workers        int `yaml:"workers"`
}

type MetricsConfig struct {
	ListenAddr       string `yaml:"listen_addr"`
	CollectIntervalS int    `yaml:"collect_interval_s"`
}

type ForecastConfig struct {
	WindowMinutes    int     `yaml:"window_minutes"`
	ThresholdPercent float64 `yaml:"threshold_percent"`
	RefreshIntervalS int     `yaml:"refresh_interval_s"`
}

// Default returns the stock configuration: memory store, auto-detected
// capacity, the default retry policy and a 1s scheduling sweep.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Store: StoreConfig{
			Backend: "memory",
			DataDir: "/var/lib/burrow",
		},
		Pool: PoolConfig{Auto: true},
		Retry: RetryConfig{
			MaxRetries:      types.DefaultMaxRetries,
			InitialDelayS:   2,
			MaxDelayS:       60,
			ExponentialBase: 2,
			Jitter:          true,
		},
		Scheduler: SchedulerConfig{
			PollIntervalMS: 1000,
			Workers:        4,
		},
		Metrics: MetricsConfig{
			ListenAddr:       ":9480",
			CollectIntervalS: 15,
		},
		Forecast: ForecastConfig{
			WindowMinutes:    60,
			ThresholdPercent: 90,
			RefreshIntervalS: 30,
		},
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the daemon could not run with.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "memory", "bolt":
	default:
		return fmt.Errorf("unknown store backend: %q", c.Store.Backend)
	}
	if c.Store.Backend == "bolt" && c.Store.DataDir == "" {
		return fmt.Errorf("bolt store requires data_dir")
	}
	if !c.Pool.Auto && !c.Pool.Resources().NonNegative() {
		return fmt.Errorf("pool capacity must not be negative")
	}
	if c.Retry.ExponentialBase <= 1 {
		return fmt.Errorf("retry exponential_base must be greater than 1: %g", c.Retry.ExponentialBase)
	}
	if c.Scheduler.PollIntervalMS <= 0 {
		return fmt.Errorf("scheduler poll_interval_ms must be positive")
	}
	if c.Scheduler.Workers <= 0 {
		return fmt.Errorf("scheduler workers must be positive")
	}
	if c.Forecast.WindowMinutes <= 0 {
		return fmt.Errorf("forecast window_minutes must be positive")
	}
	return nil
}
