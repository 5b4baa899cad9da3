/*
Package config defines the YAML configuration consumed by the burrow
command layer.

The scheduler core takes all its parameters (pool capacity, retry
policy, poll interval) at construction time and never touches files or
the environment itself; this package is where the daemon resolves those
values from disk.

	cfg, err := config.Load("/etc/burrow/burrow.yaml")

Unset fields keep the defaults from Default(): in-memory store,
auto-detected host capacity, 3 retries with 2s..60s full-jitter backoff,
four workers on a 1s sweep.

A minimal file:

	store:
	  backend: bolt
	  data_dir: /var/lib/burrow
	pool:
	  auto: false
	  cpu_cores: 16
	  memory_mb: 65536
	  gpu_count: 2
	retry:
	  initial_delay_s: 2
	  max_delay_s: 60
	  exponential_base: 2
	  jitter: true

Workload files (LoadWorkload) describe task batches for the simulate
command with the same resource and retry fields per task.
*/
package config
