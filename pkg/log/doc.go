/*
Package log provides structured logging for Burrow components.

Built on zerolog for zero-allocation structured output. Components obtain
child loggers with a component field so every line can be attributed:

	logger := log.WithComponent("scheduler")
	logger.Info().Str("task_id", task.ID).Msg("Task selected")

# Initialization

Call Init once at process start, before any component logs:

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,  // console output when false
	})

Tests that exercise logging components should call log.Discard() to keep
output quiet.

# Conventions

  - component: which subsystem emitted the line (scheduler, store, worker,
    forecast)
  - task_id / priority: task identity, via WithTask
  - Err(err) for error values, never string formatting
*/
package log
