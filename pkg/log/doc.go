/*
Package log provides structured logging for the healthcheck engine using zerolog.

The engine logs through a single global zerolog.Logger, configured once via
Init, with component- and container-scoped child loggers for the recurring
fields (component, container_id) that show up across pkg/health, pkg/monitor
and cmd/conmon-healthd.

# Usage

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		Output:     os.Stdout,
	})

	log.Info("monitor starting")

	ctrLog := log.WithContainerID("abc123")
	ctrLog.Warn().Err(err).Msg("probe execution failed")

	registryLog := log.WithComponent("registry")
	registryLog.Info().Int("active_timers", n).Msg("timer registered")

A package-level Init(Config{Level: InfoLevel, Output: os.Stderr}) runs
automatically on import
so Logger is always valid, even in tests that never call Init explicitly;
production entrypoints (cmd/conmon-healthd) call Init again with their own
configured level/format before starting anything.
*/
package log
