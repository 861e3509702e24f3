/*
Package health implements the container healthcheck engine: parsing OCI
healthcheck annotations, running a per-container probe scheduler and status
state machine, and reporting transitions to a parent engine over a framed
sync channel.

# Architecture

	┌──────────────────────────────────────────────────────────────┐
	│                 Annotation / Config                          │
	│  DiscoverFromBundle(bundlePath) -> ParseAnnotation(json) ->   │
	│  Config{Test, IntervalS, TimeoutS, StartPeriodS, Retries}     │
	└───────────────────────────┬────────────────────────────────────┘
	                            ▼
	┌──────────────────────────────────────────────────────────────┐
	│                         Timer                                 │
	│  NewTimer(containerID, config, runtimePath, reporter)         │
	│  Start() -> worker goroutine, 1s ticker                       │
	│  tick(): grace bookkeeping -> ExecuteProbe -> state machine   │
	└───────────────────────────┬────────────────────────────────────┘
	                            ▼
	┌──────────────────────────────────────────────────────────────┐
	│                        Registry                                │
	│  container_id -> *Timer, concurrent-safe, owns every Timer     │
	└───────────────────────────┬────────────────────────────────────┘
	                            ▼
	┌──────────────────────────────────────────────────────────────┐
	│                        Reporter                                 │
	│  Send(containerID, status, exitCode) -> FrameWriter.WriteFramed │
	└──────────────────────────────────────────────────────────────┘

# State Machine

	None -> (Start, first grace tick) -> Starting -> Healthy <-> Unhealthy -> (Stop) -> None

Start leaves the status at None; the first tick still inside the grace
period moves it to Starting and emits it. With StartPeriodS 0 there is no
Starting at all: the first probe moves None straight to Healthy or
Unhealthy. Starting is sticky only while the grace period (StartPeriodS) has
not yet elapsed. Outside the grace period, a probe's exit code drives Healthy vs
Unhealthy: a zero exit always resets the failure counter and emits a
Healthy update every tick (a keep-alive for the parent engine); a non-zero
exit increments the counter and only flips to Unhealthy — and emits — once
the counter exceeds Retries. Failures below that threshold are silent: the
parent engine only hears about sustained problems, not transient ones.

# Usage

	cfg, err := health.DiscoverFromBundle(bundlePath)
	if errors.Is(err, health.ErrDiscoveryMissing) {
		// no healthcheck declared, run without one
	} else if err != nil {
		log.Errorf("invalid healthcheck config", err)
	}

	registry := health.NewRegistry()
	reporter := health.NewReporter(syncChannel)

	timer := health.NewTimer(containerID, cfg, "/usr/bin/runc", reporter)
	if err := registry.Insert(timer); err != nil {
		// duplicate container id
	}
	if err := timer.Start(); err != nil {
		// disabled config or already active
	}

	// ... later, at monitor shutdown:
	registry.Teardown()

# Probe execution

A probe runs `<runtime_path> exec <container_id> <test-argv...>` as a
subprocess (pkg/health does not enter container namespaces itself). Stdout
is discarded; stderr is captured up to 4 KiB for diagnostic logging only.
timeout_s is never enforced by killing the child — it is stored on the
Config and not acted on — per the spec's documented limitation; the probe is
always waited on synchronously. A failed probe (non-zero exit, spawn failure
or abnormal termination) is logged at warn level with its stderr snippet.
*/
package health
