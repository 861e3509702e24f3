package health

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/samifruit514/conmon/pkg/log"
	"github.com/samifruit514/conmon/pkg/metrics"
)

// ErrAlreadyActive is returned by Start when the Timer is already running.
var ErrAlreadyActive = errors.New("healthcheck timer: already active")

// ErrNotConfigured is returned by Start when the Config is disabled or has
// no test command.
var ErrNotConfigured = errors.New("healthcheck timer: disabled or no test command")

// TimerSnapshot is a best-effort, point-in-time copy of a Timer's state,
// safe for administrative readers that don't own the Timer.
type TimerSnapshot struct {
	ContainerID         string
	Status              Status
	ConsecutiveFailures int
	StartPeriodRemaining int
	Active              bool
	LastCheckTime       time.Time
}

// Timer drives the probe scheduler and status state machine for a single
// container. Once registered, a Timer is exclusively owned by the Registry;
// its own worker goroutine is the only mutator of its fields — everything
// else (Snapshot, Status) takes a best-effort lock-protected read.
type Timer struct {
	// ContainerID and RuntimePath are immutable for the Timer's lifetime.
	ContainerID string
	RuntimePath string

	mu                   sync.Mutex
	config               Config
	status               Status
	consecutiveFailures  int
	startPeriodRemaining int
	active               bool
	lastCheckTime        time.Time

	reporter *Reporter
	probeFn  ProbeFunc

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewTimer constructs a Timer bound to containerID and a validated Config.
// The Timer starts in StatusNone and is not yet active; call Start to
// schedule it.
func NewTimer(containerID string, cfg Config, runtimePath string, reporter *Reporter) *Timer {
	return &Timer{
		ContainerID:          containerID,
		RuntimePath:          runtimePath,
		config:               cfg,
		status:               StatusNone,
		startPeriodRemaining: cfg.StartPeriodS,
		reporter:             reporter,
		probeFn:              ExecuteProbe,
	}
}

// SetProbeFunc overrides the probe implementation; used by tests to avoid
// spawning real processes. Must be called before Start.
func (t *Timer) SetProbeFunc(fn ProbeFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.probeFn = fn
}

// Config returns a copy of the Timer's configuration.
func (t *Timer) Config() Config {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.config
}

// Snapshot returns a point-in-time copy of the Timer's observable state.
func (t *Timer) Snapshot() TimerSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return TimerSnapshot{
		ContainerID:          t.ContainerID,
		Status:               t.status,
		ConsecutiveFailures:  t.consecutiveFailures,
		StartPeriodRemaining: t.startPeriodRemaining,
		Active:               t.active,
		LastCheckTime:        t.lastCheckTime,
	}
}

// Active reports whether the Timer is currently scheduled.
func (t *Timer) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Start schedules the Timer's worker. Requires the Config be enabled with a
// non-empty test command, and the Timer not already active. Status is left
// at None here — the first tick is what performs the None->Starting
// transition (and emission) if the config has a grace period still running,
// or probes immediately and emits Healthy/Unhealthy if it does not.
func (t *Timer) Start() error {
	t.mu.Lock()
	if t.active {
		t.mu.Unlock()
		return ErrAlreadyActive
	}
	if !t.config.Enabled || len(t.config.Test) == 0 {
		t.mu.Unlock()
		return ErrNotConfigured
	}

	t.active = true
	t.lastCheckTime = time.Now()
	t.stopCh = make(chan struct{})
	t.doneCh = make(chan struct{})
	stopCh, doneCh := t.stopCh, t.doneCh
	t.mu.Unlock()

	go t.run(stopCh, doneCh)
	return nil
}

// Stop deactivates the Timer and blocks until its worker has observed that
// and exited. Idempotent: stopping a non-active Timer is a no-op. An
// in-flight probe is never interrupted by Stop — only the sleep between
// ticks is cancelled, per the spec's documented limitation.
func (t *Timer) Stop() {
	t.mu.Lock()
	if !t.active {
		t.mu.Unlock()
		return
	}
	t.active = false
	stopCh, doneCh := t.stopCh, t.doneCh
	t.mu.Unlock()

	close(stopCh)
	<-doneCh

	t.mu.Lock()
	t.status = StatusNone
	t.mu.Unlock()
}

// run is the worker loop: a 1-second ticker gives Stop sub-second
// responsiveness regardless of the configured interval, which is tracked
// separately as elapsed whole seconds.
func (t *Timer) run(stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	elapsed := 0
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			elapsed++
			t.mu.Lock()
			interval := t.config.IntervalS
			t.mu.Unlock()
			if elapsed < interval {
				continue
			}
			elapsed = 0
			t.tick()
		}
	}
}

// tick runs exactly one scheduled wake-up: grace-period bookkeeping, the
// probe, and the status transition/emission rules of the state machine.
func (t *Timer) tick() {
	now := time.Now()

	t.mu.Lock()
	graceEdge := false
	if t.startPeriodRemaining > 0 {
		t.startPeriodRemaining -= t.config.IntervalS
		if t.startPeriodRemaining < 0 {
			t.startPeriodRemaining = 0
		}
		if t.startPeriodRemaining > 0 {
			// Emit only on the transition into Starting (i.e. the first
			// tick still inside grace, starting from None); every later
			// grace tick leaves status already Starting and stays silent.
			transitioned := t.status != StatusStarting
			t.status = StatusStarting
			t.lastCheckTime = now
			t.mu.Unlock()
			if transitioned {
				t.reporter.Send(t.ContainerID, StatusStarting, 0)
				metrics.StatusTransitionsTotal.WithLabelValues(StatusStarting.String()).Inc()
			}
			return
		}
		// start_period_remaining_s just reached 0 this tick: probe this
		// tick, but a non-zero result is not yet counted against retries.
		graceEdge = true
	}
	cfg := t.config
	t.mu.Unlock()

	probeTimer := metrics.NewTimer()
	result := t.probeFn(context.Background(), cfg, t.ContainerID, t.RuntimePath)
	probeTimer.ObserveDuration(metrics.ProbeDuration)

	switch {
	case !result.OK:
		metrics.ProbesTotal.WithLabelValues("spawn_error").Inc()
	case result.ExitCode == 0:
		metrics.ProbesTotal.WithLabelValues("success").Inc()
	default:
		metrics.ProbesTotal.WithLabelValues("failure").Inc()
	}
	if !result.OK || result.ExitCode != 0 {
		log.WithContainerID(t.ContainerID).Warn().
			Int("exit_code", result.ExitCode).
			Str("stderr", result.Stderr).
			Msg("healthcheck probe failed")
	}

	t.mu.Lock()
	t.lastCheckTime = time.Now()

	if !result.OK {
		t.consecutiveFailures++
		t.status = StatusUnhealthy
		t.mu.Unlock()
		t.reporter.Send(t.ContainerID, StatusUnhealthy, result.ExitCode)
		metrics.StatusTransitionsTotal.WithLabelValues(StatusUnhealthy.String()).Inc()
		return
	}

	if result.ExitCode == 0 {
		t.consecutiveFailures = 0
		t.status = StatusHealthy
		t.mu.Unlock()
		t.reporter.Send(t.ContainerID, StatusHealthy, 0)
		metrics.StatusTransitionsTotal.WithLabelValues(StatusHealthy.String()).Inc()
		return
	}

	t.consecutiveFailures++
	if graceEdge {
		t.mu.Unlock()
		return
	}
	if t.consecutiveFailures > cfg.Retries {
		t.status = StatusUnhealthy
		t.mu.Unlock()
		t.reporter.Send(t.ContainerID, StatusUnhealthy, result.ExitCode)
		metrics.StatusTransitionsTotal.WithLabelValues(StatusUnhealthy.String()).Inc()
		return
	}
	t.mu.Unlock()
}
