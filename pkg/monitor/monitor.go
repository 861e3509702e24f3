// Package monitor bundles a Registry, a Reporter and a runtime path into
// the single object a process embeds to supervise every container's
// healthcheck from a Config the caller has already discovered: start and
// stop its Timer, and tear everything down on shutdown.
package monitor

import (
	"fmt"

	"github.com/samifruit514/conmon/pkg/health"
	"github.com/samifruit514/conmon/pkg/log"
	"github.com/samifruit514/conmon/pkg/metrics"
)

// Monitor is the process-wide healthcheck supervisor: one Registry, one
// Reporter (one sync channel), one runtime binary path, shared by every
// container this process is asked to supervise.
type Monitor struct {
	registry    *health.Registry
	reporter    *health.Reporter
	runtimePath string
	collector   *metrics.Collector
}

// New constructs a Monitor. w is the sync-channel transport every Timer's
// Reporter writes through; runtimePath is the container runtime binary
// (e.g. "/usr/bin/runc") used to exec probes.
func New(w health.FrameWriter, runtimePath string) *Monitor {
	registry := health.NewRegistry()
	m := &Monitor{
		registry:    registry,
		reporter:    health.NewReporter(w),
		runtimePath: runtimePath,
	}
	m.collector = metrics.NewCollector(m.sample)
	return m
}

func (m *Monitor) sample() metrics.PopulationSample {
	snaps := m.registry.Snapshot()
	byStatus := map[string]int{
		health.StatusNone.String():      0,
		health.StatusStarting.String():  0,
		health.StatusHealthy.String():   0,
		health.StatusUnhealthy.String(): 0,
	}
	for _, s := range snaps {
		byStatus[s.Status.String()]++
	}
	return metrics.PopulationSample{Total: len(snaps), ByStatus: byStatus}
}

// Start begins periodic metrics collection over the registry. Safe to call
// once; Monitor has no use for being started twice.
func (m *Monitor) Start() {
	m.collector.Start()
	metrics.SetRegistryReady(true, "")
	metrics.SetReporterReady(true, "")
}

// StartContainer registers a Timer for containerID with cfg (already
// discovered and parsed by the caller) and starts it. Returns
// health.ErrNotConfigured if cfg has no healthcheck declared — callers
// should treat that as "supervise nothing for this container", not an
// error.
func (m *Monitor) StartContainer(containerID string, cfg health.Config) error {
	if !cfg.Enabled {
		return health.ErrNotConfigured
	}

	timer := health.NewTimer(containerID, cfg, m.runtimePath, m.reporter)
	if err := m.registry.Insert(timer); err != nil {
		return fmt.Errorf("failed to register container %s: %w", containerID, err)
	}

	if err := timer.Start(); err != nil {
		m.registry.Remove(containerID)
		return fmt.Errorf("failed to start healthcheck timer for %s: %w", containerID, err)
	}

	log.WithContainerID(containerID).Info().Msg("healthcheck timer started")
	return nil
}

// StopContainer stops and drops containerID's Timer, if any. A no-op for an
// unregistered container.
func (m *Monitor) StopContainer(containerID string) {
	timer, ok := m.registry.Lookup(containerID)
	if !ok {
		return
	}
	timer.Stop()
	m.registry.Remove(containerID)
	log.WithContainerID(containerID).Info().Msg("healthcheck timer stopped")
}

// Snapshot returns the observable state of every supervised container.
func (m *Monitor) Snapshot() []health.TimerSnapshot {
	return m.registry.Snapshot()
}

// Teardown stops every supervised Timer and the metrics collector. Intended
// for process shutdown; a Monitor is not meant to be reused afterward.
func (m *Monitor) Teardown() {
	m.collector.Stop()
	m.registry.Teardown()
}
