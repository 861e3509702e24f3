/*
Package metrics provides Prometheus metrics collection and exposition for
conmon-healthd, plus the liveness/readiness HTTP handlers used by its own
process supervision.

# Metrics Catalog

conmon_healthd_active_timers:
  - Type: Gauge
  - Description: Containers currently under healthcheck supervision

conmon_healthd_timers_by_status{status}:
  - Type: Gauge
  - Description: Supervised containers by status (none/starting/healthy/unhealthy)

conmon_healthd_probes_total{outcome}:
  - Type: Counter
  - Description: Probes run, by outcome (success/failure/spawn_error)

conmon_healthd_probe_duration_seconds:
  - Type: Histogram
  - Description: Probe subprocess duration

conmon_healthd_status_transitions_total{status}:
  - Type: Counter
  - Description: Status updates emitted to the parent engine, by resulting status

conmon_healthd_reporter_write_failures_total:
  - Type: Counter
  - Description: Sync channel writes that failed and were dropped

# Usage

	import "github.com/samifruit514/conmon/pkg/metrics"

	metrics.ProbesTotal.WithLabelValues("success").Inc()

	timer := metrics.NewTimer()
	result := runProbe()
	timer.ObserveDuration(metrics.ProbeDuration)

	http.Handle("/metrics", metrics.Handler())

# Liveness and readiness

SetRegistryReady/SetReporterReady record whether the Timer Registry and the
Reporter's sync-channel transport are up; HealthHandler and ReadyHandler
expose their aggregate status over HTTP, and LivenessHandler is a bare
process-is-running check.
*/
package metrics
