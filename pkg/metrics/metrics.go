package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ActiveTimers is the number of containers currently under healthcheck
	// supervision (registered in the Registry, regardless of status).
	ActiveTimers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "conmon_healthd_active_timers",
			Help: "Number of containers currently under healthcheck supervision",
		},
	)

	// TimersByStatus is the population of supervised containers by their
	// current healthcheck status.
	TimersByStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "conmon_healthd_timers_by_status",
			Help: "Number of supervised containers by healthcheck status",
		},
		[]string{"status"},
	)

	// ProbesTotal counts every probe invocation by its outcome.
	ProbesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conmon_healthd_probes_total",
			Help: "Total healthcheck probes run, by outcome",
		},
		[]string{"outcome"}, // "success", "failure", "spawn_error"
	)

	// ProbeDuration observes how long a probe subprocess takes to return.
	ProbeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "conmon_healthd_probe_duration_seconds",
			Help:    "Duration of a healthcheck probe subprocess",
			Buckets: prometheus.DefBuckets,
		},
	)

	// StatusTransitionsTotal counts status updates emitted to the parent
	// engine, by resulting status — including the healthy keep-alive sent on
	// every successful probe, not only changes of status.
	StatusTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conmon_healthd_status_transitions_total",
			Help: "Total healthcheck status updates emitted, by resulting status",
		},
		[]string{"status"},
	)

	// ReporterWriteFailuresTotal counts sync-channel write failures the
	// Reporter swallowed rather than propagating.
	ReporterWriteFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "conmon_healthd_reporter_write_failures_total",
			Help: "Total status update writes that failed and were dropped",
		},
	)
)

func init() {
	prometheus.MustRegister(ActiveTimers)
	prometheus.MustRegister(TimersByStatus)
	prometheus.MustRegister(ProbesTotal)
	prometheus.MustRegister(ProbeDuration)
	prometheus.MustRegister(StatusTransitionsTotal)
	prometheus.MustRegister(ReporterWriteFailuresTotal)
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
