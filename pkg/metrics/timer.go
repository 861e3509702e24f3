package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Timer is a convenience wrapper for observing operation durations into a
// histogram: start it at the beginning of an operation, then hand it a
// histogram to record into once the operation completes.
type Timer struct {
	start time.Time
}

// NewTimer starts a Timer at the current time.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns elapsed time since the Timer was created. Safe to call
// more than once; each call reflects time elapsed up to that call.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveDuration records the elapsed duration into a plain histogram.
func (t *Timer) ObserveDuration(h prometheus.Histogram) {
	h.Observe(t.Duration().Seconds())
}

// ObserveDurationVec records the elapsed duration into a histogram vector
// under the given label values.
func (t *Timer) ObserveDurationVec(h *prometheus.HistogramVec, labelValues ...string) {
	h.WithLabelValues(labelValues...).Observe(t.Duration().Seconds())
}
