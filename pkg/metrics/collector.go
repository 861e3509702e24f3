package metrics

import "time"

// PopulationSample is one point-in-time count of supervised timers grouped
// by status string ("none", "starting", "healthy", "unhealthy").
type PopulationSample struct {
	Total    int
	ByStatus map[string]int
}

// SampleFunc produces the current population sample. Decoupled from any
// concrete registry type so pkg/metrics never needs to import pkg/health —
// pkg/health itself imports pkg/metrics to update the event counters inline.
type SampleFunc func() PopulationSample

// Collector periodically samples a population into the gauges; per-event
// counters (probes, transitions) are updated inline by pkg/health as they
// happen, not by this poller.
type Collector struct {
	sample SampleFunc
	stopCh chan struct{}
}

// NewCollector creates a Collector that calls sample on each tick.
func NewCollector(sample SampleFunc) *Collector {
	return &Collector{
		sample: sample,
		stopCh: make(chan struct{}),
	}
}

// Start begins periodic collection on a 15-second interval.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	s := c.sample()
	ActiveTimers.Set(float64(s.Total))
	for status, count := range s.ByStatus {
		TimersByStatus.WithLabelValues(status).Set(float64(count))
	}
}
