package metrics

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// HealthStatus is the wire shape served on /health and /ready.
type HealthStatus struct {
	Status     string            `json:"status"` // "healthy"/"unhealthy" or "ready"/"not_ready"
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components,omitempty"`
	Message    string            `json:"message,omitempty"`
	Version    string            `json:"version,omitempty"`
	Uptime     string            `json:"uptime,omitempty"`
}

// component is one dependency's registered state.
type component struct {
	registered bool
	ready      bool
	message    string
}

// readiness tracks conmon-healthd's two startup dependencies: the in-process
// Timer Registry and the Reporter's sync-channel transport. Both must be up
// before the process can usefully accept StartContainer calls, so these are
// the only two components this process ever needs to track — unlike a
// multi-service control plane, there is no dynamic component set here.
type readiness struct {
	mu        sync.RWMutex
	registry  component
	reporter  component
	startTime time.Time
	version   string
}

var state = &readiness{startTime: time.Now()}

// SetVersion sets the version string reported on /health and /ready.
func SetVersion(version string) {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.version = version
}

// SetRegistryReady records whether the Timer Registry has been initialized.
func SetRegistryReady(ready bool, message string) {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.registry = component{registered: true, ready: ready, message: message}
}

// SetReporterReady records whether the Reporter's sync-channel transport is
// accepting writes.
func SetReporterReady(ready bool, message string) {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.reporter = component{registered: true, ready: ready, message: message}
}

func (c component) describe(readyWord, notReadyWord, unregisteredWord string) string {
	if !c.registered {
		return unregisteredWord
	}
	if c.ready {
		return readyWord
	}
	if c.message != "" {
		return notReadyWord + ": " + c.message
	}
	return notReadyWord
}

// GetHealth reports overall process health: unhealthy if either dependency
// is registered and not ready. An unregistered dependency doesn't count
// against health — that's what GetReadiness is for.
func GetHealth() HealthStatus {
	state.mu.RLock()
	defer state.mu.RUnlock()

	status := "healthy"
	if (state.registry.registered && !state.registry.ready) || (state.reporter.registered && !state.reporter.ready) {
		status = "unhealthy"
	}

	return HealthStatus{
		Status:    status,
		Timestamp: time.Now(),
		Components: map[string]string{
			"registry": state.registry.describe("healthy", "unhealthy", "not registered"),
			"reporter": state.reporter.describe("healthy", "unhealthy", "not registered"),
		},
		Version: state.version,
		Uptime:  time.Since(state.startTime).String(),
	}
}

// GetReadiness reports whether conmon-healthd can accept StartContainer
// calls. Both the registry and the reporter must be registered and ready;
// an unregistered dependency is treated the same as a not-ready one.
func GetReadiness() HealthStatus {
	state.mu.RLock()
	defer state.mu.RUnlock()

	status := "ready"
	message := ""
	switch {
	case !state.registry.registered || !state.registry.ready:
		status = "not_ready"
		message = "waiting for registry initialization"
	case !state.reporter.registered || !state.reporter.ready:
		status = "not_ready"
		message = "waiting for reporter initialization"
	}

	return HealthStatus{
		Status:    status,
		Timestamp: time.Now(),
		Components: map[string]string{
			"registry": state.registry.describe("ready", "not ready", "not registered"),
			"reporter": state.reporter.describe("ready", "not ready", "not registered"),
		},
		Message: message,
		Version: state.version,
		Uptime:  time.Since(state.startTime).String(),
	}
}

// HealthHandler returns an HTTP handler for the /health endpoint.
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := GetHealth()

		w.Header().Set("Content-Type", "application/json")

		statusCode := http.StatusOK
		if health.Status == "unhealthy" {
			statusCode = http.StatusServiceUnavailable
		}
		w.WriteHeader(statusCode)

		_ = json.NewEncoder(w).Encode(health)
	}
}

// ReadyHandler returns an HTTP handler for the /ready endpoint.
func ReadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ready := GetReadiness()

		w.Header().Set("Content-Type", "application/json")

		statusCode := http.StatusOK
		if ready.Status != "ready" {
			statusCode = http.StatusServiceUnavailable
		}
		w.WriteHeader(statusCode)

		_ = json.NewEncoder(w).Encode(ready)
	}
}

// LivenessHandler returns a simple liveness check: 200 as long as the
// process is running, independent of registry/reporter readiness.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "alive",
			"uptime": time.Since(state.startTime).String(),
		})
	}
}
