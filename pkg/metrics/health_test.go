package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetState() {
	state = &readiness{startTime: time.Now()}
}

func TestSetRegistryReady_RecordsState(t *testing.T) {
	resetState()

	SetRegistryReady(true, "")

	health := GetHealth()
	assert.Equal(t, "healthy", health.Components["registry"])
}

func TestGetHealth_AllReady(t *testing.T) {
	resetState()
	SetVersion("1.0.0")
	SetRegistryReady(true, "")
	SetReporterReady(true, "")

	health := GetHealth()

	assert.Equal(t, "healthy", health.Status)
	assert.Len(t, health.Components, 2)
	assert.Equal(t, "1.0.0", health.Version)
}

func TestGetHealth_ReporterUnhealthy(t *testing.T) {
	resetState()
	SetRegistryReady(true, "")
	SetReporterReady(false, "sync channel not connected")

	health := GetHealth()

	assert.Equal(t, "unhealthy", health.Status)
	assert.Equal(t, "unhealthy: sync channel not connected", health.Components["reporter"])
}

func TestGetHealth_UnregisteredComponentDoesNotCountAgainstHealth(t *testing.T) {
	resetState()
	SetRegistryReady(true, "")
	// reporter never registered

	health := GetHealth()

	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "not registered", health.Components["reporter"])
}

func TestGetReadiness_BothReady(t *testing.T) {
	resetState()
	SetRegistryReady(true, "")
	SetReporterReady(true, "")

	ready := GetReadiness()

	assert.Equal(t, "ready", ready.Status)
}

func TestGetReadiness_ReporterNeverRegistered(t *testing.T) {
	resetState()
	SetRegistryReady(true, "")
	// reporter not registered

	ready := GetReadiness()

	assert.Equal(t, "not_ready", ready.Status)
	assert.NotEmpty(t, ready.Message)
}

func TestGetReadiness_RegistryUnhealthy(t *testing.T) {
	resetState()
	SetRegistryReady(false, "teardown in progress")
	SetReporterReady(true, "")

	ready := GetReadiness()

	assert.Equal(t, "not_ready", ready.Status)
	assert.Equal(t, "waiting for registry initialization", ready.Message)
}

func TestHealthHandler_Ready(t *testing.T) {
	resetState()
	SetVersion("test")
	SetRegistryReady(true, "")
	SetReporterReady(true, "")

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	HealthHandler()(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var health HealthStatus
	require.NoError(t, json.NewDecoder(w.Body).Decode(&health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "test", health.Version)
}

func TestHealthHandler_Unhealthy(t *testing.T) {
	resetState()
	SetRegistryReady(true, "")
	SetReporterReady(false, "broken")

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	HealthHandler()(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var health HealthStatus
	require.NoError(t, json.NewDecoder(w.Body).Decode(&health))
	assert.Equal(t, "unhealthy", health.Status)
}

func TestReadyHandler_Ready(t *testing.T) {
	resetState()
	SetRegistryReady(true, "")
	SetReporterReady(true, "")

	req := httptest.NewRequest("GET", "/ready", nil)
	w := httptest.NewRecorder()

	ReadyHandler()(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var ready HealthStatus
	require.NoError(t, json.NewDecoder(w.Body).Decode(&ready))
	assert.Equal(t, "ready", ready.Status)
}

func TestReadyHandler_NotReady(t *testing.T) {
	resetState()
	SetRegistryReady(true, "")
	// reporter not registered

	req := httptest.NewRequest("GET", "/ready", nil)
	w := httptest.NewRecorder()

	ReadyHandler()(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var ready HealthStatus
	require.NoError(t, json.NewDecoder(w.Body).Decode(&ready))
	assert.Equal(t, "not_ready", ready.Status)
}

func TestLivenessHandler_AlwaysOK(t *testing.T) {
	resetState()

	req := httptest.NewRequest("GET", "/live", nil)
	w := httptest.NewRecorder()

	LivenessHandler()(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "alive", response["status"])
	assert.NotEmpty(t, response["uptime"])
}
