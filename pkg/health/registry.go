package health

import (
	"errors"
	"fmt"
	"sync"
)

// ErrRegistryConflict is returned by Insert when a container id is already
// registered.
var ErrRegistryConflict = errors.New("healthcheck registry: container already registered")

// Registry is the process-wide container_id -> *Timer mapping. The
// Registry owns every Timer it holds: it guarantees a Timer outlives its
// worker goroutine by stopping (and joining) before it is dropped from the
// map, so a worker's non-owning reference back to its Timer is always
// valid for as long as the worker runs.
type Registry struct {
	mu     sync.RWMutex
	timers map[string]*Timer
}

// NewRegistry allocates an empty Registry. Equivalent to the spec's init().
func NewRegistry() *Registry {
	return &Registry{timers: make(map[string]*Timer)}
}

// Insert registers t under its ContainerID. Rejects a duplicate id with
// ErrRegistryConflict; the caller's Timer is never inserted in that case.
func (r *Registry) Insert(t *Timer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.timers[t.ContainerID]; exists {
		return fmt.Errorf("%w: %s", ErrRegistryConflict, t.ContainerID)
	}
	r.timers[t.ContainerID] = t
	return nil
}

// Lookup returns the Timer registered under containerID, if any. The
// returned reference is for administrative status queries only — callers
// must not call Start/Stop on it from outside the component that owns the
// container's lifecycle.
func (r *Registry) Lookup(containerID string) (*Timer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.timers[containerID]
	return t, ok
}

// Remove drops containerID from the map without stopping its Timer; callers
// that want a clean shutdown should Stop the Timer themselves first, or use
// Teardown.
func (r *Registry) Remove(containerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.timers, containerID)
}

// Len returns the number of registered timers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.timers)
}

// Snapshot returns a point-in-time copy of every registered Timer's
// observable state, without holding the registry lock while reading
// per-timer fields.
func (r *Registry) Snapshot() []TimerSnapshot {
	r.mu.RLock()
	timers := make([]*Timer, 0, len(r.timers))
	for _, t := range r.timers {
		timers = append(timers, t)
	}
	r.mu.RUnlock()

	snaps := make([]TimerSnapshot, 0, len(timers))
	for _, t := range timers {
		snaps = append(snaps, t.Snapshot())
	}
	return snaps
}

// Teardown stops every registered Timer (joining each worker), then clears
// the map. Safe to call once; a Registry is not meant to be reused after
// Teardown.
func (r *Registry) Teardown() {
	r.mu.RLock()
	timers := make([]*Timer, 0, len(r.timers))
	for _, t := range r.timers {
		timers = append(timers, t)
	}
	r.mu.RUnlock()

	for _, t := range timers {
		t.Stop()
	}

	r.mu.Lock()
	r.timers = make(map[string]*Timer)
	r.mu.Unlock()
}
