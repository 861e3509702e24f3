package health

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// fakeFrameWriter captures every frame written to it, decoding the payload
// back into a StatusUpdate for assertions.
type fakeFrameWriter struct {
	mu     sync.Mutex
	frames []StatusUpdate
	failN  int // if > 0, the next N writes fail
}

func (f *fakeFrameWriter) WriteFramed(tag uint8, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failN > 0 {
		f.failN--
		return errors.New("simulated sync channel write failure")
	}

	var update StatusUpdate
	if err := json.Unmarshal(payload, &update); err != nil {
		return err
	}
	f.frames = append(f.frames, update)
	return nil
}

func (f *fakeFrameWriter) statuses() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.frames))
	for i, u := range f.frames {
		out[i] = u.Status
	}
	return out
}

func (f *fakeFrameWriter) updates() []StatusUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]StatusUpdate, len(f.frames))
	copy(out, f.frames)
	return out
}

// scriptedProbe replays a fixed sequence of ProbeResults, repeating the
// last entry once exhausted.
func scriptedProbe(results ...ProbeResult) ProbeFunc {
	i := 0
	var mu sync.Mutex
	return func(_ context.Context, _ Config, _ string, _ string) ProbeResult {
		mu.Lock()
		defer mu.Unlock()
		if i >= len(results) {
			return results[len(results)-1]
		}
		r := results[i]
		i++
		return r
	}
}

// countingProbe records how many times it was invoked alongside replaying
// results, for tests that assert call counts (e.g. grace-period skipping).
func countingProbe(results ...ProbeResult) (ProbeFunc, func() int) {
	i := 0
	calls := 0
	var mu sync.Mutex
	fn := func(_ context.Context, _ Config, _ string, _ string) ProbeResult {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if i >= len(results) {
			return results[len(results)-1]
		}
		r := results[i]
		i++
		return r
	}
	count := func() int {
		mu.Lock()
		defer mu.Unlock()
		return calls
	}
	return fn, count
}
