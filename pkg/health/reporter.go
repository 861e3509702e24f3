package health

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/samifruit514/conmon/pkg/log"
	"github.com/samifruit514/conmon/pkg/metrics"
)

// FrameTagHealthcheckStatus identifies a StatusUpdate payload on the sync
// channel. Mirrors the source's HEALTHCHECK_MSG_STATUS_UPDATE constant.
const FrameTagHealthcheckStatus uint8 = 2

// FrameWriter is the sync-channel transport, supplied by the caller. Its
// framing (length-prefix, typed tag, or otherwise) and its single-writer
// discipline are the channel's own contract; Reporter only calls it.
type FrameWriter interface {
	WriteFramed(tag uint8, payload []byte) error
}

// StatusUpdate is the wire record emitted on every reported transition.
// Field order is part of the contract: encoding/json serializes struct
// fields in declaration order, so this order must never change.
type StatusUpdate struct {
	Type        string `json:"type"`
	ContainerID string `json:"container_id"`
	Status      string `json:"status"`
	ExitCode    int    `json:"exit_code"`
	Timestamp   int64  `json:"timestamp"`
}

// Reporter serializes StatusUpdate records and writes them, framed, onto a
// FrameWriter. It serializes its own Send calls with a mutex so that
// multiple Timers sharing one Reporter still produce a single, ordered
// stream of writes — the spec requires write_framed calls be serialized
// across Timers, and the core must not assume the transport already does
// this for it.
type Reporter struct {
	mu sync.Mutex
	w  FrameWriter
}

// NewReporter returns a Reporter that writes through w.
func NewReporter(w FrameWriter) *Reporter {
	return &Reporter{w: w}
}

// Send builds and writes a StatusUpdate. Write failures are logged and
// swallowed: a probe loop must never die because the parent engine
// momentarily can't accept a message.
func (r *Reporter) Send(containerID string, status Status, exitCode int) {
	update := StatusUpdate{
		Type:        "healthcheck_status",
		ContainerID: containerID,
		Status:      status.String(),
		ExitCode:    exitCode,
		Timestamp:   time.Now().Unix(),
	}

	payload, err := json.Marshal(update)
	if err != nil {
		log.WithContainerID(containerID).Error().Err(err).Msg("failed to marshal healthcheck status update")
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.w.WriteFramed(FrameTagHealthcheckStatus, payload); err != nil {
		log.WithContainerID(containerID).Warn().Err(err).Msg("failed to write healthcheck status update")
		metrics.ReporterWriteFailuresTotal.Inc()
	}
}
