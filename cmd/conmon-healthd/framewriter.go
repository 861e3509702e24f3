package main

import (
	"encoding/binary"
	"io"
	"sync"

	"github.com/samifruit514/conmon/pkg/health"
)

// fileFrameWriter is a length-prefixed stand-in for the real sync channel
// the parent engine supplies in production: a single byte tag, a
// big-endian uint32 payload length, then the payload. It exists so this
// binary can run end to end against a plain file or stdout; it is not the
// spec's actual wire transport, which is an external collaborator this
// engine never implements.
type fileFrameWriter struct {
	mu sync.Mutex
	w  io.Writer
}

var _ health.FrameWriter = (*fileFrameWriter)(nil)

func newFileFrameWriter(w io.Writer) *fileFrameWriter {
	return &fileFrameWriter{w: w}
}

func (f *fileFrameWriter) WriteFramed(tag uint8, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	header := make([]byte, 5)
	header[0] = tag
	binary.BigEndian.PutUint32(header[1:], uint32(len(payload)))

	if _, err := f.w.Write(header); err != nil {
		return err
	}
	_, err := f.w.Write(payload)
	return err
}
