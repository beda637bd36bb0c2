package pipeline

import (
	"sync"

	"github.com/battlecast/battlecast/internal/telemetry"
)

// History is a bounded FIFO ring of processed event records. When full, the
// oldest record is evicted first.
type History struct {
	mu    sync.RWMutex
	buf   []telemetry.Record
	head  int
	count int
}

// NewHistory creates a ring with the given fixed capacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 1
	}
	return &History{buf: make([]telemetry.Record, capacity)}
}

// Append stores a record, evicting the oldest when at capacity.
func (h *History) Append(rec telemetry.Record) {
	h.mu.Lock()
	defer h.mu.Unlock()

	tail := (h.head + h.count) % len(h.buf)
	h.buf[tail] = rec
	if h.count == len(h.buf) {
		h.head = (h.head + 1) % len(h.buf)
	} else {
		h.count++
	}
}

// Len returns the number of records currently held.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Snapshot returns the held records, oldest first.
func (h *History) Snapshot() []telemetry.Record {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]telemetry.Record, h.count)
	for i := 0; i < h.count; i++ {
		out[i] = h.buf[(h.head+i)%len(h.buf)]
	}
	return out
}
