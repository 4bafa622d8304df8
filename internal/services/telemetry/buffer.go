package telemetry

import "sync"

// DefaultBufferCapacity bounds the shared line buffer when no capacity
// is configured.
const DefaultBufferCapacity = 4000

// LogBuffer is the single shared telemetry store: a bounded,
// FIFO-evicting ordered sequence of raw log lines. Appends preserve
// arrival order; overflow evicts the oldest line. The buffer lives for
// the whole process and is reset only by restart.
//
// Ingestion runs on its own goroutine, so unlike a cooperatively
// scheduled design the buffer needs real synchronization between the
// appender and the readers.
type LogBuffer struct {
	mu       sync.Mutex
	lines    []string
	start    int
	count    int
	capacity int
}

// NewLogBuffer creates a buffer holding at most capacity lines.
func NewLogBuffer(capacity int) *LogBuffer {
	if capacity <= 0 {
		capacity = DefaultBufferCapacity
	}
	return &LogBuffer{
		lines:    make([]string, capacity),
		capacity: capacity,
	}
}

// Append adds a line, evicting the oldest when full.
func (b *LogBuffer) Append(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := (b.start + b.count) % b.capacity
	b.lines[idx] = line
	if b.count < b.capacity {
		b.count++
	} else {
		b.start = (b.start + 1) % b.capacity
	}
}

// Len returns the number of buffered lines.
func (b *LogBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Snapshot returns the buffered lines in arrival order. The returned
// slice is a copy; readers never observe a half-applied append.
func (b *LogBuffer) Snapshot() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]string, b.count)
	for i := 0; i < b.count; i++ {
		out[i] = b.lines[(b.start+i)%b.capacity]
	}
	return out
}
