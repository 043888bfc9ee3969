package audit

import (
	"context"
	"sync"
)

// MemoryLogger keeps records in memory. Intended for tests.
type MemoryLogger struct {
	mu      sync.Mutex
	records []Record
}

// NewMemoryLogger creates an empty in-memory sink.
func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

// Log implements Logger.
func (m *MemoryLogger) Log(_ context.Context, record Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, record)
	return nil
}

// Records returns a copy of everything logged so far.
func (m *MemoryLogger) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, len(m.records))
	copy(out, m.records)
	return out
}

// Reset discards all recorded entries.
func (m *MemoryLogger) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = nil
}
