package storage

import (
	"context"
	"encoding/json"
	"sync"
)

// Memory keeps collections in process memory. Records are copied on the
// way in and out so callers never share buffers with the store.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]json.RawMessage
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]json.RawMessage)}
}

func (m *Memory) ReadCollection(_ context.Context, name string) ([]json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneRecords(m.data[name]), nil
}

func (m *Memory) WriteCollection(ctx context.Context, name string, records []json.RawMessage) error {
	return m.WriteBatch(ctx, Batch{name: records})
}

func (m *Memory) WriteBatch(_ context.Context, batch Batch) error {
	staged := make(map[string][]json.RawMessage, len(batch))
	for name, records := range batch {
		staged[name] = cloneRecords(records)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for name, records := range staged {
		m.data[name] = records
	}
	return nil
}

func (m *Memory) Close() error {
	return nil
}
