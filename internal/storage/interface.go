package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
)

// Batch maps collection names to their full replacement contents.
type Batch map[string][]json.RawMessage

// Names returns the collection names in a stable order.
func (b Batch) Names() []string {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Storage reads and replaces named collections of JSON records.
type Storage interface {
	// ReadCollection returns the records of the named collection in stored
	// order. A collection that was never written is empty, not an error.
	ReadCollection(ctx context.Context, name string) ([]json.RawMessage, error)

	// WriteCollection replaces the named collection.
	WriteCollection(ctx context.Context, name string, records []json.RawMessage) error

	// WriteBatch replaces several collections in one atomic call.
	WriteBatch(ctx context.Context, batch Batch) error

	// Close releases the underlying connection.
	Close() error
}

// Load reads a collection and decodes each record into T.
func Load[T any](ctx context.Context, s Storage, name string) ([]T, error) {
	records, err := s.ReadCollection(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read collection %s: %w", name, err)
	}
	items := make([]T, 0, len(records))
	for i, r := range records {
		var item T
		if err := json.Unmarshal(r, &item); err != nil {
			return nil, fmt.Errorf("failed to decode %s record %d: %w", name, i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// Encode marshals items into records.
func Encode[T any](items []T) ([]json.RawMessage, error) {
	records := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		b, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("failed to encode record: %w", err)
		}
		records = append(records, b)
	}
	return records, nil
}

// Save encodes items and replaces the named collection.
func Save[T any](ctx context.Context, s Storage, name string, items []T) error {
	records, err := Encode(items)
	if err != nil {
		return err
	}
	if err := s.WriteCollection(ctx, name, records); err != nil {
		return fmt.Errorf("failed to write collection %s: %w", name, err)
	}
	return nil
}

func cloneRecords(records []json.RawMessage) []json.RawMessage {
	out := make([]json.RawMessage, len(records))
	for i, r := range records {
		out[i] = append(json.RawMessage(nil), r...)
	}
	return out
}
