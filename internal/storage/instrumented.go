package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/rxkeeper/internal/metrics"
)

type instrumented struct {
	next Storage
}

// Instrument wraps s so every call is timed and failures are counted.
func Instrument(s Storage) Storage {
	return &instrumented{next: s}
}

func observe(op, collection string, start time.Time, err error) {
	metrics.StorageDuration.WithLabelValues(op, collection).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.StorageErrors.WithLabelValues(op, collection).Inc()
	}
}

func (i *instrumented) ReadCollection(ctx context.Context, name string) ([]json.RawMessage, error) {
	start := time.Now()
	records, err := i.next.ReadCollection(ctx, name)
	observe("read", name, start, err)
	return records, err
}

func (i *instrumented) WriteCollection(ctx context.Context, name string, records []json.RawMessage) error {
	start := time.Now()
	err := i.next.WriteCollection(ctx, name, records)
	observe("write", name, start, err)
	return err
}

func (i *instrumented) WriteBatch(ctx context.Context, batch Batch) error {
	start := time.Now()
	err := i.next.WriteBatch(ctx, batch)
	for _, name := range batch.Names() {
		observe("write", name, start, err)
	}
	return err
}

func (i *instrumented) Close() error {
	return i.next.Close()
}
