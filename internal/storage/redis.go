package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces the collection keys.
const DefaultRedisPrefix = "rxkeeper:"

// RedisStorage keeps each collection as one JSON array under prefix+name.
type RedisStorage struct {
	rdb    redis.UniversalClient
	prefix string
}

func NewRedisStorage(rdb redis.UniversalClient, prefix string) *RedisStorage {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStorage{rdb: rdb, prefix: prefix}
}

func (r *RedisStorage) key(name string) string {
	return r.prefix + name
}

func (r *RedisStorage) ReadCollection(ctx context.Context, name string) ([]json.RawMessage, error) {
	body, err := r.rdb.Get(ctx, r.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", r.key(name), err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", r.key(name), err)
	}
	return records, nil
}

func (r *RedisStorage) WriteCollection(ctx context.Context, name string, records []json.RawMessage) error {
	return r.WriteBatch(ctx, Batch{name: records})
}

// WriteBatch sets every collection key inside one MULTI/EXEC block.
func (r *RedisStorage) WriteBatch(ctx context.Context, batch Batch) error {
	bodies := make(map[string][]byte, len(batch))
	for name, records := range batch {
		if records == nil {
			records = []json.RawMessage{}
		}
		b, err := json.Marshal(records)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", name, err)
		}
		bodies[name] = b
	}

	_, err := r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for _, name := range batch.Names() {
			p.Set(ctx, r.key(name), bodies[name], 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis transaction failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	return r.rdb.Close()
}
