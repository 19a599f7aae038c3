package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores each document as a plain redis string under prefix+key.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

func NewRedisBackend(client *redis.Client, prefix string) *RedisBackend {
	return &RedisBackend{client: client, prefix: prefix}
}

func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := b.client.Get(ctx, b.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return val, nil
}

// Apply commits the batch inside MULTI/EXEC.
func (b *RedisBackend) Apply(ctx context.Context, writes []Write) error {
	if len(writes) == 0 {
		return nil
	}
	_, err := b.client.TxPipelined(ctx, b.queue(ctx, writes))
	if err != nil {
		return fmt.Errorf("failed to commit %d writes: %w", len(writes), err)
	}
	return nil
}

func (b *RedisBackend) queue(ctx context.Context, writes []Write) func(redis.Pipeliner) error {
	return func(pipe redis.Pipeliner) error {
		for _, w := range writes {
			if w.Delete {
				pipe.Del(ctx, b.prefix+w.Key)
				continue
			}
			pipe.Set(ctx, b.prefix+w.Key, w.Value, 0)
		}
		return nil
	}
}

// MaxTransactRetries bounds how often Transact reruns fn after another
// client changed a key it read.
var MaxTransactRetries = 10

// ErrContended is returned when Transact keeps losing to other writers.
var ErrContended = errors.New("storage: too many concurrent writers")

// Transact runs fn with optimistic locking: every key fn reads is WATCHed and
// the writes go out in MULTI/EXEC, which redis aborts when a watched key
// changed in between. fn is then run again on fresh values.
func (b *RedisBackend) Transact(ctx context.Context, fn func(txn Txn) error) error {
	for attempt := 0; attempt < MaxTransactRetries; attempt++ {
		err := b.client.Watch(ctx, func(tx *redis.Tx) error {
			return fn(&redisTxn{backend: b, tx: tx})
		})
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrContended
}

type redisTxn struct {
	backend *RedisBackend
	tx      *redis.Tx
}

func (t *redisTxn) Get(ctx context.Context, key string) ([]byte, error) {
	full := t.backend.prefix + key
	if err := t.tx.Watch(ctx, full).Err(); err != nil {
		return nil, fmt.Errorf("failed to watch %q: %w", key, err)
	}
	val, err := t.tx.Get(ctx, full).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return val, nil
}

// Apply returns redis.TxFailedErr unwrapped so Transact can retry.
func (t *redisTxn) Apply(ctx context.Context, writes []Write) error {
	_, err := t.tx.TxPipelined(ctx, t.backend.queue(ctx, writes))
	if err != nil && !errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("failed to commit %d writes: %w", len(writes), err)
	}
	return err
}

var (
	_ Backend    = (*RedisBackend)(nil)
	_ Transactor = (*RedisBackend)(nil)
)

func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}
