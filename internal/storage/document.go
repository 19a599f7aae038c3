package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// Document is a single typed JSON value stored at one key.
type Document[T any] struct {
	kv  KV
	key string
}

func NewDocument[T any](kv KV, key string) *Document[T] {
	return &Document[T]{kv: kv, key: key}
}

func (d *Document[T]) Key() string { return d.key }

// Bind returns the same document operating on kv (usually an Arena).
func (d *Document[T]) Bind(kv KV) *Document[T] {
	return &Document[T]{kv: kv, key: d.key}
}

// Load decodes the stored value. A missing or unreadable value reports
// ok=false with a nil error; only backend failures are returned.
func (d *Document[T]) Load(ctx context.Context) (T, bool, error) {
	val, err := d.LoadStrict(ctx)
	if errors.Is(err, ErrNotFound) {
		return val, false, nil
	}
	if errors.Is(err, ErrCorrupt) {
		slog.Warn("discarding unreadable document", "key", d.key, "error", err)
		return val, false, nil
	}
	if err != nil {
		return val, false, err
	}
	return val, true, nil
}

// LoadStrict is Load with the missing and unreadable cases reported as
// ErrNotFound and ErrCorrupt.
func (d *Document[T]) LoadStrict(ctx context.Context) (T, error) {
	var zero T
	raw, err := d.kv.Get(ctx, d.key)
	if err != nil {
		return zero, err
	}
	var val T
	if err := json.Unmarshal(raw, &val); err != nil {
		return zero, fmt.Errorf("%w: %q: %v", ErrCorrupt, d.key, err)
	}
	return val, nil
}

func (d *Document[T]) Save(ctx context.Context, val T) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", d.key, err)
	}
	return d.kv.Put(ctx, d.key, raw)
}

func (d *Document[T]) Clear(ctx context.Context) error {
	return d.kv.Delete(ctx, d.key)
}
