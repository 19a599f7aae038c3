package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Identified is implemented by pointer receivers of stored entities.
type Identified interface {
	GetID() string
	SetID(id string)
}

// EntityStore is a keyed collection of T persisted as one JSON array.
// The persisted array is authoritative: every call reads it afresh.
type EntityStore[T any, PT interface {
	*T
	Identified
}] struct {
	kv    KV
	key   string
	newID func() string
}

func NewEntityStore[T any, PT interface {
	*T
	Identified
}](kv KV, key string) *EntityStore[T, PT] {
	return &EntityStore[T, PT]{kv: kv, key: key, newID: uuid.NewString}
}

func (s *EntityStore[T, PT]) Key() string { return s.key }

// Bind returns the same collection operating on kv.
func (s *EntityStore[T, PT]) Bind(kv KV) *EntityStore[T, PT] {
	return &EntityStore[T, PT]{kv: kv, key: s.key, newID: s.newID}
}

// All returns every record in insertion order. An unreadable blob is
// treated as an empty collection.
func (s *EntityStore[T, PT]) All(ctx context.Context) ([]T, error) {
	return s.load(ctx, s.kv)
}

func (s *EntityStore[T, PT]) Find(ctx context.Context, id string) (T, bool, error) {
	return s.First(ctx, func(v T) bool { return PT(&v).GetID() == id })
}

func (s *EntityStore[T, PT]) First(ctx context.Context, pred func(T) bool) (T, bool, error) {
	var zero T
	items, err := s.All(ctx)
	if err != nil {
		return zero, false, err
	}
	for _, item := range items {
		if pred(item) {
			return item, true, nil
		}
	}
	return zero, false, nil
}

func (s *EntityStore[T, PT]) FindBy(ctx context.Context, pred func(T) bool) ([]T, error) {
	items, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out, nil
}

// Add assigns a fresh id and appends the record.
func (s *EntityStore[T, PT]) Add(ctx context.Context, data T) (T, error) {
	added, err := s.AddMany(ctx, []T{data})
	if err != nil {
		var zero T
		return zero, err
	}
	return added[0], nil
}

func (s *EntityStore[T, PT]) AddMany(ctx context.Context, data []T) ([]T, error) {
	added := make([]T, 0, len(data))
	err := s.mutate(ctx, func(kv KV) error {
		items, err := s.load(ctx, kv)
		if err != nil {
			return err
		}
		for _, item := range data {
			PT(&item).SetID(s.newID())
			items = append(items, item)
			added = append(added, item)
		}
		return s.save(ctx, kv, items)
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// Update applies patch to the record with id. It reports false, and writes
// nothing, when no such record exists. The id cannot be changed by patch.
func (s *EntityStore[T, PT]) Update(ctx context.Context, id string, patch func(PT)) (T, bool, error) {
	var (
		updated T
		found   bool
	)
	err := s.mutate(ctx, func(kv KV) error {
		items, err := s.load(ctx, kv)
		if err != nil {
			return err
		}
		for i := range items {
			p := PT(&items[i])
			if p.GetID() != id {
				continue
			}
			patch(p)
			p.SetID(id)
			updated, found = items[i], true
			return s.save(ctx, kv, items)
		}
		return nil
	})
	return updated, found, err
}

// RemoveWhere drops every record matching pred and returns how many went.
func (s *EntityStore[T, PT]) RemoveWhere(ctx context.Context, pred func(T) bool) (int, error) {
	var removed int
	err := s.mutate(ctx, func(kv KV) error {
		items, err := s.load(ctx, kv)
		if err != nil {
			return err
		}
		kept := items[:0]
		for _, item := range items {
			if pred(item) {
				removed++
				continue
			}
			kept = append(kept, item)
		}
		if removed == 0 {
			return nil
		}
		return s.save(ctx, kv, kept)
	})
	return removed, err
}

func (s *EntityStore[T, PT]) mutate(ctx context.Context, fn func(kv KV) error) error {
	if u, ok := s.kv.(Updater); ok {
		return u.Update(ctx, fn)
	}
	return fn(s.kv)
}

func (s *EntityStore[T, PT]) load(ctx context.Context, kv KV) ([]T, error) {
	raw, err := kv.Get(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		slog.Warn("discarding unreadable collection", "key", s.key, "error", err)
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (s *EntityStore[T, PT]) save(ctx context.Context, kv KV, items []T) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", s.key, err)
	}
	return kv.Put(ctx, s.key, raw)
}
