package storage

import (
	"context"
	"sync"
)

// Store is the process-wide entry point to a Backend. Reads go straight to
// the backend; every write happens inside Update so that compound
// read-modify-write sequences never interleave.
type Store struct {
	backend Backend
	mu      sync.Mutex
}

func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

func (s *Store) Backend() Backend { return s.backend }

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	return s.backend.Get(ctx, key)
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	return s.Update(ctx, func(kv KV) error { return kv.Put(ctx, key, value) })
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.Update(ctx, func(kv KV) error { return kv.Delete(ctx, key) })
}

// Update runs fn against an Arena under the store lock and commits the staged
// writes as one batch. If fn returns an error nothing is written. On a
// Transactor backend the reads and the commit share one backend transaction,
// which also serialises writers in other processes; fn may then be retried.
// fn must only use the KV it is handed; touching the Store again deadlocks.
func (s *Store) Update(ctx context.Context, fn func(kv KV) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.backend.(Transactor); ok {
		return t.Transact(ctx, func(txn Txn) error { return commitArena(ctx, txn, fn) })
	}
	return commitArena(ctx, s.backend, fn)
}

func commitArena(ctx context.Context, txn Txn, fn func(kv KV) error) error {
	arena := NewArena(txn)
	if err := fn(arena); err != nil {
		return err
	}
	writes := arena.Writes()
	if len(writes) == 0 {
		return nil
	}
	return txn.Apply(ctx, writes)
}

func (s *Store) Ping(ctx context.Context) error { return s.backend.Ping(ctx) }

func (s *Store) Close() error { return s.backend.Close() }

// Arena stages writes on top of a read-only base. Reads observe staged
// writes first, so a sequence of operations sees its own effects.
type Arena struct {
	base   interface{ Get(context.Context, string) ([]byte, error) }
	staged map[string]Write
	order  []string
}

func NewArena(base interface {
	Get(context.Context, string) ([]byte, error)
}) *Arena {
	return &Arena{base: base, staged: make(map[string]Write)}
}

func (a *Arena) Get(ctx context.Context, key string) ([]byte, error) {
	if w, ok := a.staged[key]; ok {
		if w.Delete {
			return nil, ErrNotFound
		}
		return w.Value, nil
	}
	return a.base.Get(ctx, key)
}

func (a *Arena) Put(_ context.Context, key string, value []byte) error {
	a.stage(Write{Key: key, Value: value})
	return nil
}

func (a *Arena) Delete(_ context.Context, key string) error {
	a.stage(Write{Key: key, Delete: true})
	return nil
}

func (a *Arena) stage(w Write) {
	if _, ok := a.staged[w.Key]; !ok {
		a.order = append(a.order, w.Key)
	}
	a.staged[w.Key] = w
}

// Writes returns the staged batch in first-touch order, one write per key.
func (a *Arena) Writes() []Write {
	out := make([]Write, 0, len(a.order))
	for _, key := range a.order {
		out = append(out, a.staged[key])
	}
	return out
}

// Update makes nested scopes inside an arena run in place.
func (a *Arena) Update(_ context.Context, fn func(kv KV) error) error {
	return fn(a)
}
