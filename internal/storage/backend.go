// Package storage implements the keyed document store every platform
// registry persists into: one JSON value per logical key, held by a
// pluggable Backend and mutated through atomic write batches.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Backend.Get and KV.Get when a key holds no value.
var ErrNotFound = errors.New("storage: key not found")

// ErrCorrupt reports a stored value that does not decode into its type.
var ErrCorrupt = errors.New("storage: unreadable value")

// Write is one staged mutation. Delete takes precedence over Value.
type Write struct {
	Key    string
	Value  []byte
	Delete bool
}

// Backend persists raw documents. Apply must commit all writes or none.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Apply(ctx context.Context, writes []Write) error
	Ping(ctx context.Context) error
	Close() error
}

// Txn is a backend seen from inside one of its transactions.
type Txn interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Apply(ctx context.Context, writes []Write) error
}

// Transactor is implemented by backends that other processes may write to.
// Transact runs fn in one backend transaction, so no other writer can change
// what fn read before fn's writes commit. fn may be run more than once.
type Transactor interface {
	Transact(ctx context.Context, fn func(txn Txn) error) error
}

// KV is the read/write surface shared by Store and Arena.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Updater is implemented by KVs that can open an atomic update scope.
type Updater interface {
	Update(ctx context.Context, fn func(kv KV) error) error
}
