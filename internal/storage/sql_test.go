package storage

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openSQLite opens a backend on path the way the server does for sqlite.
func openSQLite(t *testing.T, path string) *SQLBackend {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(path+"?_txlock=immediate&_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	backend := NewSQLBackend(db)
	require.NoError(t, backend.Migrate())
	t.Cleanup(func() { _ = backend.Close() })
	return backend
}

func TestSQLBackendPutOverwriteDelete(t *testing.T) {
	ctx := context.Background()
	backend := openSQLite(t, filepath.Join(t.TempDir(), "kv.db"))

	_, err := backend.Get(ctx, "settings:ABC123")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, backend.Apply(ctx, []Write{{Key: "settings:ABC123", Value: []byte(`{"v":1}`)}}))
	got, err := backend.Get(ctx, "settings:ABC123")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1}`, string(got))

	require.NoError(t, backend.Apply(ctx, []Write{{Key: "settings:ABC123", Value: []byte(`{"v":2}`)}}))
	got, err = backend.Get(ctx, "settings:ABC123")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(got))

	require.NoError(t, backend.Apply(ctx, []Write{{Key: "settings:ABC123", Delete: true}}))
	_, err = backend.Get(ctx, "settings:ABC123")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, backend.Ping(ctx))
}

func TestSQLBackendFailedUpdateWritesNothing(t *testing.T) {
	ctx := context.Background()
	backend := openSQLite(t, filepath.Join(t.TempDir(), "kv.db"))
	store := NewStore(backend)
	require.NoError(t, store.Put(ctx, "kept", []byte(`"x"`)))

	boom := errors.New("boom")
	err := store.Update(ctx, func(kv KV) error {
		require.NoError(t, kv.Put(ctx, "new", []byte(`1`)))
		require.NoError(t, kv.Delete(ctx, "kept"))
		got, err := kv.Get(ctx, "new")
		require.NoError(t, err)
		assert.Equal(t, `1`, string(got))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = backend.Get(ctx, "new")
	assert.ErrorIs(t, err, ErrNotFound)
	got, err := backend.Get(ctx, "kept")
	require.NoError(t, err)
	assert.Equal(t, `"x"`, string(got))
}

func TestSQLBackendRollsBackPartialBatch(t *testing.T) {
	ctx := context.Background()
	backend := openSQLite(t, filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, backend.Apply(ctx, []Write{{Key: "a", Value: []byte(`1`)}}))

	// the second write violates the NOT NULL value column
	err := backend.Apply(ctx, []Write{
		{Key: "a", Value: []byte(`2`)},
		{Key: "b", Value: nil},
	})
	require.Error(t, err)

	got, err := backend.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, `1`, string(got))
	_, err = backend.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrNotFound)
}

// Two stores on one database file stand in for the server and the CLI:
// their update scopes share no in-process lock, so only the database
// transaction keeps read-modify-write cycles from losing updates.
func TestSQLBackendSerialisesStoresAcrossConnections(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")
	stores := []*Store{NewStore(openSQLite(t, path)), NewStore(openSQLite(t, path))}

	const perStore = 25
	increment := func(kv KV) error {
		n := 0
		raw, err := kv.Get(ctx, "counter")
		switch {
		case errors.Is(err, ErrNotFound):
		case err != nil:
			return err
		default:
			if n, err = strconv.Atoi(string(raw)); err != nil {
				return err
			}
		}
		return kv.Put(ctx, "counter", []byte(strconv.Itoa(n+1)))
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(stores)*perStore)
	for _, store := range stores {
		wg.Add(1)
		go func(store *Store) {
			defer wg.Done()
			for i := 0; i < perStore; i++ {
				errs <- store.Update(ctx, increment)
			}
		}(store)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	raw, err := stores[0].Get(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(len(stores)*perStore), string(raw))
}
