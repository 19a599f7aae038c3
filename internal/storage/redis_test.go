package storage

import (
	"context"
	"errors"
	"os"
	"strconv"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openRedis connects to REDIS_TEST_ADDR under a fresh key prefix.
func openRedis(t *testing.T, prefix string) *RedisBackend {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	backend := NewRedisBackend(redis.NewClient(&redis.Options{Addr: addr}), prefix)
	require.NoError(t, backend.Ping(context.Background()))
	t.Cleanup(func() { _ = backend.Close() })
	return backend
}

func TestRedisBackendSerialisesStoresAcrossClients(t *testing.T) {
	ctx := context.Background()
	prefix := "test:" + uuid.NewString() + ":"
	stores := []*Store{NewStore(openRedis(t, prefix)), NewStore(openRedis(t, prefix))}
	MaxTransactRetries = 1000
	t.Cleanup(func() { MaxTransactRetries = 10 })

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
	for _, store := range stores {
		wg.Add(1)
		go func(store *Store) {
			defer wg.Done()
			for i := 0; i < perStore; i++ {
				assert.NoError(t, store.Update(ctx, increment))
			}
		}(store)
	}
	wg.Wait()

	raw, err := stores[0].Get(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(len(stores)*perStore), string(raw))
	require.NoError(t, stores[0].Delete(ctx, "counter"))
}
