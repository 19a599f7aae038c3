package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreUpdateCommitsBatch(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	store := NewStore(backend)

	err := store.Update(ctx, func(kv KV) error {
		require.NoError(t, kv.Put(ctx, "a", []byte(`1`)))
		require.NoError(t, kv.Put(ctx, "b", []byte(`2`)))

		// staged writes are visible inside the scope
		got, err := kv.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, `1`, string(got))

		// but not outside of it
		_, err = backend.Get(ctx, "a")
		assert.ErrorIs(t, err, ErrNotFound)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, backend.Keys())
}

func TestStoreUpdateDiscardsOnError(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	store := NewStore(backend)
	require.NoError(t, store.Put(ctx, "kept", []byte(`"x"`)))

	boom := errors.New("boom")
	err := store.Update(ctx, func(kv KV) error {
		require.NoError(t, kv.Put(ctx, "new", []byte(`1`)))
		require.NoError(t, kv.Delete(ctx, "kept"))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = store.Get(ctx, "new")
	assert.ErrorIs(t, err, ErrNotFound)
	got, err := store.Get(ctx, "kept")
	require.NoError(t, err)
	assert.Equal(t, `"x"`, string(got))
}

func TestArenaDeleteShadowsBase(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	require.NoError(t, backend.Apply(ctx, []Write{{Key: "k", Value: []byte(`1`)}}))

	arena := NewArena(backend)
	require.NoError(t, arena.Delete(ctx, "k"))
	_, err := arena.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, arena.Put(ctx, "k", []byte(`2`)))
	require.NoError(t, arena.Put(ctx, "j", []byte(`3`)))
	writes := arena.Writes()
	require.Len(t, writes, 2)
	assert.Equal(t, "k", writes[0].Key)
	assert.False(t, writes[0].Delete)
	assert.Equal(t, "j", writes[1].Key)
}

func TestDocumentCorruptValueIsAbsent(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryBackend())
	require.NoError(t, store.Put(ctx, "doc", []byte(`{not json`)))

	doc := NewDocument[map[string]string](store, "doc")
	val, ok, err := doc.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, val)

	require.NoError(t, doc.Save(ctx, map[string]string{"a": "b"}))
	val, ok, err = doc.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "b", val["a"])

	require.NoError(t, doc.Clear(ctx))
	_, ok, err = doc.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDocumentLoadStrict(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryBackend())
	doc := NewDocument[[]string](store, "list")

	_, err := doc.LoadStrict(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, "list", []byte(`42`)))
	_, err = doc.LoadStrict(ctx)
	assert.ErrorIs(t, err, ErrCorrupt)
}
