package storage

import (
	"context"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	dir, err := os.MkdirTemp("", "icebergcore-storage-test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return map[string]Backend{
		"memory":     NewMemBackend(zerolog.Nop()),
		"filesystem": NewFileBackend(dir, zerolog.Nop()),
	}
}

func TestBackendPutGet(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, b.Put(ctx, "a/b.json", []byte("hello")))
			data, err := b.Get(ctx, "a/b.json")
			require.NoError(t, err)
			require.Equal(t, "hello", string(data))
		})
	}
}

func TestBackendGetMissing(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := b.Get(context.Background(), "missing.json")
			require.Error(t, err)
		})
	}
}

func TestBackendPutIfAbsentCAS(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, b.PutIfAbsent(ctx, "v1.metadata.json", []byte("one")))
			err := b.PutIfAbsent(ctx, "v1.metadata.json", []byte("two"))
			require.Error(t, err)

			data, err := b.Get(ctx, "v1.metadata.json")
			require.NoError(t, err)
			require.Equal(t, "one", string(data))
		})
	}
}

func TestBackendExistsAndDelete(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			ok, err := b.Exists(ctx, "x.json")
			require.NoError(t, err)
			require.False(t, ok)

			require.NoError(t, b.Put(ctx, "x.json", []byte("1")))
			ok, err = b.Exists(ctx, "x.json")
			require.NoError(t, err)
			require.True(t, ok)

			require.NoError(t, b.Delete(ctx, "x.json"))
			ok, err = b.Exists(ctx, "x.json")
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

func TestBackendList(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, b.Put(ctx, "metadata/v1.json", []byte("1")))
			require.NoError(t, b.Put(ctx, "metadata/v2.json", []byte("2")))
			require.NoError(t, b.Put(ctx, "other/v1.json", []byte("3")))

			paths, err := b.List(ctx, "metadata/")
			require.NoError(t, err)
			require.Len(t, paths, 2)
		})
	}
}
