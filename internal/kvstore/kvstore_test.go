package kvstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()

	sqlite, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "nested", "store.sqlite"))
	require.NoError(t, err)
	file, err := OpenFile(filepath.Join(t.TempDir(), "docs"))
	require.NoError(t, err)

	stores := map[string]Store{
		DriverSQLite: sqlite,
		DriverFile:   file,
		DriverMemory: NewMemory(),
	}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})
	return stores
}

func TestStores_CRUD(t *testing.T) {
	for name, store := range backends(t) {
		store := store
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.Get(ctx, "missing")
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.Set(ctx, "workflow-form-builder-projects", []byte(`{"a":1}`)))
			require.NoError(t, store.Set(ctx, "b/key with spaces", []byte(`[]`)))
			require.NoError(t, store.Set(ctx, "workflow-form-builder-projects", []byte(`{"a":2}`)))

			got, err := store.Get(ctx, "workflow-form-builder-projects")
			require.NoError(t, err)
			require.JSONEq(t, `{"a":2}`, string(got))

			keys, err := store.Keys(ctx)
			require.NoError(t, err)
			require.Equal(t, []string{"b/key with spaces", "workflow-form-builder-projects"}, keys)

			require.NoError(t, store.Delete(ctx, "b/key with spaces"))
			require.NoError(t, store.Delete(ctx, "never-set"))
			_, err = store.Get(ctx, "b/key with spaces")
			require.ErrorIs(t, err, ErrNotFound)

			require.Error(t, store.Set(ctx, " ", []byte("x")))
		})
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	mem, err := Open(ctx, "memory", "")
	require.NoError(t, err)
	require.IsType(t, &Memory{}, mem)

	sqlite, err := Open(ctx, "SQLite", ":memory:")
	require.NoError(t, err)
	defer sqlite.Close()
	require.NoError(t, sqlite.Set(ctx, "k", []byte("v")))
	value, err := sqlite.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v", string(value))

	_, err = Open(ctx, "redis", "")
	require.ErrorIs(t, err, ErrUnknownDriver)

	_, err = Open(ctx, "file", "")
	require.Error(t, err)
}

func TestSQLite_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.sqlite")

	first, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "k", []byte("v1")))
	require.NoError(t, first.Close())

	second, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer second.Close()
	got, err := second.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v1", string(got))
}
