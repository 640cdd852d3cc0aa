package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// exerciseStorage runs the contract shared by every Storage implementation.
func exerciseStorage(t *testing.T, store Storage) {
	t.Helper()

	_, err := store.Get("missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set("k1", []byte("v1")))
	got, err := store.Get("k1")
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), got)

	// Set replaces an existing value.
	require.NoError(t, store.Set("k1", []byte("v2")))
	got, err = store.Get("k1")
	require.NoError(t, err)
	require.Equal(t, []byte("v2"), got)

	require.NoError(t, store.Remove("k1"))
	_, err = store.Get("k1")
	require.ErrorIs(t, err, ErrNotFound)

	// Removing an absent key is not an error.
	require.NoError(t, store.Remove("k1"))
}

func TestMemoryStorage(t *testing.T) {
	t.Parallel()
	exerciseStorage(t, NewMemory())
}

func TestMemoryStorageCopiesValues(t *testing.T) {
	t.Parallel()

	store := NewMemory()
	value := []byte("original")
	require.NoError(t, store.Set("k", value))

	// Mutating the caller's slice must not affect the stored value.
	value[0] = 'X'
	got, err := store.Get("k")
	require.NoError(t, err)
	require.Equal(t, []byte("original"), got)

	// Nor must mutating a returned slice.
	got[0] = 'Y'
	again, err := store.Get("k")
	require.NoError(t, err)
	require.Equal(t, []byte("original"), again)
}

func TestSQLiteStorage(t *testing.T) {
	t.Parallel()

	store, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Ping())
	exerciseStorage(t, store)
}

func TestSQLiteStorageSurvivesReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "stitch.db")

	store, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, store.Set("auth", []byte(`{"user_id":"u1"}`)))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.Get("auth")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"user_id":"u1"}`), got)
}
