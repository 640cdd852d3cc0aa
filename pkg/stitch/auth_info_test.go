package stitch

import (
	"errors"
	"testing"

	"github.com/mongodb/stitch-go-sdk/pkg/storage"
	"github.com/stretchr/testify/require"
)

// flakyStorage wraps an in-memory store and fails on demand.
type flakyStorage struct {
	*storage.Memory
	getErr error
	setErr error
}

func (f *flakyStorage) Get(key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.Memory.Get(key)
}

func (f *flakyStorage) Set(key string, value []byte) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.Memory.Set(key, value)
}

func loggedInInfo() AuthInfo {
	return AuthInfo{
		AccessToken:          "a1",
		RefreshToken:         "r1",
		UserID:               "u1",
		DeviceID:             "d1",
		LoggedInProviderType: ProviderTypeAnonymous,
		LoggedInProviderName: string(ProviderTypeAnonymous),
	}
}

func TestAuthInfoStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := newAuthInfoStore(storage.NewMemory(), "auth")

	updated, err := store.Update(func(AuthInfo) AuthInfo { return loggedInInfo() })
	require.NoError(t, err)
	require.Equal(t, loggedInInfo(), updated)
	require.Equal(t, loggedInInfo(), store.Current())

	require.NoError(t, store.Clear())
	require.False(t, store.Current().LoggedIn())
}

func TestAuthInfoStorePersistsAcrossInstances(t *testing.T) {
	t.Parallel()

	backend := storage.NewMemory()

	first := newAuthInfoStore(backend, "auth")
	_, err := first.Update(func(AuthInfo) AuthInfo { return loggedInInfo() })
	require.NoError(t, err)

	second := newAuthInfoStore(backend, "auth")
	require.Equal(t, loggedInInfo(), second.Current())
}

func TestAuthInfoStoreClearKeepsDeviceID(t *testing.T) {
	t.Parallel()

	store := newAuthInfoStore(storage.NewMemory(), "auth")
	_, err := store.Update(func(AuthInfo) AuthInfo { return loggedInInfo() })
	require.NoError(t, err)

	require.NoError(t, store.Clear())

	info := store.Current()
	require.False(t, info.LoggedIn())
	require.Empty(t, info.AccessToken)
	require.Empty(t, info.RefreshToken)
	require.Empty(t, info.UserID)
	require.Equal(t, "d1", info.DeviceID)
}

func TestAuthInfoStorePersistFailureKeepsInMemoryState(t *testing.T) {
	t.Parallel()

	backend := &flakyStorage{Memory: storage.NewMemory(), setErr: errors.New("disk full")}
	store := newAuthInfoStore(backend, "auth")

	updated, err := store.Update(func(AuthInfo) AuthInfo { return loggedInInfo() })
	require.ErrorIs(t, err, ErrCouldNotPersistAuthInfo)

	// Availability over durability: the in-memory session is established.
	require.Equal(t, loggedInInfo(), updated)
	require.True(t, store.Current().LoggedIn())
}

func TestAuthInfoStoreLoadFailureSurfacesLazily(t *testing.T) {
	t.Parallel()

	backend := &flakyStorage{Memory: storage.NewMemory(), getErr: errors.New("corrupt database")}
	store := newAuthInfoStore(backend, "auth")

	// Plain reads still work and report logged out.
	require.False(t, store.Current().LoggedIn())

	// The executor's snapshot path sees the deferred load error.
	_, err := store.Snapshot()
	require.ErrorIs(t, err, ErrCouldNotLoadPersistedAuthInfo)

	// A successful update supersedes the load failure.
	backend.getErr = nil
	_, err = store.Update(func(AuthInfo) AuthInfo { return loggedInInfo() })
	require.NoError(t, err)

	info, err := store.Snapshot()
	require.NoError(t, err)
	require.True(t, info.LoggedIn())
}

func TestAuthInfoStoreCorruptPersistedStateSurfacesLazily(t *testing.T) {
	t.Parallel()

	backend := storage.NewMemory()
	require.NoError(t, backend.Set("auth", []byte("not json")))

	store := newAuthInfoStore(backend, "auth")
	require.False(t, store.Current().LoggedIn())

	_, err := store.Snapshot()
	require.ErrorIs(t, err, ErrCouldNotLoadPersistedAuthInfo)
}
