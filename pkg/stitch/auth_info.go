package stitch

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/mongodb/stitch-go-sdk/pkg/storage"
)

// AuthInfo is the persisted representation of the current session. It is
// either logged out (no tokens, no user) or logged in (both tokens and the
// user id present). The device id is assigned by the backend on the first
// login and kept across logouts so the device keeps a stable identity.
type AuthInfo struct {
	AccessToken          string       `json:"access_token,omitempty"`
	RefreshToken         string       `json:"refresh_token,omitempty"`
	UserID               string       `json:"user_id,omitempty"`
	DeviceID             string       `json:"device_id,omitempty"`
	LoggedInProviderType ProviderType `json:"logged_in_provider_type,omitempty"`
	LoggedInProviderName string       `json:"logged_in_provider_name,omitempty"`
}

// LoggedIn reports whether this AuthInfo represents an established session.
func (i AuthInfo) LoggedIn() bool {
	return i.AccessToken != "" && i.RefreshToken != "" && i.UserID != ""
}

// loggedOut returns a copy with everything but the device id stripped.
func (i AuthInfo) loggedOut() AuthInfo {
	return AuthInfo{DeviceID: i.DeviceID}
}

// authInfoStore owns the in-memory and persisted auth state. All reads and
// writes are serialized through one mutex so login, logout, link, refresh and
// plain reads never observe a torn state.
//
// Persist failures do not roll back the in-memory update: the session stays
// usable for the life of the process and the caller gets
// ErrCouldNotPersistAuthInfo to act on. Availability over durability.
type authInfoStore struct {
	storage storage.Storage
	key     string

	mu      sync.Mutex
	info    AuthInfo
	loadErr error
}

// newAuthInfoStore loads any persisted auth state from st. A load failure is
// recorded, not returned: it surfaces as ErrCouldNotLoadPersistedAuthInfo the
// first time an authenticated operation needs the info.
func newAuthInfoStore(st storage.Storage, key string) *authInfoStore {
	s := &authInfoStore{storage: st, key: key}

	raw, err := st.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return s
	}
	if err != nil {
		s.loadErr = err
		return s
	}
	if err := json.Unmarshal(raw, &s.info); err != nil {
		s.loadErr = err
		s.info = AuthInfo{}
	}

	return s
}

// Current returns a snapshot of the auth state. Non-blocking beyond the
// store mutex.
func (s *authInfoStore) Current() AuthInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

// Snapshot returns the auth state plus any deferred load error. Used by the
// request executor, which must distinguish "logged out" from "could not read
// the persisted state".
func (s *authInfoStore) Snapshot() (AuthInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loadErr != nil {
		return s.info, clientError(ClientErrorCouldNotLoadPersistedAuthInfo, s.loadErr)
	}
	return s.info, nil
}

// Update atomically applies mutate to the current state and persists the
// result before returning. The returned AuthInfo is the post-mutation state
// even when persistence failed.
func (s *authInfoStore) Update(mutate func(AuthInfo) AuthInfo) (AuthInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.info = mutate(s.info)
	s.loadErr = nil

	return s.info, s.persistLocked()
}

// Clear atomically resets to the logged-out state (device id retained) and
// persists.
func (s *authInfoStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.info = s.info.loggedOut()
	s.loadErr = nil

	return s.persistLocked()
}

func (s *authInfoStore) persistLocked() error {
	raw, err := json.Marshal(s.info)
	if err != nil {
		return clientError(ClientErrorCouldNotPersistAuthInfo, err)
	}
	if err := s.storage.Set(s.key, raw); err != nil {
		return clientError(ClientErrorCouldNotPersistAuthInfo, err)
	}
	return nil
}
