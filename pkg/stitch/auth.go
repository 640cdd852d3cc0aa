package stitch

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"sync"
)

// AuthListener is notified whenever the authentication state changes: on
// login, logout, link, and once immediately upon registration.
type AuthListener interface {
	OnAuthEvent(auth *Auth)
}

// Auth is the public authentication surface of an app client. All methods
// are safe for concurrent use from arbitrary goroutines.
type Auth struct {
	exec   *requestExecutor
	store  *authInfoStore
	routes apiRoutes
	device deviceInfo
	logger *slog.Logger

	mu        sync.Mutex // guards profile and listeners
	profile   UserProfile
	listeners []AuthListener
}

// LoggedIn reports whether a session is currently established.
func (a *Auth) LoggedIn() bool {
	return a.store.Current().LoggedIn()
}

// User returns a read-only snapshot of the current session, or nil when
// logged out. The snapshot is stale the instant the auth state changes;
// re-fetch rather than caching it.
func (a *Auth) User() *User {
	info := a.store.Current()
	if !info.LoggedIn() {
		return nil
	}

	return &User{
		ID:                   info.UserID,
		DeviceID:             info.DeviceID,
		LoggedInProviderType: info.LoggedInProviderType,
		LoggedInProviderName: info.LoggedInProviderName,
		Profile:              a.currentProfile(),
		auth:                 a,
	}
}

// LoginWithCredential authenticates with the given credential and returns
// the logged-in user.
//
// If a user is already logged in and the credential reuses existing sessions
// of its provider type (e.g. anonymous), the current session is returned
// without any network call. Any other credential logs the prior user out
// first. A failure of the profile fetch after a successful login logs the
// new user out again and surfaces the error.
func (a *Auth) LoginWithCredential(ctx context.Context, credential Credential) (*User, error) {
	if info := a.store.Current(); info.LoggedIn() {
		if credential.ReusesExistingSession() && info.LoggedInProviderType == credential.ProviderType() {
			return a.User(), nil
		}
		a.Logout(ctx)
	}

	var resp authLoginResponse
	req := apiRequest{
		method: http.MethodPost,
		path:   a.routes.loginRoute(credential.ProviderName()),
		body:   credential.loginBody(a.deviceDoc()),
		token:  tokenKindNone,
	}
	if err := a.exec.Execute(ctx, req, &resp); err != nil {
		return nil, err
	}

	if _, err := a.store.Update(func(info AuthInfo) AuthInfo {
		info.AccessToken = resp.AccessToken
		info.RefreshToken = resp.RefreshToken
		info.UserID = resp.UserID
		if resp.DeviceID != "" {
			// Assigned once by the backend, then kept for the device's life.
			info.DeviceID = resp.DeviceID
		}
		info.LoggedInProviderType = credential.ProviderType()
		info.LoggedInProviderName = credential.ProviderName()
		return info
	}); err != nil {
		return nil, err
	}

	var profileResp userProfileResponse
	profileReq := apiRequest{
		method: http.MethodGet,
		path:   a.routes.profileRoute(),
		token:  tokenKindAccess,
	}
	if err := a.exec.Execute(ctx, profileReq, &profileResp); err != nil {
		// A session without a readable profile is not usable; undo the login.
		a.Logout(ctx)
		return nil, err
	}

	a.setProfile(profileResp.toProfile())
	a.notifyListeners()

	return a.User(), nil
}

// Logout clears the local session and then makes a best-effort request to
// invalidate it server-side using the refresh token captured before the
// clear. It never fails: once local state is cleared the logout has
// succeeded, and any network failure is swallowed. Listeners are notified
// regardless of the network outcome.
func (a *Auth) Logout(ctx context.Context) {
	info := a.store.Current()

	if err := a.store.Clear(); err != nil {
		a.logger.Warn("failed to persist cleared auth state", "err", err)
	}
	a.setProfile(UserProfile{})

	if info.RefreshToken != "" {
		req := apiRequest{
			method:   http.MethodDelete,
			path:     a.routes.sessionRoute(),
			rawToken: info.RefreshToken,
		}
		if err := a.exec.Execute(ctx, req, nil); err != nil {
			a.logger.Debug("session invalidation request failed", "err", err)
		}
	}

	a.notifyListeners()
}

// linkWithCredential links credential's identity to user. Unlike login, a
// profile-fetch failure does not undo the link: the backend has already
// linked the identity and the new access token is kept.
func (a *Auth) linkWithCredential(ctx context.Context, user *User, credential Credential) (*User, error) {
	if info := a.store.Current(); !info.LoggedIn() || info.UserID != user.ID {
		return nil, ErrUserNoLongerValid
	}

	var resp authLoginResponse
	req := apiRequest{
		method: http.MethodPost,
		path:   a.routes.linkRoute(credential.ProviderName()),
		body:   credential.loginBody(a.deviceDoc()),
		token:  tokenKindAccess,
	}
	if err := a.exec.Execute(ctx, req, &resp); err != nil {
		return nil, err
	}

	// Only the access token changes on link; refresh token, user id and
	// device id are untouched.
	if _, err := a.store.Update(func(info AuthInfo) AuthInfo {
		info.AccessToken = resp.AccessToken
		return info
	}); err != nil {
		return nil, err
	}

	var profileResp userProfileResponse
	profileReq := apiRequest{
		method: http.MethodGet,
		path:   a.routes.profileRoute(),
		token:  tokenKindAccess,
	}
	if err := a.exec.Execute(ctx, profileReq, &profileResp); err != nil {
		return nil, err
	}

	a.setProfile(profileResp.toProfile())
	a.notifyListeners()

	return a.User(), nil
}

// AddAuthListener registers listener and fires it immediately so late
// subscribers observe the current state. Listeners run in registration
// order, after each state transition has committed and outside the
// auth-state mutex, so a slow listener never blocks other callers.
func (a *Auth) AddAuthListener(listener AuthListener) {
	a.mu.Lock()
	a.listeners = append(a.listeners, listener)
	a.mu.Unlock()

	listener.OnAuthEvent(a)
}

func (a *Auth) notifyListeners() {
	a.mu.Lock()
	listeners := slices.Clone(a.listeners)
	a.mu.Unlock()

	for _, listener := range listeners {
		listener.OnAuthEvent(a)
	}
}

func (a *Auth) setProfile(p UserProfile) {
	a.mu.Lock()
	a.profile = p
	a.mu.Unlock()
}

func (a *Auth) currentProfile() UserProfile {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.profile
}
