/*
Package stitch provides a Go client for MongoDB Stitch apps: credential-based
authentication, durable session state, and an authenticated request execution
core with transparent token refresh.

# Clients and the registry

An AppClient talks to one Stitch app. Construct one directly, or initialize
it into the process-wide registry for lookup by app id:

	client, err := stitch.InitializeDefaultAppClient("my-app-abcde", stitch.Config{})

	// elsewhere in the process
	client, err := stitch.DefaultAppClient()

Each app id may be initialized once; the registry never replaces a client.
Call Close when done to stop the client's background tasks.

# Authentication

Auth is the authentication surface. Logging in takes a Credential, a value
built by one of the provider constructors:

	auth := client.Auth()

	user, err := auth.LoginWithCredential(ctx, stitch.UserPasswordCredential("user@example.com", "hunter2"))

	user, err = auth.LoginWithCredential(ctx, stitch.AnonymousCredential())

Anonymous credentials reuse an existing anonymous session instead of minting
a new identity. Any other credential logs out the current user before the
new login request is sent.

Logout always succeeds: local state is cleared first, and the best-effort
server-side session invalidation never surfaces a failure:

	auth.Logout(ctx)

Additional identities are linked through the user snapshot:

	user, err = user.LinkWithCredential(ctx, stitch.FacebookCredential(fbToken))

The snapshot must still be the active session, otherwise linking fails with
ErrUserNoLongerValid before any request is made.

# Sessions and token refresh

Authenticated requests carry the session's access token. When the backend
reports the session invalid, the SDK refreshes the access token with the
long-lived refresh token and retries the request exactly once, transparently
to the caller. Concurrent requests hitting an invalid session share a single
refresh: at most one refresh request is ever in flight per client.

A background refresher additionally renews tokens shortly before they
expire, so most requests never pay the refresh round trip. It shares the
same single-flight refresh protocol and is stopped by AppClient.Close.

# Auth state persistence

Session state is persisted through the storage.Storage interface on every
mutation and loaded at startup, so sessions survive restarts. The default
backend is in-memory; pkg/storage also ships a SQLite backend:

	st, err := storage.OpenSQLite("stitch.db")
	client, err := stitch.NewAppClient("my-app-abcde", stitch.Config{Storage: st})

A persistence failure does not fail the in-memory state transition: the
session stays usable for the life of the process and the operation reports
ErrCouldNotPersistAuthInfo.

# Listening for auth events

AuthListeners are notified, in registration order, on login, logout and
link, and once immediately upon registration:

	auth.AddAuthListener(listener)

Notification happens after the state change has committed and never blocks
other callers of the SDK.

# Errors

Failures surface as one of three disjoint kinds:

  - ServiceError: the backend completed the request and reported an error;
    Code is a known ServiceErrorCode or Unknown.
  - RequestError: the exchange itself failed (transport, encoding, decoding).
  - ClientError: a local precondition or state violation, such as
    ErrMustAuthenticateFirst or ErrUserNoLongerValid.

Match with errors.Is against the predefined values, or errors.As against
the three types.
*/
package stitch
