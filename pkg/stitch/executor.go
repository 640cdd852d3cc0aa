package stitch

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/mongodb/stitch-go-sdk/pkg/slogx"

	"github.com/oklog/ulid/v2"
)

// tokenKind selects which credential, if any, a request is dispatched with.
type tokenKind int

const (
	tokenKindNone tokenKind = iota
	tokenKindAccess
	tokenKindRefresh
)

// apiRequest is one logical request against the Stitch API.
type apiRequest struct {
	method string
	path   string
	body   any // JSON-encoded when non-nil
	token  tokenKind

	// rawToken, when set, is used as the bearer token directly instead of
	// reading the auth store. Logout needs this: it must invalidate the
	// session with the refresh token captured before the local state was
	// cleared.
	rawToken string
}

// requestExecutor builds and dispatches logical requests: it attaches the
// Authorization header, classifies the response, and implements the
// refresh-and-retry-once protocol for invalidated sessions. It also owns the
// refresh coordination state shared between the reactive retry path and the
// proactive background refresher.
type requestExecutor struct {
	transport Transport
	store     *authInfoStore
	routes    apiRoutes
	baseURL   string
	logger    *slog.Logger

	// refreshMu guards pending. At most one refresh request is ever in
	// flight; concurrent requesters join the pending one as waiters.
	refreshMu sync.Mutex
	pending   *pendingRefresh
}

// pendingRefresh is an in-flight refresh shared by all concurrent waiters.
// err must only be read after done is closed.
type pendingRefresh struct {
	done chan struct{}
	err  error
}

// Execute dispatches req and decodes a successful JSON body into out (when
// out is non-nil). Any single logical call triggers at most one refresh
// attempt and at most one retried dispatch.
func (e *requestExecutor) Execute(ctx context.Context, req apiRequest, out any) error {
	return e.execute(ctx, req, out, ulid.Make().String(), true)
}

func (e *requestExecutor) execute(ctx context.Context, req apiRequest, out any, reqID string, firstAttempt bool) error {
	token := req.rawToken
	if token == "" && req.token != tokenKindNone {
		info, err := e.store.Snapshot()
		if err != nil {
			return err
		}
		switch req.token {
		case tokenKindAccess:
			token = info.AccessToken
		case tokenKindRefresh:
			token = info.RefreshToken
		}
		if token == "" {
			return ErrMustAuthenticateFirst
		}
	}

	var bodyBytes []byte
	if req.body != nil {
		var err error
		if bodyBytes, err = json.Marshal(req.body); err != nil {
			return encodingError(err)
		}
	}

	headers := make(map[string]string, 2)
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	if bodyBytes != nil {
		headers["Content-Type"] = "application/json"
	}

	logger := e.logger.With("req_id", reqID)
	logger.Debug("dispatching request",
		"method", req.method,
		"path", req.path,
		"retry", !firstAttempt,
	)

	// Downstream transports log round trips under the same request id.
	ctx = slogx.WithContext(ctx, logger)

	resp, err := e.transport.RoundTrip(ctx, &TransportRequest{
		Method:  req.method,
		URL:     e.baseURL + req.path,
		Headers: headers,
		Body:    bodyBytes,
	})
	if err != nil {
		return transportError(err)
	}

	if err := classifyResponse(resp.StatusCode, resp.Body); err != nil {
		var svcErr *ServiceError
		if errors.As(err, &svcErr) &&
			svcErr.Code == ServiceErrorCodeInvalidSession &&
			req.token == tokenKindAccess &&
			req.rawToken == "" &&
			firstAttempt {
			logger.Debug("session invalidated, refreshing")
			if refreshErr := e.RefreshAccessToken(ctx); refreshErr != nil {
				// The refresh's own failure is what callers see, not the
				// original InvalidSession. doRefresh already cleared state.
				return refreshErr
			}
			return e.execute(ctx, req, out, reqID, false)
		}
		return err
	}

	if out != nil {
		if err := json.Unmarshal(resp.Body, out); err != nil {
			return decodingError(err)
		}
	}

	return nil
}

// RefreshAccessToken renews the access token through the shared refresh
// protocol. If a refresh is already in flight the caller waits for its
// outcome instead of issuing a second request, so exactly one refresh is
// ever outstanding regardless of how many requests failed concurrently.
func (e *requestExecutor) RefreshAccessToken(ctx context.Context) error {
	e.refreshMu.Lock()
	if p := e.pending; p != nil {
		e.refreshMu.Unlock()
		select {
		case <-p.done:
			return p.err
		case <-ctx.Done():
			return transportError(ctx.Err())
		}
	}

	p := &pendingRefresh{done: make(chan struct{})}
	e.pending = p
	e.refreshMu.Unlock()

	p.err = e.doRefresh(ctx)

	e.refreshMu.Lock()
	e.pending = nil
	e.refreshMu.Unlock()
	close(p.done)

	return p.err
}

// doRefresh issues the refresh-token-authenticated renewal request and
// persists the new access token. Failure of the renewal request clears the
// local session.
func (e *requestExecutor) doRefresh(ctx context.Context) error {
	info := e.store.Current()
	if !info.LoggedIn() {
		return ErrLoggedOutDuringRequest
	}

	e.logger.Debug("refreshing access token")

	var resp sessionRefreshResponse
	req := apiRequest{
		method: http.MethodPost,
		path:   e.routes.sessionRoute(),
		token:  tokenKindRefresh,
	}
	if err := e.execute(ctx, req, &resp, ulid.Make().String(), false); err != nil {
		_ = e.store.Clear()
		return err
	}

	_, err := e.store.Update(func(info AuthInfo) AuthInfo {
		// A logout may have superseded this refresh; don't resurrect a
		// cleared session with a bare access token.
		if info.RefreshToken == "" {
			return info
		}
		info.AccessToken = resp.AccessToken
		return info
	})
	return err
}
