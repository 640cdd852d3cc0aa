package stitch

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	testAppID   = "test-app-abcde"
	testBaseURL = "https://stitch.example.com"
)

// fakeTransport records every round trip and delegates to a handler.
type fakeTransport struct {
	mu      sync.Mutex
	calls   []*TransportRequest
	handler func(req *TransportRequest) (*TransportResponse, error)
}

func (f *fakeTransport) RoundTrip(_ context.Context, req *TransportRequest) (*TransportResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	handler := f.handler
	f.mu.Unlock()

	return handler(req)
}

// countCalls returns how many recorded requests match method and a path
// substring.
func (f *fakeTransport) countCalls(method, pathPart string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, call := range f.calls {
		if call.Method == method && strings.Contains(call.URL, pathPart) {
			n++
		}
	}
	return n
}

func (f *fakeTransport) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func jsonResponse(status int, body string) (*TransportResponse, error) {
	return &TransportResponse{StatusCode: status, Body: []byte(body)}, nil
}

func invalidSessionResponse() (*TransportResponse, error) {
	return jsonResponse(401, `{"error":"invalid session","error_code":"InvalidSession"}`)
}

// newTestClient builds an AppClient over a fake transport, with the
// background refresher disabled so tests control every request.
func newTestClient(t *testing.T, handler func(req *TransportRequest) (*TransportResponse, error)) (*AppClient, *fakeTransport) {
	t.Helper()

	transport := &fakeTransport{handler: handler}
	client, err := NewAppClient(testAppID, Config{
		BaseURL:                 testBaseURL,
		Transport:               transport,
		DisableProactiveRefresh: true,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return client, transport
}

// seedLoggedIn puts an established session directly into the client's auth
// store.
func seedLoggedIn(t *testing.T, client *AppClient, accessToken string) {
	t.Helper()

	_, err := client.auth.store.Update(func(info AuthInfo) AuthInfo {
		info.AccessToken = accessToken
		info.RefreshToken = "refresh-token"
		info.UserID = "user-1"
		info.DeviceID = "device-1"
		info.LoggedInProviderType = ProviderTypeAnonymous
		info.LoggedInProviderName = string(ProviderTypeAnonymous)
		return info
	})
	require.NoError(t, err)
}

// signedTokenExpiring returns a syntactically valid JWT expiring at exp.
func signedTokenExpiring(t *testing.T, exp time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}
