package stitch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestHTTPTransportRoundTrip(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.JSONEq(t, `{"key":"value"}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(server.Close)

	transport := NewHTTPTransport(5 * time.Second)
	resp, err := transport.RoundTrip(context.Background(), &TransportRequest{
		Method: http.MethodPost,
		URL:    server.URL + "/widgets",
		Headers: map[string]string{
			"Authorization": "Bearer token-1",
			"Content-Type":  "application/json",
		},
		Body: []byte(`{"key":"value"}`),
	})
	require.NoError(t, err)

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, "application/json", resp.Headers.Get("Content-Type"))
	require.JSONEq(t, `{"ok":true}`, string(resp.Body))
}

func TestHTTPTransportConnectionFailure(t *testing.T) {
	t.Parallel()

	// A server that is immediately closed guarantees a refused connection.
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	transport := NewHTTPTransport(time.Second)
	_, err := transport.RoundTrip(context.Background(), &TransportRequest{
		Method: http.MethodGet,
		URL:    url,
	})
	require.Error(t, err)
}

func TestHTTPTransportLimiterHonorsContext(t *testing.T) {
	t.Parallel()

	transport := NewHTTPTransport(time.Second)
	transport.Limiter = rate.NewLimiter(rate.Every(time.Hour), 1)

	// Drain the burst so the next wait would block for a very long time.
	require.True(t, transport.Limiter.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := transport.RoundTrip(ctx, &TransportRequest{
		Method: http.MethodGet,
		URL:    "http://127.0.0.1:0/never-dispatched",
	})
	require.Error(t, err)
}
