package stitch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mongodb/stitch-go-sdk/pkg/slogx"

	"golang.org/x/time/rate"
)

// TransportRequest is one HTTP round trip as seen by a Transport: method,
// absolute URL, headers and an optional body.
type TransportRequest struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// TransportResponse is the result of a completed round trip.
type TransportResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Transport performs a single HTTP round trip. Implementations must be safe
// for concurrent use; the request executor calls them from arbitrary
// goroutines. A returned error means the exchange itself failed (connection
// error, timeout); HTTP-level errors are reported through the status code.
type Transport interface {
	RoundTrip(ctx context.Context, req *TransportRequest) (*TransportResponse, error)
}

// HTTPTransport is the default Transport, built on net/http. An optional
// rate limiter throttles outgoing requests client-side; when set, RoundTrip
// blocks until the limiter grants a slot or the context is cancelled.
type HTTPTransport struct {
	Client  *http.Client
	Limiter *rate.Limiter
}

// NewHTTPTransport returns a Transport with the given per-request timeout
// and no rate limiting.
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		Client: &http.Client{Timeout: timeout},
	}
}

func (t *HTTPTransport) RoundTrip(ctx context.Context, req *TransportRequest) (*TransportResponse, error) {
	if t.Limiter != nil {
		if err := t.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := t.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	slogx.FromContext(ctx).Debug("http round trip",
		"method", req.Method,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &TransportResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       respBody,
	}, nil
}
