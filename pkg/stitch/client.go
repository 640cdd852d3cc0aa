package stitch

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mongodb/stitch-go-sdk/pkg/storage"
)

const (
	defaultBaseURL = "https://stitch.mongodb.com"
	defaultTimeout = 15 * time.Second
)

// Config configures an AppClient. The zero value is usable: every field has
// a sensible default applied at construction.
type Config struct {
	// BaseURL is the Stitch server to talk to. Default: the hosted service.
	BaseURL string

	// Transport performs HTTP round trips. Default: an HTTPTransport with
	// Timeout as its per-request timeout.
	Transport Transport

	// Storage persists auth state across restarts. Default: in-memory only.
	Storage storage.Storage

	// Timeout bounds each request when the default transport is used.
	// Default: 15s.
	Timeout time.Duration

	// Logger receives the SDK's structured logs. Default: slog.Default().
	Logger *slog.Logger

	// LocalAppName and LocalAppVersion identify the calling application in
	// the device document sent at login. Optional.
	LocalAppName    string
	LocalAppVersion string

	// DisableProactiveRefresh turns off the background task that renews
	// soon-to-expire access tokens. Requests still refresh reactively.
	DisableProactiveRefresh bool

	// RefreshInterval is how often the proactive refresher checks the access
	// token. Default: 60s.
	RefreshInterval time.Duration
}

// AppClient is a client for one Stitch app. It owns the auth state, the
// request execution core and the optional background refresher, and is safe
// for concurrent use.
type AppClient struct {
	clientAppID string
	routes      apiRoutes
	exec        *requestExecutor
	auth        *Auth
	refresher   *proactiveRefresher

	closeOnce sync.Once
}

// NewAppClient builds a client for the app identified by clientAppID.
// Callers that want process-wide lookup should use InitializeAppClient
// instead.
func NewAppClient(clientAppID string, cfg Config) (*AppClient, error) {
	if clientAppID == "" {
		return nil, errors.New("stitch: client app id is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Transport == nil {
		cfg.Transport = NewHTTPTransport(cfg.Timeout)
	}
	if cfg.Storage == nil {
		cfg.Storage = storage.NewMemory()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	logger := cfg.Logger.With("app_id", clientAppID)
	routes := apiRoutes{clientAppID: clientAppID}
	store := newAuthInfoStore(cfg.Storage, "stitch.auth_info."+clientAppID)

	exec := &requestExecutor{
		transport: cfg.Transport,
		store:     store,
		routes:    routes,
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		logger:    logger,
	}

	auth := &Auth{
		exec:   exec,
		store:  store,
		routes: routes,
		device: deviceInfo{appID: cfg.LocalAppName, appVersion: cfg.LocalAppVersion},
		logger: logger,
	}

	client := &AppClient{
		clientAppID: clientAppID,
		routes:      routes,
		exec:        exec,
		auth:        auth,
	}

	if !cfg.DisableProactiveRefresh {
		client.refresher = newProactiveRefresher(exec, store, cfg.RefreshInterval, logger)
		client.refresher.start()
	}

	return client, nil
}

// ClientAppID returns the app this client talks to.
func (c *AppClient) ClientAppID() string { return c.clientAppID }

// Auth returns the authentication surface of this client.
func (c *AppClient) Auth() *Auth { return c.auth }

// Close tears down the client's background tasks. Idempotent; the client
// must not be used for requests after Close returns.
func (c *AppClient) Close() {
	c.closeOnce.Do(func() {
		if c.refresher != nil {
			c.refresher.Stop()
		}
	})
}
