package stitch

import (
	"fmt"
	"sync"
)

// Process-wide registry of initialized app clients. Initialization is
// explicit and once-per-app-id; lookups are by client app id. All mutation
// happens under one mutex.
var (
	registryMu    sync.Mutex
	appClients    = make(map[string]*AppClient)
	defaultClient *AppClient
)

// InitializeAppClient creates the client for clientAppID and registers it
// for process-wide lookup with GetAppClient. Initializing the same app id
// twice is an error.
func InitializeAppClient(clientAppID string, cfg Config) (*AppClient, error) {
	registryMu.Lock()
	defer registryMu.Unlock()

	return initializeLocked(clientAppID, cfg)
}

// InitializeDefaultAppClient is InitializeAppClient plus registration as the
// process default returned by DefaultAppClient. Only one default may exist.
func InitializeDefaultAppClient(clientAppID string, cfg Config) (*AppClient, error) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if defaultClient != nil {
		return nil, fmt.Errorf("stitch: default app client already initialized as %q", defaultClient.clientAppID)
	}

	client, err := initializeLocked(clientAppID, cfg)
	if err != nil {
		return nil, err
	}

	defaultClient = client
	return client, nil
}

// GetAppClient returns the client previously initialized for clientAppID.
func GetAppClient(clientAppID string) (*AppClient, error) {
	registryMu.Lock()
	defer registryMu.Unlock()

	client, ok := appClients[clientAppID]
	if !ok {
		return nil, fmt.Errorf("stitch: app client %q has not been initialized", clientAppID)
	}
	return client, nil
}

// DefaultAppClient returns the client registered by
// InitializeDefaultAppClient.
func DefaultAppClient() (*AppClient, error) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if defaultClient == nil {
		return nil, fmt.Errorf("stitch: no default app client has been initialized")
	}
	return defaultClient, nil
}

func initializeLocked(clientAppID string, cfg Config) (*AppClient, error) {
	if _, ok := appClients[clientAppID]; ok {
		return nil, fmt.Errorf("stitch: app client %q already initialized", clientAppID)
	}

	client, err := NewAppClient(clientAppID, cfg)
	if err != nil {
		return nil, err
	}

	appClients[clientAppID] = client
	return client, nil
}
