package stitch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func registryConfig() Config {
	return Config{
		BaseURL:                 testBaseURL,
		Transport:               &fakeTransport{handler: loginHandler},
		DisableProactiveRefresh: true,
	}
}

// unregister removes a client from the process-wide registry so tests do not
// leak entries into each other.
func unregister(t *testing.T, clientAppID string) {
	t.Cleanup(func() {
		registryMu.Lock()
		defer registryMu.Unlock()

		if client, ok := appClients[clientAppID]; ok {
			client.Close()
			delete(appClients, clientAppID)
			if defaultClient == client {
				defaultClient = nil
			}
		}
	})
}

func TestInitializeAppClientRegistersForLookup(t *testing.T) {
	unregister(t, "registry-app-1")

	client, err := InitializeAppClient("registry-app-1", registryConfig())
	require.NoError(t, err)
	require.Equal(t, "registry-app-1", client.ClientAppID())

	found, err := GetAppClient("registry-app-1")
	require.NoError(t, err)
	require.Same(t, client, found)
}

func TestInitializeAppClientRejectsDuplicate(t *testing.T) {
	unregister(t, "registry-app-2")

	_, err := InitializeAppClient("registry-app-2", registryConfig())
	require.NoError(t, err)

	_, err = InitializeAppClient("registry-app-2", registryConfig())
	require.ErrorContains(t, err, "already initialized")
}

func TestGetAppClientUnknownID(t *testing.T) {
	_, err := GetAppClient("registry-app-never-initialized")
	require.ErrorContains(t, err, "has not been initialized")
}

func TestDefaultAppClient(t *testing.T) {
	unregister(t, "registry-app-3")
	unregister(t, "registry-app-4")

	_, err := DefaultAppClient()
	require.ErrorContains(t, err, "no default app client")

	client, err := InitializeDefaultAppClient("registry-app-3", registryConfig())
	require.NoError(t, err)

	found, err := DefaultAppClient()
	require.NoError(t, err)
	require.Same(t, client, found)

	// A second default is rejected even under a different app id.
	_, err = InitializeDefaultAppClient("registry-app-4", registryConfig())
	require.ErrorContains(t, err, "default app client already initialized")
}
