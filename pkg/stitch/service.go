package stitch

import "context"

// StitchServiceClient is the capability interface implemented by typed
// clients for named Stitch services (twilio, http, aws-s3, ...). The SDK
// ships no concrete service clients; they are built externally and plugged
// in through a ServiceClientFactory.
type StitchServiceClient interface {
	ServiceName() string
}

// ServiceClientFactory constructs a typed service client from the core
// request plumbing of an app client.
type ServiceClientFactory func(core *CoreServiceClient) StitchServiceClient

// CoreServiceClient is the slice of an app client handed to service client
// factories: the service's name plus authenticated request execution against
// the app's client API.
type CoreServiceClient struct {
	name   string
	exec   *requestExecutor
	routes apiRoutes
}

// Name returns the name of the service this core is bound to.
func (c *CoreServiceClient) Name() string { return c.name }

// ExecuteRequest dispatches an access-token-authenticated request against
// the app-scoped path and decodes a JSON response into out when out is
// non-nil. It carries the full session semantics of the SDK, including the
// transparent refresh-and-retry of invalidated sessions.
func (c *CoreServiceClient) ExecuteRequest(ctx context.Context, method, path string, body, out any) error {
	req := apiRequest{
		method: method,
		path:   c.routes.appRoute(path),
		body:   body,
		token:  tokenKindAccess,
	}
	return c.exec.Execute(ctx, req, out)
}

// ServiceClient builds the typed client for the named service using factory.
func (c *AppClient) ServiceClient(name string, factory ServiceClientFactory) StitchServiceClient {
	return factory(&CoreServiceClient{
		name:   name,
		exec:   c.exec,
		routes: c.routes,
	})
}
