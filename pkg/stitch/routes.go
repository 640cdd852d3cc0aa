package stitch

import "fmt"

// apiRoutes builds the client API paths for one app, all relative to the
// configured base URL.
type apiRoutes struct {
	clientAppID string
}

func (r apiRoutes) appRoute(suffix string) string {
	return fmt.Sprintf("/api/client/v2.0/app/%s%s", r.clientAppID, suffix)
}

func (r apiRoutes) loginRoute(providerName string) string {
	return r.appRoute(fmt.Sprintf("/auth/providers/%s/login", providerName))
}

func (r apiRoutes) linkRoute(providerName string) string {
	return r.loginRoute(providerName) + "?link=true"
}

func (r apiRoutes) profileRoute() string {
	return r.appRoute("/auth/profile")
}

func (r apiRoutes) sessionRoute() string {
	return r.appRoute("/auth/session")
}
