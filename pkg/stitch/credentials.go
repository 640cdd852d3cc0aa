package stitch

// ProviderType identifies an authentication provider understood by the
// Stitch backend. The values are the wire names used in the login path
// /auth/providers/<provider>/login.
type ProviderType string

const (
	ProviderTypeAnonymous    ProviderType = "anon-user"
	ProviderTypeUserPassword ProviderType = "local-userpass"
	ProviderTypeAPIKey       ProviderType = "api-key"
	ProviderTypeCustom       ProviderType = "custom-token"
	ProviderTypeFacebook     ProviderType = "oauth2-facebook"
	ProviderTypeGoogle       ProviderType = "oauth2-google"
)

// Credential carries the material used to establish or extend a session with
// a particular authentication provider. Credentials are immutable values:
// construct one with the Anonymous/UserPassword/... constructors and consume
// it once with LoginWithCredential or LinkWithCredential.
type Credential struct {
	providerName string
	providerType ProviderType
	material     map[string]string

	// reusesExistingSession marks providers whose sessions are
	// interchangeable: logging in again with such a credential while already
	// logged in through the same provider type reuses the current session
	// instead of creating a new identity.
	reusesExistingSession bool
}

// ProviderName returns the name of the provider this credential targets.
func (c Credential) ProviderName() string { return c.providerName }

// ProviderType returns the type of the provider this credential targets.
func (c Credential) ProviderType() ProviderType { return c.providerType }

// ReusesExistingSession reports whether logging in with this credential may
// reuse an existing session of the same provider type.
func (c Credential) ReusesExistingSession() bool { return c.reusesExistingSession }

// loginBody builds the request body for a login or link request: the
// credential material plus the device document under options.device.
func (c Credential) loginBody(device map[string]string) map[string]any {
	body := make(map[string]any, len(c.material)+1)
	for k, v := range c.material {
		body[k] = v
	}
	body["options"] = map[string]any{"device": device}
	return body
}

// AnonymousCredential logs in as an anonymous user. Anonymous sessions are
// reusable: a second anonymous login returns the existing session.
func AnonymousCredential() Credential {
	return Credential{
		providerName:          string(ProviderTypeAnonymous),
		providerType:          ProviderTypeAnonymous,
		material:              map[string]string{},
		reusesExistingSession: true,
	}
}

// UserPasswordCredential logs in with an email/password identity.
func UserPasswordCredential(username, password string) Credential {
	return Credential{
		providerName: string(ProviderTypeUserPassword),
		providerType: ProviderTypeUserPassword,
		material: map[string]string{
			"username": username,
			"password": password,
		},
	}
}

// UserAPIKeyCredential logs in with a user-scoped API key.
func UserAPIKeyCredential(key string) Credential {
	return Credential{
		providerName: string(ProviderTypeAPIKey),
		providerType: ProviderTypeAPIKey,
		material:     map[string]string{"key": key},
	}
}

// ServerAPIKeyCredential logs in with a server-scoped API key.
func ServerAPIKeyCredential(key string) Credential {
	return Credential{
		providerName: string(ProviderTypeAPIKey),
		providerType: ProviderTypeAPIKey,
		material:     map[string]string{"key": key},
	}
}

// CustomCredential logs in with a JWT issued by a custom authentication
// system registered with the app.
func CustomCredential(token string) Credential {
	return Credential{
		providerName: string(ProviderTypeCustom),
		providerType: ProviderTypeCustom,
		material:     map[string]string{"token": token},
	}
}

// FacebookCredential logs in with a Facebook OAuth2 access token.
func FacebookCredential(accessToken string) Credential {
	return Credential{
		providerName: string(ProviderTypeFacebook),
		providerType: ProviderTypeFacebook,
		material:     map[string]string{"accessToken": accessToken},
	}
}

// GoogleCredential logs in with a Google OAuth2 authorization code.
func GoogleCredential(authCode string) Credential {
	return Credential{
		providerName: string(ProviderTypeGoogle),
		providerType: ProviderTypeGoogle,
		material:     map[string]string{"authCode": authCode},
	}
}
