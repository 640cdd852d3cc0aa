package stitch

// ============================================================================
// Internal Response Types (used for JSON unmarshaling)
// ============================================================================

// authLoginResponse is the body of a successful login (and link) request.
// Link responses carry a new access token for the already-established
// session; the remaining fields echo the current session.
type authLoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
	DeviceID     string `json:"device_id"`
}

// sessionRefreshResponse is the body of a successful refresh request. The
// backend renews only the access token; the refresh token is unchanged.
type sessionRefreshResponse struct {
	AccessToken string `json:"access_token"`
}

// userProfileResponse is the body of a successful profile request. It is
// stored wholesale as the current UserProfile, never merged.
type userProfileResponse struct {
	Type       string             `json:"type"`
	Identities []identityResponse `json:"identities"`
	Data       map[string]string  `json:"data"`
}

type identityResponse struct {
	ID           string `json:"id"`
	ProviderType string `json:"provider_type"`
}

func (r userProfileResponse) toProfile() UserProfile {
	identities := make([]UserIdentity, 0, len(r.Identities))
	for _, identity := range r.Identities {
		identities = append(identities, UserIdentity{
			ID:           identity.ID,
			ProviderType: identity.ProviderType,
		})
	}

	data := make(map[string]string, len(r.Data))
	for k, v := range r.Data {
		data[k] = v
	}

	return UserProfile{
		UserType:   r.Type,
		Identities: identities,
		Data:       data,
	}
}
