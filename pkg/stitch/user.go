package stitch

import "context"

// UserIdentity is one linked identity of a user: the identity's id within its
// provider plus the provider type that owns it.
type UserIdentity struct {
	ID           string
	ProviderType string
}

// UserProfile is the profile document fetched from the backend after login
// or link. It is replaced wholesale on each successful profile fetch.
type UserProfile struct {
	UserType   string
	Identities []UserIdentity
	Data       map[string]string
}

// Well-known keys in UserProfile.Data.
const (
	profileDataName       = "name"
	profileDataEmail      = "email"
	profileDataPictureURL = "picture"
	profileDataFirstName  = "first_name"
	profileDataLastName   = "last_name"
	profileDataGender     = "gender"
	profileDataBirthday   = "birthday"
	profileDataMinAge     = "min_age"
	profileDataMaxAge     = "max_age"
)

func (p UserProfile) Name() string       { return p.Data[profileDataName] }
func (p UserProfile) Email() string      { return p.Data[profileDataEmail] }
func (p UserProfile) PictureURL() string { return p.Data[profileDataPictureURL] }
func (p UserProfile) FirstName() string  { return p.Data[profileDataFirstName] }
func (p UserProfile) LastName() string   { return p.Data[profileDataLastName] }
func (p UserProfile) Gender() string     { return p.Data[profileDataGender] }
func (p UserProfile) Birthday() string   { return p.Data[profileDataBirthday] }
func (p UserProfile) MinAge() string     { return p.Data[profileDataMinAge] }
func (p UserProfile) MaxAge() string     { return p.Data[profileDataMaxAge] }

// User is a read-only view of the authenticated user, composed from the auth
// state and profile valid at the point it was handed out. It becomes stale
// the instant the underlying auth state changes: re-fetch the current user
// from Auth.User rather than caching this value.
type User struct {
	ID                   string
	DeviceID             string
	LoggedInProviderType ProviderType
	LoggedInProviderName string
	Profile              UserProfile

	auth *Auth
}

// Identities returns the identities linked to this user at snapshot time.
func (u *User) Identities() []UserIdentity { return u.Profile.Identities }

// LinkWithCredential links the identity carried by credential to this user
// and returns a fresh snapshot. It fails with ErrUserNoLongerValid, without
// any network request, if this user is no longer the active session.
func (u *User) LinkWithCredential(ctx context.Context, credential Credential) (*User, error) {
	return u.auth.linkWithCredential(ctx, u, credential)
}
