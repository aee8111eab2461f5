package auth

// Identity represents a normalized external authentication identity
// returned by an OAuth provider. It contains facts only, no decisions.
type Identity struct {
	Provider       string       // e.g. "linkedin", "google"
	ProviderUserID string       // provider-scoped unique user identifier (sub)
	Email          string       // verified email returned by provider
	EmailVerified  bool         // whether provider asserts email ownership
	Data           IdentityData // provider-specific metadata, persisted as jsonb
}

// IdentityData is the typed shape of the identity_data column. Providers
// fill in what they know; absent fields stay empty. Consumers must treat
// every field as optional.
type IdentityData struct {
	ProfileURL       string `json:"profile_url,omitempty"`
	VanityName       string `json:"vanity_name,omitempty"`
	PublicIdentifier string `json:"public_identifier,omitempty"`
	AccessToken      string `json:"access_token,omitempty"`
	Picture          string `json:"picture,omitempty"`
}

// Empty reports whether no metadata field is set.
func (d IdentityData) Empty() bool {
	return d == IdentityData{}
}
