package config

const (
	authDomainVar       = "AUTH_DOMAIN"
	authClientIDVar     = "AUTH_CLIENT_ID"
	authClientSecretVar = "AUTH_CLIENT_SECRET"
	authAudienceVar     = "AUTH_AUDIENCE"
	authRolesClaimVar   = "AUTH_ROLES_CLAIM"
)

type AuthConfig interface {
	GetAuthDomain() string
	GetAuthClientID() string
	GetAuthClientSecret() string
	GetAuthAudience() string
	GetRolesClaim() string
}

type Auth struct {
	src source
}

var _ AuthConfig = Auth{}

// GetAuthDomain returns the identity provider domain, e.g. "tenant.eu.auth0.com".
func (a Auth) GetAuthDomain() string {
	return a.src.get(authDomainVar, "")
}

func (a Auth) GetAuthClientID() string {
	return a.src.get(authClientIDVar, "")
}

func (a Auth) GetAuthClientSecret() string {
	return a.src.get(authClientSecretVar, "")
}

// GetAuthAudience returns the API identifier access tokens are requested for.
func (a Auth) GetAuthAudience() string {
	return a.src.get(authAudienceVar, "")
}

// GetRolesClaim returns the namespaced claim that carries the user's roles.
func (a Auth) GetRolesClaim() string {
	return a.src.get(authRolesClaimVar, "https://your-domain/roles")
}
