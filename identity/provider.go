// Package identity integrates the portal with an OpenID Connect identity
// provider (Auth0 or any compliant issuer).
package identity

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-patient-portal/internal/errors"
	"golang.org/x/oauth2"
)

// Config is the identity provider registration of the portal.
type Config struct {
	Domain       string
	ClientID     string
	ClientSecret string
	Audience     string
	RedirectURL  string
	RolesClaim   string
	Scopes       []string
}

// Identity is the outcome of a completed login.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Roles   []string
	IDToken string
	Token   *oauth2.Token
}

// Provider lazily discovers the issuer on first use.
type Provider struct {
	config Config

	mu           sync.RWMutex
	oidcProvider *oidc.Provider
	oauth2Config *oauth2.Config
	verifier     *oidc.IDTokenVerifier
	endSession   string
}

func NewProvider(config Config) *Provider {
	if len(config.Scopes) == 0 {
		config.Scopes = []string{oidc.ScopeOpenID, "profile", "email", oidc.ScopeOfflineAccess}
	}
	return &Provider{config: config}
}

// IssuerURL returns https://{domain}/ unless the domain already carries a scheme.
func IssuerURL(domain string) string {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return ""
	}
	if !strings.HasPrefix(domain, "http://") && !strings.HasPrefix(domain, "https://") {
		domain = "https://" + domain
	}
	return strings.TrimSuffix(domain, "/") + "/"
}

func (p *Provider) discover(ctx context.Context) (*oauth2.Config, *oidc.IDTokenVerifier, error) {
	p.mu.RLock()
	if p.oauth2Config != nil {
		defer p.mu.RUnlock()
		return p.oauth2Config, p.verifier, nil
	}
	p.mu.RUnlock()

	provider, err := oidc.NewProvider(ctx, IssuerURL(p.config.Domain))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	var metadata struct {
		EndSessionEndpoint string `json:"end_session_endpoint"`
	}
	_ = provider.Claims(&metadata)

	oauth2Config := &oauth2.Config{
		ClientID:     p.config.ClientID,
		ClientSecret: p.config.ClientSecret,
		Endpoint:     provider.Endpoint(),
		RedirectURL:  p.config.RedirectURL,
		Scopes:       p.config.Scopes,
	}
	verifier := provider.Verifier(&oidc.Config{ClientID: p.config.ClientID})

	p.mu.Lock()
	defer p.mu.Unlock()
	p.oidcProvider = provider
	p.oauth2Config = oauth2Config
	p.verifier = verifier
	p.endSession = metadata.EndSessionEndpoint
	return oauth2Config, verifier, nil
}

// AuthCodeURL builds the authorization redirect with PKCE (S256) and nonce.
func (p *Provider) AuthCodeURL(ctx context.Context, state, nonce, verifier string) (string, error) {
	oauth2Config, _, err := p.discover(ctx)
	if err != nil {
		return "", err
	}
	opts := []oauth2.AuthCodeOption{
		oidc.Nonce(nonce),
		oauth2.S256ChallengeOption(verifier),
	}
	if p.config.Audience != "" {
		opts = append(opts, oauth2.SetAuthURLParam("audience", p.config.Audience))
	}
	return oauth2Config.AuthCodeURL(state, opts...), nil
}

// Exchange redeems the authorization code and verifies the ID token.
func (p *Provider) Exchange(ctx context.Context, code, verifier, nonce string) (*Identity, error) {
	oauth2Config, idVerifier, err := p.discover(ctx)
	if err != nil {
		return nil, err
	}

	token, err := oauth2Config.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.ErrMissingIDToken
	}

	idToken, err := idVerifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("ID token verification failed: %w", err)
	}
	if idToken.Nonce != nonce {
		return nil, errors.ErrInvalidNonce
	}

	var claims map[string]any
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to extract claims: %w", err)
	}

	if token.Expiry.IsZero() {
		token.Expiry = TokenExpiry(token.AccessToken)
	}

	roles := RolesFromClaims(claims, p.config.RolesClaim)
	roles = mergeRoles(roles, AccessTokenRoles(token.AccessToken, p.config.RolesClaim))

	return &Identity{
		Subject: idToken.Subject,
		Email:   stringClaim(claims, "email"),
		Name:    displayName(claims),
		Roles:   roles,
		IDToken: rawIDToken,
		Token:   token,
	}, nil
}

// TokenSource refreshes token silently when it expires.
func (p *Provider) TokenSource(ctx context.Context, token *oauth2.Token) (oauth2.TokenSource, error) {
	oauth2Config, _, err := p.discover(ctx)
	if err != nil {
		return nil, err
	}
	return oauth2Config.TokenSource(ctx, token), nil
}

// LogoutURL returns the provider logout redirect that lands on returnTo.
func (p *Provider) LogoutURL(ctx context.Context, returnTo, idTokenHint string) (string, error) {
	if _, _, err := p.discover(ctx); err != nil {
		return "", err
	}
	p.mu.RLock()
	endSession := p.endSession
	p.mu.RUnlock()

	if endSession != "" {
		query := url.Values{}
		query.Set("client_id", p.config.ClientID)
		query.Set("post_logout_redirect_uri", returnTo)
		if idTokenHint != "" {
			query.Set("id_token_hint", idTokenHint)
		}
		return endSession + "?" + query.Encode(), nil
	}
	return Auth0LogoutURL(p.config.Domain, p.config.ClientID, returnTo), nil
}

// Auth0LogoutURL is the /v2/logout endpoint used by tenants that do not
// advertise end_session_endpoint.
func Auth0LogoutURL(domain, clientID, returnTo string) string {
	query := url.Values{}
	query.Set("client_id", clientID)
	query.Set("returnTo", returnTo)
	return IssuerURL(domain) + "v2/logout?" + query.Encode()
}

func displayName(claims map[string]any) string {
	for _, key := range []string{"name", "nickname", "email", "sub"} {
		if v := stringClaim(claims, key); v != "" {
			return v
		}
	}
	return ""
}

// tokenLifetime is used when neither the token response nor the JWT carries an expiry.
const tokenLifetime = time.Hour
