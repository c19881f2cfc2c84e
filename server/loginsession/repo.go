package loginsession

import (
	"time"

	"golang.org/x/oauth2"
)

// tokenRefreshSkew refreshes access tokens slightly before they expire.
const tokenRefreshSkew = 30 * time.Second

type Session struct {
	// Core identity
	ID     string
	UserID string
	Email  string
	Name   string
	Roles  []string

	// Tokens (refresh keeps the session alive, access is what the API sees)
	AccessToken  string
	RefreshToken string
	IDToken      string
	TokenExpiry  time.Time

	// Session management
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Token returns the session tokens in oauth2 form for refreshing.
func (s Session) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       s.TokenExpiry,
	}
}

// TokenValid reports whether the access token can be used as is at now.
func (s Session) TokenValid(now time.Time) bool {
	if s.AccessToken == "" {
		return false
	}
	return s.TokenExpiry.IsZero() || now.Add(tokenRefreshSkew).Before(s.TokenExpiry)
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type Repo interface {
	Upsert(sessionID string, session Session) error
	Get(sessionID string) (Session, error)
	Delete(sessionID string) error
	Count() int
	Purge(now time.Time) int
}
