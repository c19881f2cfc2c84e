package server

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-patient-portal/authbridge"
	"github.com/jrsteele09/go-patient-portal/internal/errors"
	"github.com/jrsteele09/go-patient-portal/server/loginsession"
	"github.com/rs/zerolog/log"
)

// requestSession is the bridge session for one HTTP request. Login and logout
// redirect the user agent of that request.
type requestSession struct {
	s       *Server
	w       http.ResponseWriter
	r       *http.Request
	session *loginsession.Session
}

var _ authbridge.Session = (*requestSession)(nil)

// AccessToken returns the session's access token, refreshing it through the
// identity provider when it has expired. The refreshed tokens are saved.
func (rs *requestSession) AccessToken(ctx context.Context) (string, error) {
	if rs.session == nil {
		return "", errors.ErrNotAuthenticated
	}
	now := timeNow()
	if rs.session.TokenValid(now) {
		return rs.session.AccessToken, nil
	}
	if rs.session.RefreshToken == "" {
		return "", errors.ErrSessionExpired
	}

	tokenSource, err := rs.s.authn.TokenSource(ctx, rs.session.Token())
	if err != nil {
		return "", err
	}
	token, err := tokenSource.Token()
	if err != nil {
		return "", errors.Wrapf(err, "refresh access token")
	}

	rs.session.AccessToken = token.AccessToken
	rs.session.TokenExpiry = token.Expiry
	if token.RefreshToken != "" {
		rs.session.RefreshToken = token.RefreshToken
	}
	if err := rs.s.loginSessions.Upsert(rs.session.ID, *rs.session); err != nil {
		log.Err(err).Msg("Failed to store refreshed tokens")
	}
	return token.AccessToken, nil
}

func (rs *requestSession) Login(context.Context) error {
	target := RouteAuthLogin + "?return_to=" + url.QueryEscape(rs.r.URL.RequestURI())
	redirectSuccess(rs.w, rs.r, target)
	return nil
}

func (rs *requestSession) Logout(context.Context) error {
	rs.s.logout(rs.w, rs.r)
	return nil
}
