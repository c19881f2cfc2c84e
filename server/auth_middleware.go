package server

import (
	"context"
	"net/http"
	"slices"

	"github.com/jrsteele09/go-patient-portal/authbridge"
	"github.com/jrsteele09/go-patient-portal/identity"
	"github.com/jrsteele09/go-patient-portal/server/loginsession"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeySession stores the *loginsession.Session of the request
	ContextKeySession ContextKey = "session"
)

const rolePlatformAdmin = identity.RolePlatformAdmin

// sessionFromContext returns the login session or nil when not logged in.
func sessionFromContext(ctx context.Context) *loginsession.Session {
	session, _ := ctx.Value(ContextKeySession).(*loginsession.Session)
	return session
}

// BridgeMiddleware loads the login session (if any) and places an auth bridge
// initialised for this request on the context.
func (s *Server) BridgeMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := s.loadSession(w, r)

		ctx := r.Context()
		if session != nil {
			ctx = context.WithValue(ctx, ContextKeySession, session)
		}
		r = r.WithContext(ctx)

		bridge := authbridge.New(authbridge.WithLogger(log.Logger))
		bridge.Initialize(&requestSession{s: s, w: w, r: r, session: session})
		r = r.WithContext(authbridge.NewContext(ctx, bridge))

		next(w, r)
	}
}

func (s *Server) loadSession(w http.ResponseWriter, r *http.Request) *loginsession.Session {
	cookie, err := r.Cookie(loggedInSessionID)
	if err != nil || cookie.Value == "" {
		return nil
	}

	session, err := s.loginSessions.Get(cookie.Value)
	if err != nil {
		s.ClearLoginSessionCookie(w, r)
		return nil
	}
	now := timeNow()
	// A session that can neither use nor refresh its access token is over.
	if session.Expired(now) || (!session.TokenValid(now) && session.RefreshToken == "") {
		if err := s.loginSessions.Delete(cookie.Value); err != nil {
			log.Err(err).Msg("Failed to delete expired session")
		}
		s.ClearLoginSessionCookie(w, r)
		return nil
	}
	return &session
}

// RequireSessionAuth sends requests without a login session through the login
// redirect of the request's bridge. Must run after BridgeMiddleware.
func (s *Server) RequireSessionAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if sessionFromContext(r.Context()) != nil {
				next(w, r)
				return
			}
			bridge := authbridge.FromContext(r.Context())
			if bridge == nil {
				http.Redirect(w, r, RouteAuthLogin, http.StatusSeeOther)
				return
			}
			if err := bridge.Login(r.Context()); err != nil {
				log.Err(err).Msg("Login redirect failed")
				http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
			}
		}
	}
}

// RequireRole renders the Unauthorized page unless the session has one of roles.
func (s *Server) RequireRole(roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			session := sessionFromContext(r.Context())
			if session != nil && slices.ContainsFunc(roles, func(role string) bool {
				return identity.HasRole(session.Roles, role)
			}) {
				next(w, r)
				return
			}
			s.renderPage(w, r, http.StatusForbidden, "Unauthorized", "unauthorized.html", nil)
		}
	}
}
