package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-patient-portal/authbridge"
	"github.com/jrsteele09/go-patient-portal/server/authflowrepo"
	"github.com/jrsteele09/go-patient-portal/server/loginsession"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

var timeNow = time.Now

// LoginHandler starts the redirect login with the identity provider (GET /auth/login)
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := uuid.NewString()
		nonce := uuid.NewString()
		verifier := oauth2.GenerateVerifier()

		authState := &authflowrepo.AuthFlowState{
			CodeVerifier: verifier,
			Nonce:        nonce,
			ReturnURL:    safeReturnURL(r.URL.Query().Get("return_to")),
			CreatedAt:    timeNow(),
		}
		if err := s.authState.Upsert(state, authState); err != nil {
			log.Err(err).Msg("Failed to store login state")
			http.Error(w, "Failed to start login", http.StatusInternalServerError)
			return
		}

		authURL, err := s.authn.AuthCodeURL(r.Context(), state, nonce, verifier)
		if err != nil {
			log.Err(err).Msg("Failed to build authorization URL")
			http.Error(w, "Failed to start login", http.StatusBadGateway)
			return
		}
		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

// OAuthCallbackHandler completes the login and creates the login session
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// r.FormValue works for both query params and POST form data
		state := r.FormValue("state")
		code := r.FormValue("code")
		errorParam := r.FormValue("error")
		errorDesc := r.FormValue("error_description")

		if errorParam != "" {
			http.Error(w, fmt.Sprintf("Authorization failed: %s - %s", errorParam, errorDesc), http.StatusBadRequest)
			return
		}

		if code == "" || state == "" {
			http.Error(w, "Missing code or state parameter", http.StatusBadRequest)
			return
		}

		authState, err := s.authState.Take(state)
		if err != nil || authState == nil {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}
		if timeNow().Sub(authState.CreatedAt) > s.config.GetAuthFlowTimeout() {
			http.Error(w, "Login expired, please try again", http.StatusBadRequest)
			return
		}

		ident, err := s.authn.Exchange(r.Context(), code, authState.CodeVerifier, authState.Nonce)
		if err != nil {
			log.Err(err).Msg("Login callback failed")
			http.Error(w, "Login failed", http.StatusUnauthorized)
			return
		}

		now := timeNow()
		maxAge := s.config.GetMaxSessionAge()
		sessionID := uuid.NewString()
		loginSession := loginsession.Session{
			UserID:       ident.Subject,
			Email:        ident.Email,
			Name:         ident.Name,
			Roles:        ident.Roles,
			AccessToken:  ident.Token.AccessToken,
			RefreshToken: ident.Token.RefreshToken,
			IDToken:      ident.IDToken,
			TokenExpiry:  ident.Token.Expiry,
			ExpiresAt:    now.Add(maxAge),
			CreatedAt:    now,
		}

		if err := s.loginSessions.Upsert(sessionID, loginSession); err != nil {
			log.Err(err).Msg("Failed to create session")
			http.Error(w, "Failed to create session", http.StatusInternalServerError)
			return
		}

		s.SetLoginSessionCookie(w, sessionID, r, int(maxAge.Seconds()))
		log.Info().Str("user_id", ident.Subject).Msg("user logged in")

		redirectSuccess(w, r, authState.ReturnURL)
	}
}

// logout drops the login session and sends the user agent through the
// identity provider logout back to the portal origin.
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	returnTo := s.config.GetBaseURL()

	var idTokenHint string
	if session := sessionFromContext(r.Context()); session != nil {
		idTokenHint = session.IDToken
		if err := s.loginSessions.Delete(session.ID); err != nil {
			log.Err(err).Msg("Failed to delete login session")
		}
	}
	s.ClearLoginSessionCookie(w, r)

	logoutURL, err := s.authn.LogoutURL(r.Context(), returnTo, idTokenHint)
	if err != nil {
		log.Err(err).Msg("Logout: Failed to build provider logout URL")
		redirectSuccess(w, r, RouteHome)
		return
	}
	redirectSuccess(w, r, logoutURL)
}

// SignOutHandler is the sign-out button of rendered pages (POST /auth/logout).
// It goes through the request's bridge, whose logout ends the session.
func (s *Server) SignOutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bridge := authbridge.FromContext(r.Context())
		if bridge == nil {
			s.logout(w, r)
			return
		}
		if err := bridge.Logout(r.Context()); err != nil {
			log.Err(err).Msg("Sign out failed")
			s.logout(w, r)
		}
	}
}
