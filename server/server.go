package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-patient-portal/authbridge"
	"github.com/jrsteele09/go-patient-portal/authfetch"
	"github.com/jrsteele09/go-patient-portal/blobstore"
	"github.com/jrsteele09/go-patient-portal/identity"
	"github.com/jrsteele09/go-patient-portal/internal/config"
	"github.com/jrsteele09/go-patient-portal/patients"
	"github.com/jrsteele09/go-patient-portal/server/authflowrepo"
	"github.com/jrsteele09/go-patient-portal/server/loginsession"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// Authenticator is the identity provider as seen by the portal.
type Authenticator interface {
	AuthCodeURL(ctx context.Context, state, nonce, verifier string) (string, error)
	Exchange(ctx context.Context, code, verifier, nonce string) (*identity.Identity, error)
	TokenSource(ctx context.Context, token *oauth2.Token) (oauth2.TokenSource, error)
	LogoutURL(ctx context.Context, returnTo, idTokenHint string) (string, error)
}

var _ Authenticator = (*identity.Provider)(nil)

type Server struct {
	env           string // Environment (e.g., "DEV", "PROD")
	mux           *http.ServeMux
	routes        []string
	config        config.Config
	authn         Authenticator
	uploader      blobstore.Uploader
	httpClient    *http.Client
	loginSessions loginsession.Repo
	authState     authflowrepo.Repo
}

type Option func(*Server)

// WithHTTPClient sets the client used for remote API calls.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Server) {
		s.httpClient = client
	}
}

func New(config config.Config, authn Authenticator, uploader blobstore.Uploader, loginSessions loginsession.Repo, authState authflowrepo.Repo, options ...Option) (*Server, error) {
	if authn == nil {
		return nil, fmt.Errorf("[Server New] authenticator is required")
	}
	if uploader == nil {
		return nil, fmt.Errorf("[Server New] uploader is required")
	}

	s := &Server{
		env:           config.GetEnv(),
		mux:           http.NewServeMux(),
		config:        config,
		authn:         authn,
		uploader:      uploader,
		httpClient:    http.DefaultClient,
		loginSessions: loginSessions,
		authState:     authState,
	}
	for _, opt := range options {
		opt(s)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

// RunJanitor purges expired login sessions and abandoned login flows until
// ctx is done.
func (s *Server) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			sessions := s.loginSessions.Purge(now)
			flows := s.authState.Purge(now.Add(-s.config.GetAuthFlowTimeout()))
			if sessions > 0 || flows > 0 {
				log.Debug().Int("sessions", sessions).Int("login_flows", flows).Msg("purged expired state")
			}
		}
	}
}

// patientsClient builds an API client that authenticates through the
// request's bridge.
func (s *Server) patientsClient(r *http.Request) *patients.Client {
	bridge := authbridge.FromContext(r.Context())
	if bridge == nil {
		bridge = authbridge.New()
	}
	fetch := authfetch.New(bridge, authfetch.WithHTTPClient(s.httpClient), authfetch.WithLogger(log.Logger))
	return patients.NewClient(s.config.GetAPIURL(), fetch)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Info().Msgf("[%-19s] %s", displayMethod, path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
