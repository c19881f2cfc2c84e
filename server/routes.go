package server

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET /{$}", ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare(s.BridgeMiddleware)...))

	// LOGIN
	s.RegisterRouteHandler("GET "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteCallback, ChainMiddleware(s.OAuthCallbackHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteCallback, ChainMiddleware(s.OAuthCallbackHandler(), s.HTMLMiddleWare()...)) // For form_post response mode
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.SignOutHandler(), s.HTMLMiddleWare(s.BridgeMiddleware)...))

	// Patient routes (require a login session)
	s.RegisterRouteHandler("GET "+RoutePatientDetails, ChainMiddleware(s.PatientDetailsHandler(), s.HTMLMiddleWare(s.BridgeMiddleware, s.RequireSessionAuth())...))
	s.RegisterRouteHandler("GET "+RoutePatientEdit, ChainMiddleware(s.PatientEditGetHandler(), s.HTMLMiddleWare(s.BridgeMiddleware, s.RequireSessionAuth())...))
	s.RegisterRouteHandler("POST "+RoutePatientEdit, ChainMiddleware(s.PatientEditPostHandler(), s.HTMLMiddleWare(s.BridgeMiddleware, s.RequireSessionAuth())...))
	s.RegisterRouteHandler("GET "+RoutePatientUpload, ChainMiddleware(s.UploadFileGetHandler(), s.HTMLMiddleWare(s.BridgeMiddleware, s.RequireSessionAuth())...))
	s.RegisterRouteHandler("POST "+RoutePatientUpload, ChainMiddleware(s.UploadFilePostHandler(), s.HTMLMiddleWare(s.BridgeMiddleware, s.RequireSessionAuth())...))

	// Admin routes
	s.RegisterRouteHandler("GET "+RouteAdmin, ChainMiddleware(s.AdminHandler(), s.HTMLMiddleWare(s.BridgeMiddleware, s.RequireSessionAuth(), s.RequireRole(rolePlatformAdmin))...))

	s.RegisterRouteHandler("GET "+RouteStaticCSS, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))
	s.RegisterRouteHandler("/", ChainMiddleware(s.NotFoundHandler(), s.HTMLMiddleWare(s.BridgeMiddleware)...))
}

func (s *Server) serveFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filePath := strings.TrimPrefix(r.URL.Path, "/")
		if filePath == "" {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		err := StreamFile(w, r, filePath)
		if err != nil {
			log.Warn().Err(err).Str("path", filePath).Msg("static file not found")
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
	}
}
