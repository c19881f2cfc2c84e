package server

import "net/url"

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteHome = "/"

	// Auth Routes - Login & Logout
	RouteAuthLogin  = "/auth/login"
	RouteAuthLogout = "/auth/logout"
	RouteCallback   = "/callback"

	// Patient Routes
	RoutePatientDetails = "/patients/{id}"
	RoutePatientEdit    = "/patients/{id}/edit"
	RoutePatientUpload  = "/patients/{id}/upload"

	// Admin Routes
	RouteAdmin = "/admin"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
)

func patientPath(id string) string {
	return "/patients/" + url.PathEscape(id)
}
