package server

import (
	"net/http"

	"github.com/jrsteele09/go-patient-portal/patients"
	"github.com/rs/zerolog/log"
)

// HomePageData is the template model of the home page
type HomePageData struct {
	IsAuthenticated bool
	UserName        string
	Patients        []patients.Patient
	Error           string
}

// IndexHandler renders the home page with the caller's patients
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := HomePageData{}

		if session := sessionFromContext(r.Context()); session != nil {
			data.IsAuthenticated = true
			data.UserName = session.Name

			list, err := s.patientsClient(r).List(r.Context())
			if err != nil {
				log.Err(err).Msg("Failed to fetch patients")
				data.Error = "Could not load patients. Please try again later."
			}
			data.Patients = list
		}

		s.renderPage(w, r, http.StatusOK, "Home", "home.html", data)
	}
}

// NotFoundHandler renders the Not Found page for unknown routes
func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderPage(w, r, http.StatusNotFound, "Not Found", "not_found.html", nil)
	}
}
