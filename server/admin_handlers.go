package server

import (
	"net/http"

	"github.com/jrsteele09/go-patient-portal/patients"
	"github.com/rs/zerolog/log"
)

// AdminPageData is the template model of the admin overview
type AdminPageData struct {
	ActiveSessions       int
	PatientCount         int
	FileCount            int
	FilesPendingReview   []PendingFile
	MutationsUnvalidated int
	Error                string
}

// PendingFile is a file whose validation has not completed
type PendingFile struct {
	PatientID   string
	PatientName string
	File        patients.File
}

const validationStatusValidated = "validated"

// AdminHandler renders the platform admin overview (GET /admin)
func (s *Server) AdminHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := AdminPageData{ActiveSessions: s.loginSessions.Count()}

		list, err := s.patientsClient(r).List(r.Context())
		if err != nil {
			log.Err(err).Msg("Admin: failed to fetch patients")
			data.Error = "Could not load patients. Please try again later."
		}

		data.PatientCount = len(list)
		for _, p := range list {
			for _, f := range p.Files {
				if f.IsDeleted {
					continue
				}
				data.FileCount++
				if f.ValidationStatus != validationStatusValidated {
					data.FilesPendingReview = append(data.FilesPendingReview, PendingFile{
						PatientID:   p.ID,
						PatientName: p.Name,
						File:        f,
					})
				}
			}
			for _, m := range p.Mutations {
				if !m.IsDeleted && m.ValidationStatus != validationStatusValidated {
					data.MutationsUnvalidated++
				}
			}
		}

		s.renderPage(w, r, http.StatusOK, "Admin", "admin.html", data)
	}
}
