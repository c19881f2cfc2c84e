package server

import (
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/jrsteele09/go-patient-portal/internal/errors"
	"github.com/jrsteele09/go-patient-portal/patients"
	"github.com/rs/zerolog/log"
)

// PatientPageData is the template model of the patient details page
type PatientPageData struct {
	Patient           *patients.Patient
	ActiveMedications []patients.Medication
	Notice            string
}

// PatientFormData is the template model of the patient edit form
type PatientFormData struct {
	Patient *patients.Patient
	Genders []string
	Errors  map[string]string
	Error   string
}

// PatientDetailsHandler renders one patient (GET /patients/{id})
func (s *Server) PatientDetailsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patient, ok := s.loadPatient(w, r)
		if !ok {
			return
		}

		var notice string
		switch {
		case r.URL.Query().Has("uploaded"):
			notice = "File uploaded successfully!"
		case r.URL.Query().Has("updated"):
			notice = "Patient updated."
		}
		s.renderPatient(w, r, patient, notice)
	}
}

func (s *Server) renderPatient(w http.ResponseWriter, r *http.Request, patient *patients.Patient, notice string) {
	s.renderPage(w, r, http.StatusOK, "Patient Details", "patient.html", PatientPageData{
		Patient:           patient,
		ActiveMedications: patient.ActiveMedications(),
		Notice:            notice,
	})
}

// PatientEditGetHandler renders the demographics form (GET /patients/{id}/edit)
func (s *Server) PatientEditGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patient, ok := s.loadPatient(w, r)
		if !ok {
			return
		}
		s.renderPage(w, r, http.StatusOK, "Edit Patient", "patient_edit.html", PatientFormData{
			Patient: patient,
			Genders: patients.Genders,
		})
	}
}

// PatientEditPostHandler sends the changed demographics as a PATCH and shows
// the merged record (POST /patients/{id}/edit)
func (s *Server) PatientEditPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patient, ok := s.loadPatient(w, r)
		if !ok {
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		edited := *patient
		edited.Name = r.PostFormValue("name")
		edited.GivenName = r.PostFormValue("given_name")
		edited.FamilyName = r.PostFormValue("family_name")
		edited.DateOfBirth = formDateValue(r.PostFormValue("date_of_birth"), patient.DateOfBirth)
		edited.CountryOfBirth = r.PostFormValue("country_of_birth")
		edited.Gender = r.PostFormValue("gender")
		edited.Deceased = r.PostFormValue("deceased") == "on"
		edited.DeceasedDate = formDateValue(r.PostFormValue("deceased_date"), patient.DeceasedDate)
		if !edited.Deceased {
			edited.DeceasedDate = ""
		}

		update := patients.Diff(*patient, edited)
		if update.IsEmpty() {
			redirectSuccess(w, r, patientPath(patient.ID))
			return
		}

		updated, err := s.patientsClient(r).Update(r.Context(), *patient, update)
		if err != nil {
			form := PatientFormData{Patient: &edited, Genders: patients.Genders}
			var fieldErrs validation.Errors
			if errors.As(err, &fieldErrs) {
				form.Errors = fieldErrors(fieldErrs)
				s.renderPage(w, r, http.StatusBadRequest, "Edit Patient", "patient_edit.html", form)
				return
			}
			log.Err(err).Str("patient_id", patient.ID).Msg("Failed to update patient")
			form.Error = "Could not save the patient. Please try again."
			s.renderPage(w, r, http.StatusBadGateway, "Edit Patient", "patient_edit.html", form)
			return
		}

		s.renderPatient(w, r, updated, "Patient updated.")
	}
}

// loadPatient fetches the patient named by the {id} path value. On failure
// the response has been written and ok is false.
func (s *Server) loadPatient(w http.ResponseWriter, r *http.Request) (*patients.Patient, bool) {
	id := r.PathValue("id")
	patient, err := s.patientsClient(r).Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			s.renderPage(w, r, http.StatusNotFound, "Patient not found", "patient_not_found.html", nil)
			return nil, false
		}
		log.Err(err).Str("patient_id", id).Msg("Failed to fetch patient")
		s.renderPage(w, r, http.StatusBadGateway, "Patient", "api_error.html", nil)
		return nil, false
	}
	return patient, true
}

// formDateValue keeps current when the date input could not display it and
// so posted nothing back.
func formDateValue(posted, current string) string {
	if strings.TrimSpace(posted) == "" && current != "" && patients.FormDate(current) == "" {
		return current
	}
	return posted
}

// fieldErrors flattens ozzo validation errors keyed by JSON field name
func fieldErrors(errs validation.Errors) map[string]string {
	out := make(map[string]string, len(errs))
	for field, err := range errs {
		msg := err.Error()
		if msg != "" {
			msg = strings.ToUpper(msg[:1]) + msg[1:]
		}
		out[field] = msg
	}
	return out
}
