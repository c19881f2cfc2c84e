package server

import (
	"mime"
	"net/http"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/jrsteele09/go-patient-portal/patients"
	"github.com/rs/zerolog/log"
)

const maxUploadMemory = 32 << 20

// UploadPageData is the template model of the upload form
type UploadPageData struct {
	PatientID string
	FileTypes []patients.FileType
	FileType  patients.FileType
	Error     string
}

// uploadForm is the validated upload submission
type uploadForm struct {
	FileName string
	FileType patients.FileType
}

func (f uploadForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.FileName, validation.Required),
		validation.Field(&f.FileType, validation.Required, validation.In(fileTypeValues()...)),
	)
}

func fileTypeValues() []interface{} {
	values := make([]interface{}, len(patients.FileTypes))
	for i, t := range patients.FileTypes {
		values[i] = t
	}
	return values
}

// UploadFileGetHandler renders the upload form (GET /patients/{id}/upload)
func (s *Server) UploadFileGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderUpload(w, r, http.StatusOK, patients.DefaultFileType, "")
	}
}

// UploadFilePostHandler asks the API for an upload URL and writes the file
// straight to blob storage (POST /patients/{id}/upload)
func (s *Server) UploadFilePostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		if err := r.ParseMultipartForm(maxUploadMemory); err != nil && err != http.ErrNotMultipart {
			s.renderUpload(w, r, http.StatusBadRequest, patients.DefaultFileType, "Please select a file.")
			return
		}

		form := uploadForm{FileType: patients.FileType(r.FormValue("file_type"))}
		file, header, err := r.FormFile("file")
		if err == nil {
			defer file.Close()
			form.FileName = header.Filename
		}
		if err := form.Validate(); err != nil {
			fileType := form.FileType
			if fileType == "" {
				fileType = patients.DefaultFileType
			}
			msg := "Please select a file."
			if errs, ok := err.(validation.Errors); ok && errs["FileName"] == nil {
				msg = "Please choose a valid file type."
			}
			s.renderUpload(w, r, http.StatusBadRequest, fileType, msg)
			return
		}

		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = mime.TypeByExtension(filepath.Ext(header.Filename))
		}

		info, err := s.patientsClient(r).RequestUpload(r.Context(), id, form.FileName, form.FileType)
		if err == nil {
			log.Debug().Str("patient_id", id).Str("file_url", info.FileURL).Msg("received upload url")
			err = s.uploader.Upload(r.Context(), info.FileURL, contentType, file)
		}
		if err != nil {
			log.Err(err).Str("patient_id", id).Msg("File upload failed")
			s.renderUpload(w, r, http.StatusBadGateway, form.FileType, "File upload failed. Please try again.")
			return
		}

		log.Info().Str("patient_id", id).Str("file_type", string(form.FileType)).Msg("file uploaded")
		redirectSuccess(w, r, patientPath(id)+"?uploaded=1")
	}
}

func (s *Server) renderUpload(w http.ResponseWriter, r *http.Request, status int, fileType patients.FileType, errMsg string) {
	s.renderPage(w, r, status, "Upload File", "upload.html", UploadPageData{
		PatientID: r.PathValue("id"),
		FileTypes: patients.FileTypes,
		FileType:  fileType,
		Error:     errMsg,
	})
}
