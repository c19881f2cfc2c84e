package patients

// Permission describes the viewer's relationship to a patient record.
type Permission struct {
	ID               string `json:"id"`
	UserID           string `json:"user_id"`
	RelationshipType string `json:"relationship_type"`
	AccessLevel      string `json:"access_level"`
	ConsentDate      string `json:"consent_date"`
	ConsentVersion   int    `json:"consent_version"`
	ConsentSigned    bool   `json:"consent_signed"`
	IsActive         bool   `json:"is_active"`
}

// Audit fields shared by every versioned record.
type Audit struct {
	ID            string `json:"id"`
	CreatedAt     string `json:"created_at"`
	CreatedBy     string `json:"created_by"`
	Version       int    `json:"version"`
	LastUpdatedAt string `json:"last_updated_at"`
	LastUpdatedBy string `json:"last_updated_by"`
	IsDeleted     bool   `json:"is_deleted"`
}

type GeneMutationInfo struct {
	SPDI  []string `json:"spdi"`
	ID    []string `json:"id"`
	HGVSp []string `json:"hgvsp"`
	HGVSc []string `json:"hgvsc"`
	HGVSg []string `json:"hgvsg"`
	Input string   `json:"input"`
}

type GeneMutationCollection struct {
	MutationID   string           `json:"mutation_id"`
	MutationInfo GeneMutationInfo `json:"mutation_info"`
}

type GeneMutation struct {
	GeneTranscript string         `json:"gene_transcript"`
	GeneVariation  string         `json:"gene_variation"`
	Confidence     float64        `json:"confidence"`
	MutalyzerModel map[string]any `json:"mutalyzer_model"`
}

type ProteinMutation struct {
	ProteinTranscript string         `json:"protein_transcript"`
	ProteinVariation  string         `json:"protein_variation"`
	Confidence        float64        `json:"confidence"`
	MutalyzerModel    map[string]any `json:"mutalyzer_model"`
}

type Mutation struct {
	Audit
	GeneMutationCollection GeneMutationCollection `json:"gene_mutation_collection"`
	ProteinMutation        ProteinMutation        `json:"protein_mutation"`
	Confidence             float64                `json:"confidence"`
	ValidationStatus       string                 `json:"validation_status"`
}

type Medication struct {
	Audit
	Name          string  `json:"name"`
	Dose          float64 `json:"dose"`
	DoseUnit      string  `json:"dose_unit"`
	Frequency     float64 `json:"frequency"`
	FrequencyUnit string  `json:"frequency_unit"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	IsActive      bool    `json:"is_active"`
	Notes         string  `json:"notes"`
}

type File struct {
	Audit
	FullPath              string `json:"full_path"`
	FileURL               string `json:"file_url"`
	FileFormat            string `json:"file_format"`
	FileSize              int64  `json:"file_size"`
	FileType              string `json:"file_type"`
	ValidationStatus      string `json:"validation_status"`
	ValidationDate        string `json:"validation_date"`
	ValidationDescription string `json:"validation_description"`
	Description           string `json:"description"`
}

type Survey struct {
	Audit
	PatientID                string         `json:"patient_id"`
	SurveyVersionID          string         `json:"survey_version_id"`
	StartDate                string         `json:"start_date"`
	EndDate                  string         `json:"end_date"`
	MultipleResponsesAllowed bool           `json:"multiple_responses_allowed"`
	Responses                []any          `json:"responses"`
	SurveyContent            map[string]any `json:"survey_content"`
}

// Patient is a record as served by the remote API.
type Patient struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	GivenName      string       `json:"given_name"`
	FamilyName     string       `json:"family_name"`
	DateOfBirth    string       `json:"date_of_birth"`
	CountryOfBirth string       `json:"country_of_birth"`
	Gender         string       `json:"gender"`
	Deceased       bool         `json:"deceased"`
	DeceasedDate   string       `json:"deceased_date"`
	Permission     Permission   `json:"permission"`
	Mutations      []Mutation   `json:"mutations"`
	Medications    []Medication `json:"medications"`
	Files          []File       `json:"files"`
	Surveys        []Survey     `json:"surveys"`
}

// ActiveMedications returns medications that are active and not deleted.
func (p Patient) ActiveMedications() []Medication {
	var active []Medication
	for _, m := range p.Medications {
		if m.IsActive && !m.IsDeleted {
			active = append(active, m)
		}
	}
	return active
}

// FileType is the category the API files an upload under.
type FileType string

const (
	FileTypeGeneticReport FileType = "genetic-report"
	FileTypeDoctorReport  FileType = "doctor-report"
	FileTypeGeneric       FileType = "generic"

	DefaultFileType = FileTypeGeneticReport
)

// FileTypes lists the upload categories in display order.
var FileTypes = []FileType{FileTypeGeneticReport, FileTypeDoctorReport, FileTypeGeneric}

func (f FileType) Label() string {
	switch f {
	case FileTypeGeneticReport:
		return "Genetic Report"
	case FileTypeDoctorReport:
		return "Doctor Report"
	case FileTypeGeneric:
		return "Generic"
	}
	return string(f)
}

// UploadInfo is the response of the upload-file-info endpoint.
type UploadInfo struct {
	FileURL string `json:"file_url"`
}
