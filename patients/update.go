package patients

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/jrsteele09/go-patient-portal/internal/utils"
)

const dateLayout = "2006-01-02"

// Genders accepted by the API.
var Genders = []string{"male", "female", "other", "unknown"}

// PatientUpdate is a partial demographic update. Nil fields are left unchanged.
type PatientUpdate struct {
	Name           *string `json:"name,omitempty"`
	GivenName      *string `json:"given_name,omitempty"`
	FamilyName     *string `json:"family_name,omitempty"`
	DateOfBirth    *string `json:"date_of_birth,omitempty"`
	CountryOfBirth *string `json:"country_of_birth,omitempty"`
	Gender         *string `json:"gender,omitempty"`
	Deceased       *bool   `json:"deceased,omitempty"`
	DeceasedDate   *string `json:"deceased_date,omitempty"`
}

func (u PatientUpdate) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.Name, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&u.GivenName, validation.Length(0, 100)),
		validation.Field(&u.FamilyName, validation.Length(0, 100)),
		validation.Field(&u.DateOfBirth, validation.Date(dateLayout)),
		validation.Field(&u.CountryOfBirth, validation.Length(0, 100)),
		validation.Field(&u.Gender, validation.In(toAny(Genders)...)),
		validation.Field(&u.DeceasedDate,
			validation.Date(dateLayout),
			validation.By(blankUnlessDeceased(u.Deceased)),
		),
	)
}

func blankUnlessDeceased(deceased *bool) validation.RuleFunc {
	return func(value interface{}) error {
		var date string
		switch v := value.(type) {
		case *string:
			date = utils.Value(v)
		case string:
			date = v
		}
		if date == "" {
			return nil
		}
		if deceased != nil && !*deceased {
			return errors.New("must be blank unless deceased")
		}
		return nil
	}
}

// IsEmpty reports whether the update carries no changes.
func (u PatientUpdate) IsEmpty() bool {
	return u == PatientUpdate{}
}

// Merge applies u to a copy of p. It is used after a successful write when
// the API does not echo the updated record.
func Merge(p Patient, u PatientUpdate) Patient {
	setString(&p.Name, u.Name)
	setString(&p.GivenName, u.GivenName)
	setString(&p.FamilyName, u.FamilyName)
	setString(&p.DateOfBirth, u.DateOfBirth)
	setString(&p.CountryOfBirth, u.CountryOfBirth)
	setString(&p.Gender, u.Gender)
	setString(&p.DeceasedDate, u.DeceasedDate)
	if u.Deceased != nil {
		p.Deceased = *u.Deceased
		if !p.Deceased {
			p.DeceasedDate = ""
		}
	}
	return p
}

// Diff returns the update that turns before into after for the editable fields.
func Diff(before, after Patient) PatientUpdate {
	var u PatientUpdate
	u.Name = changed(before.Name, after.Name)
	u.GivenName = changed(before.GivenName, after.GivenName)
	u.FamilyName = changed(before.FamilyName, after.FamilyName)
	u.DateOfBirth = changedDate(before.DateOfBirth, after.DateOfBirth)
	u.CountryOfBirth = changed(before.CountryOfBirth, after.CountryOfBirth)
	u.Gender = changed(before.Gender, after.Gender)
	u.DeceasedDate = changedDate(before.DeceasedDate, after.DeceasedDate)
	if before.Deceased != after.Deceased {
		u.Deceased = utils.Ptr(after.Deceased)
	}
	return u
}

func changed(before, after string) *string {
	after = strings.TrimSpace(after)
	if before == after {
		return nil
	}
	return &after
}

// changedDate treats after as unchanged when it is the form rendering of before.
func changedDate(before, after string) *string {
	after = strings.TrimSpace(after)
	if after != "" && FormDate(before) == after {
		return nil
	}
	return changed(before, after)
}

// FormDate returns an API date as YYYY-MM-DD, the only value a date input
// accepts, or "" when s is not a date.
func FormDate(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range []string{dateLayout, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(dateLayout)
		}
	}
	return ""
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func toAny(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
