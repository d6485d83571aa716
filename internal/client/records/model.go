package records

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Fields are the ten free-text parts of a lab record, in form order.
type Fields struct {
	StudentName     string `json:"student_name"`
	RollNumber      string `json:"roll_number"`
	Subject         string `json:"subject"`
	ExperimentTitle string `json:"experiment_title"`
	ExperimentAim   string `json:"experiment_aim"`
	Theory          string `json:"theory"`
	Tools           string `json:"tools"`
	Code            string `json:"code"`
	Output          string `json:"output"`
	Conclusion      string `json:"conclusion"`
}

// Validate requires every field to be non-empty.
func (f Fields) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.StudentName, validation.Required),
		validation.Field(&f.RollNumber, validation.Required),
		validation.Field(&f.Subject, validation.Required),
		validation.Field(&f.ExperimentTitle, validation.Required),
		validation.Field(&f.ExperimentAim, validation.Required),
		validation.Field(&f.Theory, validation.Required),
		validation.Field(&f.Tools, validation.Required),
		validation.Field(&f.Code, validation.Required),
		validation.Field(&f.Output, validation.Required),
		validation.Field(&f.Conclusion, validation.Required),
	)
}

type Record struct {
	ID        string
	OwnerID   string
	Fields    Fields
	CreatedAt time.Time
}

type ProfileFields struct {
	FullName   string
	StudentID  string
	Department string
}

// Profile is keyed by the owning user id.
type Profile struct {
	ID string
	ProfileFields
}
