package api

import "time"

// Empty is used by methods that return nothing.
type Empty struct{}

// TokenResponse is returned by every call that establishes or extends a
// session.
type TokenResponse struct {
	UserID          string    `json:"user_id"`
	Email           string    `json:"email"`
	AccessToken     string    `json:"access_token"`
	RefreshToken    string    `json:"refresh_token"`
	AccessExpiresAt time.Time `json:"access_expires_at"`
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type SignOutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RecordFields are the ten free-text fields of a lab record.
type RecordFields struct {
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

type Record struct {
	ID        string       `json:"id"`
	OwnerID   string       `json:"owner_id"`
	Fields    RecordFields `json:"fields"`
	CreatedAt time.Time    `json:"created_at"`
}

type ListRecordsRequest struct{}

type ListRecordsResponse struct {
	Records []Record `json:"records"`
}

type CreateRecordRequest struct {
	Fields RecordFields `json:"fields"`
}

type CreateRecordResponse struct {
	ID string `json:"id"`
}

type DeleteRecordRequest struct {
	ID string `json:"id"`
}

type Profile struct {
	UserID     string `json:"user_id"`
	FullName   string `json:"full_name"`
	StudentID  string `json:"student_id"`
	Department string `json:"department"`
}

type GetProfileRequest struct{}

type UpsertProfileRequest struct {
	FullName   string `json:"full_name"`
	StudentID  string `json:"student_id"`
	Department string `json:"department"`
}
