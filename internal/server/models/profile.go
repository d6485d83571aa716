package models

import "time"

// Profile is keyed by the owning user id.
type Profile struct {
	UserID     string
	FullName   string
	StudentID  string
	Department string
	UpdatedAt  time.Time
}
