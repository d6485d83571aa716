package models

import "time"

// LabRecord is one lab write-up. Every column except the ids and the
// timestamp is free text.
type LabRecord struct {
	ID              string
	UserID          string
	StudentName     string
	RollNumber      string
	Subject         string
	ExperimentTitle string
	ExperimentAim   string
	Theory          string
	Tools           string
	Code            string
	Output          string
	Conclusion      string
	CreatedAt       time.Time
}
