package entity

import "time"

type Job struct {
	ID          uint64
	Title       string
	Description string
	PostedBy    uint64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Application struct {
	ID          uint64
	JobID       uint64
	ApplicantID uint64
	CoverLetter string
	CreatedAt   time.Time
}
