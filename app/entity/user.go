package entity

import (
	"database/sql"
	"time"
)

type User struct {
	ID                  uint64
	FirstName           string
	LastName            string
	Email               string
	PasswordHash        string
	About               string
	PasswordChangedAt   sql.NullTime
	ResetTokenHash      sql.NullString
	ResetTokenExpiresAt sql.NullTime
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
