package postgres

import (
	"database/sql"
	"time"
)

// userRow mirrors the users table.
type userRow struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         string
	RefreshToken sql.NullString
	CreatedAt    time.Time
}
