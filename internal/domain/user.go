package domain

type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         string

	// RefreshToken is the single currently-valid refresh token for this
	// user, or "" when no session exists. Issuing a new one overwrites
	// the previous one.
	RefreshToken string
}
