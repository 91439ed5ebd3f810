package domain

type Role string

const (
	// User can manage their own profiles and reviews.
	RoleUser Role = "user"
	// Admin can additionally manage the catalog and other users.
	RoleAdmin Role = "admin"
)

func IsValidRole(r string) bool {
	return r == string(RoleUser) || r == string(RoleAdmin)
}
