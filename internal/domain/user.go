package domain

import "time"

// UserRole distinguishes citizens from government officials.
type UserRole string

const (
	UserRoleCitizen  UserRole = "citizen"
	UserRoleOfficial UserRole = "official"
)

// ValidRole reports whether the given role is one of the known values.
func ValidRole(r UserRole) bool {
	return r == UserRoleCitizen || r == UserRoleOfficial
}

// User is the domain model for registered accounts.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	Location     string
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
