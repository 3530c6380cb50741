package domain

import "time"

// Roles assignable to users. RoleUser is the registration default,
// RoleAdmin unlocks the user management endpoints.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

type User struct {
	ID           string
	Name         string
	Email        string // stored lowercased, unique
	PasswordHash string // bcrypt encoded
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
