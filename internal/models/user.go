package models

import "time"

// Role enumerates backend account roles.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is the identity returned by GET /users/me and the admin listing.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// IsAdmin reports whether the account carries the admin role.
// The check is advisory: the backend enforces authorization on every
// privileged route regardless of what the client believes.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
