package domain

import "time"

// UserRole enumerates supported roles.
type UserRole string

const (
	UserRoleDonor UserRole = "donor"
	UserRoleAdmin UserRole = "admin"
)

// User represents an authenticated account.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is the acting caller of an operation, carried explicitly
// into services rather than read from ambient state. Anonymous callers
// have a nil UserID and an empty role.
type Identity struct {
	UserID *int64
	Role   UserRole
}

// Anonymous reports whether the identity carries no authenticated user.
func (i Identity) Anonymous() bool {
	return i.UserID == nil
}

// IsAdmin reports whether the identity may perform moderation.
func (i Identity) IsAdmin() bool {
	return i.Role == UserRoleAdmin
}
