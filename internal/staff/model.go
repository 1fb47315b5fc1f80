package staff

import "time"

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleSupport Role = "SUPPORT"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleSupport:
		return true
	}
	return false
}

type Staff struct {
	ID           uint
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PasswordReset is a single-use token emailed to a staff member.
type PasswordReset struct {
	ID        uint
	StaffID   uint
	Token     string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}
