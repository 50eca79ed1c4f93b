package domain

import "time"

// Role is the authority granted to a member.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Credential is the fully materialized login record of a member.
type Credential struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	Verified     bool
	DeletedAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsDeleted reports whether the member has been soft deleted.
func (c *Credential) IsDeleted() bool {
	return c.DeletedAt != nil
}
