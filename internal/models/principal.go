package models

import "strings"

// Role tags a principal as a teacher or an administrator.
type Role string

const (
	// RoleTeacher is the default role for registered principals.
	RoleTeacher Role = "teacher"
	// RoleAdmin grants directory management.
	RoleAdmin Role = "admin"
)

// ParseRole normalises role strings coming from tokens or storage.
func ParseRole(value string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleTeacher
	}
}

// Principal is an authenticated teacher or administrator.
//
// PasswordHash never leaves the directory: it is excluded from JSON so that
// session records and API snapshots cannot carry it.
type Principal struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Bio          string `json:"bio"`
	AvatarURL    string `json:"avatar_url"`
	IsApproved   bool   `json:"is_approved"`
	Role         Role   `json:"role"`
}

// IsAdmin reports whether the principal carries the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Public returns a copy without credentials.
func (p Principal) Public() Principal {
	p.PasswordHash = ""
	return p
}

// PrincipalChanges carries the mergeable profile fields. Nil means untouched.
type PrincipalChanges struct {
	Name         *string
	Email        *string
	Bio          *string
	AvatarURL    *string
	PasswordHash *string
}

// Apply merges the non-nil fields into the principal.
func (c PrincipalChanges) Apply(p *Principal) {
	if c.Name != nil {
		p.Name = *c.Name
	}
	if c.Email != nil {
		p.Email = *c.Email
	}
	if c.Bio != nil {
		p.Bio = *c.Bio
	}
	if c.AvatarURL != nil {
		p.AvatarURL = *c.AvatarURL
	}
	if c.PasswordHash != nil {
		p.PasswordHash = *c.PasswordHash
	}
}
