package models

import (
	"strings"
	"time"
)

const (
	RoleAdmin     = "admin"
	RoleLibrarian = "librarian"
	RoleMember    = "member"
)

// Profile mirrors the auth provider's user with the contact details captured on borrow.
// The ID is the provider's subject claim, stored as an opaque string and never generated here.
type Profile struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `gorm:"index" json:"email"`
	Phone     string    `json:"phone"`
	Role      string    `gorm:"default:'member';not null" json:"role"` // admin | librarian | member
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

// NormalizeRole maps unknown or empty roles to member.
func NormalizeRole(role string) string {
	role = strings.ToLower(strings.TrimSpace(role))
	switch role {
	case RoleAdmin, RoleLibrarian, RoleMember:
		return role
	default:
		return RoleMember
	}
}

// CanManageCatalog reports whether the role may add or remove titles.
func CanManageCatalog(role string) bool {
	return role == RoleAdmin || role == RoleLibrarian
}
