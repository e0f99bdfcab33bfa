package user

import (
	"errors"
	"strings"
)

var ErrInvalidRole = errors.New("invalid role")

// Role values match the lowercase enum stored in the users table.
type Role string

const (
	RoleResident Role = "resident"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleResident, RoleStaff, RoleAdmin:
		return true
	default:
		return false
	}
}

// Privileged roles skip the ID-verification requirement during auto-approval.
func (r Role) Privileged() bool {
	return r == RoleStaff || r == RoleAdmin
}

func NewRole(s string) (Role, error) {
	role := Role(strings.ToLower(s))
	if !role.IsValid() {
		return "", ErrInvalidRole
	}
	return role, nil
}
