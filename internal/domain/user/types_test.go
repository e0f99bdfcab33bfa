package user_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lgu-facilities/internal/domain/user"
)

func TestNewRole_AcceptsStoredValues(t *testing.T) {
	// The users table stores roles as lowercase strings, so every
	// value the database can hold must round-trip through NewRole.
	cases := map[string]user.Role{
		"resident": user.RoleResident,
		"staff":    user.RoleStaff,
		"admin":    user.RoleAdmin,
	}
	for stored, want := range cases {
		role, err := user.NewRole(stored)
		require.NoError(t, err, "stored value %q", stored)
		assert.Equal(t, want, role)
	}
}

func TestNewRole_NormalizesCase(t *testing.T) {
	role, err := user.NewRole("Staff")
	require.NoError(t, err)
	assert.Equal(t, user.RoleStaff, role)
}

func TestNewRole_RejectsUnknown(t *testing.T) {
	_, err := user.NewRole("superuser")
	assert.ErrorIs(t, err, user.ErrInvalidRole)
}

func TestRolePrivileged(t *testing.T) {
	assert.False(t, user.RoleResident.Privileged())
	assert.True(t, user.RoleStaff.Privileged())
	assert.True(t, user.RoleAdmin.Privileged())
}
