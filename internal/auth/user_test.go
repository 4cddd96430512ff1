// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trailhead Contributors

package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailhead-labs/trailhead/internal/auth"
	"github.com/trailhead-labs/trailhead/pkg/errutil"
)

func TestNewUser(t *testing.T) {
	t.Run("creates user with defaults", func(t *testing.T) {
		user, err := auth.NewUser("Alice", "A@X.com", "hash", "")
		require.NoError(t, err)
		assert.Equal(t, "Alice", user.Name)
		assert.Equal(t, "a@x.com", user.Email, "email is case-normalized")
		assert.Equal(t, auth.RoleUser, user.Role)
		assert.NotZero(t, user.ID)
		assert.Nil(t, user.PasswordChangedAt)
		assert.Nil(t, user.ResetTokenHash)
		assert.Nil(t, user.ResetTokenExpiresAt)
	})

	t.Run("accepts explicit role", func(t *testing.T) {
		user, err := auth.NewUser("Bob", "b@x.com", "hash", auth.RoleLeadGuide)
		require.NoError(t, err)
		assert.Equal(t, auth.RoleLeadGuide, user.Role)
	})

	tests := []struct {
		name     string
		userName string
		email    string
		hash     string
		role     auth.Role
	}{
		{name: "empty name", userName: "", email: "a@x.com", hash: "hash"},
		{name: "empty email", userName: "Alice", email: "", hash: "hash"},
		{name: "malformed email", userName: "Alice", email: "not-an-email", hash: "hash"},
		{name: "email without domain", userName: "Alice", email: "a@", hash: "hash"},
		{name: "empty password hash", userName: "Alice", email: "a@x.com", hash: ""},
		{name: "unknown role", userName: "Alice", email: "a@x.com", hash: "hash", role: "superuser"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := auth.NewUser(tt.userName, tt.email, tt.hash, tt.role)
			require.Error(t, err)
			assert.Nil(t, user)
			errutil.AssertErrorCode(t, err, "VALIDATION_FAILED")
		})
	}
}

func TestRoleAllowed(t *testing.T) {
	admins := []auth.Role{auth.RoleAdmin, auth.RoleLeadGuide}

	assert.True(t, auth.RoleAllowed(auth.RoleAdmin, admins))
	assert.True(t, auth.RoleAllowed(auth.RoleLeadGuide, admins))
	assert.False(t, auth.RoleAllowed(auth.RoleUser, admins))
	assert.False(t, auth.RoleAllowed(auth.RoleGuide, admins))
	assert.False(t, auth.RoleAllowed(auth.RoleAdmin, nil), "empty allow-set denies everyone")
}

func TestUser_PasswordChangedAfter(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("no recorded change is never stale", func(t *testing.T) {
		u := &auth.User{}
		assert.False(t, u.PasswordChangedAfter(issued))
	})

	t.Run("change before issuance is not stale", func(t *testing.T) {
		changed := issued.Add(-time.Minute)
		u := &auth.User{PasswordChangedAt: &changed}
		assert.False(t, u.PasswordChangedAfter(issued))
	})

	t.Run("change at issuance second is stale", func(t *testing.T) {
		changed := issued
		u := &auth.User{PasswordChangedAt: &changed}
		assert.True(t, u.PasswordChangedAfter(issued))
	})

	t.Run("change after issuance is stale", func(t *testing.T) {
		changed := issued.Add(time.Hour)
		u := &auth.User{PasswordChangedAt: &changed}
		assert.True(t, u.PasswordChangedAfter(issued))
	})

	t.Run("sub-second skew is ignored", func(t *testing.T) {
		// Issuance times travel in Unix seconds; a change 500ms after the
		// issuance second boundary still counts as the same second.
		changed := issued.Add(500 * time.Millisecond)
		u := &auth.User{PasswordChangedAt: &changed}
		assert.True(t, u.PasswordChangedAfter(issued))
	})
}

func TestUser_HasActiveReset(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	hash := "somehash"

	t.Run("no token", func(t *testing.T) {
		u := &auth.User{}
		assert.False(t, u.HasActiveReset(now))
	})

	t.Run("unexpired token", func(t *testing.T) {
		exp := now.Add(5 * time.Minute)
		u := &auth.User{ResetTokenHash: &hash, ResetTokenExpiresAt: &exp}
		assert.True(t, u.HasActiveReset(now))
	})

	t.Run("expired token", func(t *testing.T) {
		exp := now.Add(-time.Second)
		u := &auth.User{ResetTokenHash: &hash, ResetTokenExpiresAt: &exp}
		assert.False(t, u.HasActiveReset(now))
	})
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", auth.NormalizeEmail("  A@X.COM "))
	assert.Equal(t, "a@x.com", auth.NormalizeEmail("a@x.com"))
}
