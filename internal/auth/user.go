// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trailhead Contributors

package auth

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Role identifies a user's permission level.
type Role string

// Roles known to the platform.
const (
	RoleAdmin     Role = "admin"
	RoleUser      Role = "user"
	RoleGuide     Role = "guide"
	RoleLeadGuide Role = "lead-guide"
)

// DefaultRole is assigned when sign-up does not specify a role.
const DefaultRole = RoleUser

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleGuide, RoleLeadGuide:
		return true
	}
	return false
}

// RoleAllowed reports whether role is in the allowed set. It is a pure
// function so role policy can be tested without an HTTP stack; the gate
// middleware wraps it after authentication succeeds.
func RoleAllowed(role Role, allowed []Role) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

// emailRegex is a pragmatic format check; deliverability is the mailer's
// problem, not the data model's.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// User is a principal record. PasswordHash is excluded from JSON output and
// from default repository reads; the WithPassword repository variants exist
// for the credential-verification paths only.
type User struct {
	ID                  ulid.ULID  `json:"id"`
	Name                string     `json:"name"`
	Email               string     `json:"email"`
	Role                Role       `json:"role"`
	PasswordHash        string     `json:"-"`
	PasswordChangedAt   *time.Time `json:"-"`
	ResetTokenHash      *string    `json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// NewUser creates a validated User with a freshly generated ID. The email is
// trimmed and lower-cased before validation. An empty role falls back to
// DefaultRole. The password hash must already be computed; plaintext never
// reaches this constructor.
func NewUser(name, email, passwordHash string, role Role) (*User, error) {
	name, email, role, err := validateProfile(name, email, role)
	if err != nil {
		return nil, err
	}

	if passwordHash == "" {
		return nil, oops.Code("VALIDATION_FAILED").Errorf("password hash cannot be empty")
	}

	now := time.Now()
	return &User{
		ID:           ulid.Make(),
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// validateProfile checks and normalizes the identity fields. Split out of
// NewUser so sign-up can validate them before computing the password hash.
func validateProfile(name, email string, role Role) (string, string, Role, error) {
	if strings.TrimSpace(name) == "" {
		return "", "", "", oops.Code("VALIDATION_FAILED").Errorf("name cannot be empty")
	}

	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return "", "", "", err
	}

	if role == "" {
		role = DefaultRole
	}
	if !role.Valid() {
		return "", "", "", oops.Code("VALIDATION_FAILED").
			With("role", string(role)).
			Errorf("unknown role %q", role)
	}

	return strings.TrimSpace(name), email, role, nil
}

// NormalizeEmail lower-cases and trims an email address. All lookups and
// writes go through this so the uniqueness guarantee is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks the email format.
func ValidateEmail(email string) error {
	if email == "" {
		return oops.Code("VALIDATION_FAILED").Errorf("email cannot be empty")
	}
	if !emailRegex.MatchString(email) {
		return oops.Code("VALIDATION_FAILED").
			With("email", email).
			Errorf("invalid email address")
	}
	return nil
}

// PasswordChangedAfter reports whether the password was changed at or after
// the given token issuance time. Both sides are compared at second
// precision because bearer tokens carry their issuance time in Unix
// seconds; mixing precisions here silently invalidates or over-accepts
// tokens.
func (u *User) PasswordChangedAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.Unix() >= issuedAt.Unix()
}

// HasActiveReset reports whether a reset token is recorded and unexpired at
// the given instant.
func (u *User) HasActiveReset(now time.Time) bool {
	return u.ResetTokenHash != nil && u.ResetTokenExpiresAt != nil && u.ResetTokenExpiresAt.After(now)
}

// UserRepository manages principal persistence. Default reads omit the
// password hash; the WithPassword variants include it.
type UserRepository interface {
	// Create stores a new user. Returns ErrDuplicateEmail (wrapped) when
	// the email is already registered.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID without the password hash.
	GetByID(ctx context.Context, id ulid.ULID) (*User, error)

	// GetByEmail retrieves a user by email without the password hash.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByIDWithPassword retrieves a user by ID including the password hash.
	GetByIDWithPassword(ctx context.Context, id ulid.ULID) (*User, error)

	// GetByEmailWithPassword retrieves a user by email including the
	// password hash.
	GetByEmailWithPassword(ctx context.Context, email string) (*User, error)

	// GetByResetTokenHash retrieves the user whose stored reset-token hash
	// matches. Expiry is checked by the caller, not the query, so tests can
	// drive it with a fake clock.
	GetByResetTokenHash(ctx context.Context, tokenHash string) (*User, error)

	// SetResetToken records a reset-token hash and its expiry on the user.
	SetResetToken(ctx context.Context, id ulid.ULID, tokenHash string, expiresAt time.Time) error

	// ClearResetToken removes any recorded reset token from the user.
	ClearResetToken(ctx context.Context, id ulid.ULID) error

	// UpdatePassword writes a new password hash and password-changed
	// timestamp, and clears the reset-token fields in the same statement.
	// The single write keeps reset-token consumption single-use without an
	// explicit transaction.
	UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string, changedAt time.Time) error

	// List returns all users without password hashes.
	List(ctx context.Context) ([]*User, error)
}
