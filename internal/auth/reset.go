// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trailhead Contributors

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/samber/oops"
)

// Reset token configuration.
const (
	ResetTokenBytes  = 32               // 32 bytes = 64 hex chars
	ResetTokenExpiry = 10 * time.Minute // short lived by design
)

// ResetTokenManager generates and consumes single-use password-reset tokens.
// Only the SHA-256 hash of a token is ever persisted; the plaintext travels
// to the user out-of-band. Consumption does not mutate state: the caller
// clears the stored hash as part of the same write that updates the
// password, which keeps the token single-use without a second transaction.
type ResetTokenManager struct {
	users UserRepository
	clock Clock
}

// NewResetTokenManager creates a ResetTokenManager. A nil clock uses the
// wall clock.
func NewResetTokenManager(users UserRepository, clock Clock) (*ResetTokenManager, error) {
	if users == nil {
		return nil, oops.Code("CONFIG_INVALID").Errorf("user repository is required")
	}
	if clock == nil {
		clock = time.Now
	}
	return &ResetTokenManager{users: users, clock: clock}, nil
}

// Generate produces a random token, its storable hash, and the expiry
// timestamp. The plaintext token is returned to be mailed and is never
// stored.
func (m *ResetTokenManager) Generate() (token, hash string, expiresAt time.Time, err error) {
	buf := make([]byte, ResetTokenBytes)
	if _, err = rand.Read(buf); err != nil {
		return "", "", time.Time{}, oops.Code("RESET_TOKEN_GENERATE_FAILED").Wrap(err)
	}

	token = hex.EncodeToString(buf)
	hash = HashResetToken(token)
	expiresAt = m.clock().Add(ResetTokenExpiry)
	return token, hash, expiresAt, nil
}

// Consume verifies a plaintext reset token and returns the matching user.
// It fails with code RESET_TOKEN_INVALID when no user holds the token's
// hash or when the stored expiry has passed; the two cases are
// indistinguishable to the caller.
func (m *ResetTokenManager) Consume(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, oops.Code("RESET_TOKEN_INVALID").Errorf("reset token is invalid or has expired")
	}

	user, err := m.users.GetByResetTokenHash(ctx, HashResetToken(token))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("RESET_TOKEN_INVALID").Errorf("reset token is invalid or has expired")
		}
		return nil, oops.Code("RESET_CONSUME_FAILED").
			With("operation", "GetByResetTokenHash").
			Wrap(err)
	}

	if !user.HasActiveReset(m.clock()) {
		return nil, oops.Code("RESET_TOKEN_INVALID").Errorf("reset token is invalid or has expired")
	}

	return user, nil
}

// HashResetToken computes the hex-encoded SHA-256 hash of a token. A fast
// deterministic hash is deliberate: the stored value is a lookup key for a
// short-lived high-entropy secret, not a long-lived password.
func HashResetToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
