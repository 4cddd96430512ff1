// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trailhead Contributors

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Clock supplies the current time. Components take a Clock at construction
// so expiry and staleness can be simulated deterministically in tests.
type Clock func() time.Time

// TokenClaims is the verified content of a bearer token.
type TokenClaims struct {
	Subject  ulid.ULID
	IssuedAt time.Time
}

// TokenService issues and verifies signed, time-bound bearer tokens. Tokens
// carry only the subject id and timestamps; nothing is persisted server-side.
type TokenService struct {
	secret   []byte
	lifetime time.Duration
	clock    Clock
}

// NewTokenService creates a TokenService. The secret is injected rather
// than read ambiently, and the clock may be nil to use the wall clock.
func NewTokenService(secret []byte, lifetime time.Duration, clock Clock) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, oops.Code("CONFIG_INVALID").Errorf("token signing secret is required")
	}
	if lifetime <= 0 {
		return nil, oops.Code("CONFIG_INVALID").
			With("lifetime", lifetime.String()).
			Errorf("token lifetime must be positive")
	}
	if clock == nil {
		clock = time.Now
	}
	return &TokenService{secret: secret, lifetime: lifetime, clock: clock}, nil
}

// Issue produces a signed HS256 token for the given subject, expiring after
// the configured lifetime.
func (s *TokenService) Issue(subject ulid.ULID) (string, error) {
	now := s.clock()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", oops.Code("AUTH_TOKEN_SIGN_FAILED").Wrap(err)
	}
	return signed, nil
}

// Verify validates signature and expiry and returns the claims. Expired
// tokens fail with code AUTH_TOKEN_EXPIRED; anything malformed or signed
// with a different secret fails with AUTH_TOKEN_INVALID. Both are
// authorization failures at the boundary, never server errors.
func (s *TokenService) Verify(tokenString string) (TokenClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(_ *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return TokenClaims{}, oops.Code("AUTH_TOKEN_EXPIRED").Errorf("token has expired")
		}
		return TokenClaims{}, oops.Code("AUTH_TOKEN_INVALID").Wrapf(err, "invalid token")
	}
	if !token.Valid {
		return TokenClaims{}, oops.Code("AUTH_TOKEN_INVALID").Errorf("invalid token")
	}

	subject, err := ulid.Parse(claims.Subject)
	if err != nil {
		return TokenClaims{}, oops.Code("AUTH_TOKEN_INVALID").Wrapf(err, "invalid token subject")
	}
	if claims.IssuedAt == nil {
		return TokenClaims{}, oops.Code("AUTH_TOKEN_INVALID").Errorf("token missing issuance time")
	}

	return TokenClaims{Subject: subject, IssuedAt: claims.IssuedAt.Time}, nil
}
