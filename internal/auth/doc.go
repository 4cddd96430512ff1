// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trailhead Contributors

// Package auth provides the credential and session-authorization core for
// the Trailhead API.
//
// # Domain Types
//
// User is the principal record. It should be created through NewUser, which
// normalizes the email address and validates the role; direct struct
// initialization bypasses validation and may create invalid state.
// Repository implementations receive pre-validated values.
//
// # Components
//
//   - PasswordHasher - one-way hashing and verification (bcrypt, cost 12)
//   - TokenService - issues and verifies signed bearer tokens
//   - ResetTokenManager - generates and consumes one-time reset tokens
//   - Service - orchestrates sign-up, login and the password lifecycle
//
// All components take their secrets, lifetimes and clocks at construction so
// tests can use distinct secrets and deterministic time.
package auth
