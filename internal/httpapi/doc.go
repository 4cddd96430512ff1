// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trailhead Contributors

// Package httpapi exposes the account service over HTTP.
//
// Routes live under /api/v1/users. Handlers translate between the JSON
// surface and the auth service; all domain decisions, including every
// authentication and authorization check, stay in internal/auth. Error
// responses carry a status word ("fail" for client errors, "error" for
// server errors) and a message, never internal details.
package httpapi
