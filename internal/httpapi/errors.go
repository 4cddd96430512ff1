// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trailhead Contributors

package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trailhead-labs/trailhead/pkg/errutil"
)

// statusByCode maps domain error codes to HTTP statuses. Codes not listed
// here are treated as internal failures and answered with an opaque 500.
var statusByCode = map[string]int{
	"VALIDATION_FAILED":        http.StatusBadRequest,
	"RESET_TOKEN_INVALID":      http.StatusBadRequest,
	"AUTH_INVALID_CREDENTIALS": http.StatusUnauthorized,
	"AUTH_NOT_AUTHENTICATED":   http.StatusUnauthorized,
	"AUTH_TOKEN_EXPIRED":       http.StatusUnauthorized,
	"AUTH_TOKEN_INVALID":       http.StatusUnauthorized,
	"AUTH_INCORRECT_PASSWORD":  http.StatusUnauthorized,
	"AUTH_FORBIDDEN":           http.StatusForbidden,
	"USER_NOT_FOUND":           http.StatusNotFound,
}

// respondError writes the JSON error response for err. Client errors keep
// their message; everything else is logged with its context and answered
// with a generic message so internals never reach the wire.
func (s *Server) respondError(c *gin.Context, err error) {
	status, known := statusByCode[errutil.CodeOf(err)]
	if !known {
		status = http.StatusInternalServerError
	}

	message := err.Error()
	if status >= http.StatusInternalServerError {
		errutil.LogError(s.logger, "request failed", err)
		message = "something went very wrong"
	}

	c.AbortWithStatusJSON(status, gin.H{
		"status":  statusWord(status),
		"message": message,
	})
}

// statusWord follows the response convention: "fail" for 4xx, "error"
// for 5xx.
func statusWord(status int) string {
	if status >= http.StatusInternalServerError {
		return "error"
	}
	return "fail"
}
