// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trailhead Contributors

package httpapi

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/oops"

	"github.com/trailhead-labs/trailhead/internal/auth"
)

// ctxUserKey is the gin context key holding the authenticated user.
const ctxUserKey = "trailhead.user"

// RequireAuth gates a route group on a valid bearer token. It verifies the
// token, loads the account, and rejects tokens issued before the account's
// last password change. The authenticated user is stored on the context for
// CurrentUser.
func (s *Server) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			s.respondError(c, err)
			return
		}

		claims, err := s.tokens.Verify(token)
		if err != nil {
			s.respondError(c, err)
			return
		}

		user, err := s.users.GetByID(c.Request.Context(), claims.Subject)
		if err != nil {
			if errors.Is(err, auth.ErrNotFound) {
				s.respondError(c, oops.Code("AUTH_NOT_AUTHENTICATED").
					Errorf("the user belonging to this token no longer exists"))
				return
			}
			s.respondError(c, err)
			return
		}

		if user.PasswordChangedAfter(claims.IssuedAt) {
			s.respondError(c, oops.Code("AUTH_NOT_AUTHENTICATED").
				Errorf("password was changed recently, please log in again"))
			return
		}

		c.Set(ctxUserKey, user)
		c.Next()
	}
}

// RequireRoles gates a route on the authenticated user holding one of the
// given roles. It must run after RequireAuth.
func (s *Server) RequireRoles(roles ...auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			s.respondError(c, oops.Code("AUTH_NOT_AUTHENTICATED").
				Errorf("you are not logged in"))
			return
		}
		if !auth.RoleAllowed(user.Role, roles) {
			s.respondError(c, oops.Code("AUTH_FORBIDDEN").
				Errorf("you do not have permission to perform this action"))
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user stored by RequireAuth.
func CurrentUser(c *gin.Context) (*auth.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*auth.User)
	return user, ok
}

// bearerToken extracts the token from an Authorization header. A missing
// header and a malformed one fail identically.
func bearerToken(header string) (string, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", oops.Code("AUTH_NOT_AUTHENTICATED").
			Errorf("you are not logged in, please log in to get access")
	}
	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", oops.Code("AUTH_NOT_AUTHENTICATED").
			Errorf("you are not logged in, please log in to get access")
	}
	return token, nil
}
