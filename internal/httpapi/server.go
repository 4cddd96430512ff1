// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trailhead Contributors

package httpapi

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/samber/oops"

	"github.com/trailhead-labs/trailhead/internal/auth"
	"github.com/trailhead-labs/trailhead/internal/observability"
)

// Server holds the handler dependencies and builds the router.
type Server struct {
	svc     *auth.Service
	tokens  *auth.TokenService
	users   auth.UserRepository
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewServer creates a Server. metrics may be nil; recording is skipped.
func NewServer(svc *auth.Service, tokens *auth.TokenService, users auth.UserRepository, metrics *observability.Metrics, logger *slog.Logger) (*Server, error) {
	if svc == nil {
		return nil, oops.Code("CONFIG_INVALID").Errorf("auth service is required")
	}
	if tokens == nil {
		return nil, oops.Code("CONFIG_INVALID").Errorf("token service is required")
	}
	if users == nil {
		return nil, oops.Code("CONFIG_INVALID").Errorf("user repository is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{svc: svc, tokens: tokens, users: users, metrics: metrics, logger: logger}, nil
}

// Router wires all routes. Public routes first, then the token-gated group,
// then the admin-only group on top of it.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.recordRequests())

	users := r.Group("/api/v1/users")

	users.POST("/signup", s.signUp)
	users.POST("/login", s.login)
	users.POST("/forgotPassword", s.forgotPassword)
	users.PATCH("/resetPassword/:token", s.resetPassword)

	authed := users.Group("")
	authed.Use(s.RequireAuth())
	authed.PATCH("/updateMyPassword", s.updatePassword)
	authed.GET("/me", s.me)

	admin := authed.Group("")
	admin.Use(s.RequireRoles(auth.RoleAdmin))
	admin.GET("", s.listUsers)

	return r
}

// recordRequests counts finished requests by route template and status.
func (s *Server) recordRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.metrics.RecordRequest(c.FullPath(), c.Writer.Status())
	}
}
