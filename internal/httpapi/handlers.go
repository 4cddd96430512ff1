// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trailhead Contributors

package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/oops"

	"github.com/trailhead-labs/trailhead/internal/auth"
)

type signUpRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
	Role            string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

type updatePasswordRequest struct {
	PasswordCurrent    string `json:"passwordCurrent"`
	NewPassword        string `json:"newPassword"`
	NewPasswordConfirm string `json:"newPasswordConfirm"`
}

func (s *Server) signUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, oops.Code("VALIDATION_FAILED").Wrapf(err, "invalid request body"))
		return
	}

	user, token, err := s.svc.SignUp(c.Request.Context(), auth.SignUpInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		Role:            auth.Role(req.Role),
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": "success",
		"token":  token,
		"data":   gin.H{"user": user},
	})
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, oops.Code("VALIDATION_FAILED").Wrapf(err, "invalid request body"))
		return
	}

	token, err := s.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.metrics.RecordLogin("failure")
		s.respondError(c, err)
		return
	}
	s.metrics.RecordLogin("success")

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"token":  token,
	})
}

func (s *Server) forgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, oops.Code("VALIDATION_FAILED").Wrapf(err, "invalid request body"))
		return
	}

	if err := s.svc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		s.respondError(c, err)
		return
	}
	s.metrics.RecordPasswordReset("requested")

	// The token travels by email only, never in the response.
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "token sent to email",
	})
}

func (s *Server) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, oops.Code("VALIDATION_FAILED").Wrapf(err, "invalid request body"))
		return
	}

	token, err := s.svc.ResetPassword(c.Request.Context(), c.Param("token"), req.Password, req.PasswordConfirm)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.metrics.RecordPasswordReset("completed")

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"token":  token,
	})
}

func (s *Server) updatePassword(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		s.respondError(c, oops.Code("AUTH_NOT_AUTHENTICATED").Errorf("you are not logged in"))
		return
	}

	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, oops.Code("VALIDATION_FAILED").Wrapf(err, "invalid request body"))
		return
	}

	updated, token, err := s.svc.UpdatePassword(c.Request.Context(), user.ID,
		req.PasswordCurrent, req.NewPassword, req.NewPasswordConfirm)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"token":  token,
		"data":   gin.H{"user": updated},
	})
}

func (s *Server) me(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		s.respondError(c, oops.Code("AUTH_NOT_AUTHENTICATED").Errorf("you are not logged in"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   gin.H{"user": user},
	})
}

func (s *Server) listUsers(c *gin.Context) {
	users, err := s.users.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"results": len(users),
		"data":    gin.H{"users": users},
	})
}
