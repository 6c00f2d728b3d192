// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/ward-admin/auth"
	"github.com/danielhkuo/ward-admin/middleware"
	"github.com/danielhkuo/ward-admin/models"
)

type AuthHandler struct {
	creds  *auth.Credentials
	issuer *auth.SessionIssuer
}

// NewAuthHandler handles admin login. With nil credentials login is
// disabled and every route is open.
func NewAuthHandler(creds *auth.Credentials, issuer *auth.SessionIssuer) *AuthHandler {
	return &AuthHandler{creds: creds, issuer: issuer}
}

// Login handles POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.creds == nil || h.issuer == nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "Login is not enabled")
		return
	}

	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.UserID == "" || req.Password == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user_id and password are required")
		return
	}

	if err := h.creds.Check(req.UserID, req.Password); err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			slog.Error("failed to verify credentials", "error", err)
		}
		slog.Warn("login failed", "user_id", req.UserID, "remote", middleware.GetClientIP(r))
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid user ID or password")
		return
	}

	token, expires, err := h.issuer.Issue(req.UserID)
	if err != nil {
		slog.Error("failed to issue session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	slog.Info("login succeeded", "user_id", req.UserID)
	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{Token: token, ExpiresAt: expires})
}
