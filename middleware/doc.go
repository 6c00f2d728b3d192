// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Each request gets a UUID, returned in the X-Request-ID header and available
to handlers through RequestID(ctx). Logs request start (method, path, remote)
and completion (status, duration_ms).

# Sessions

RequireSession checks the Authorization: Bearer header against a TokenParser
(normally *auth.SessionIssuer):

	protect := middleware.RequireSession(issuer)
	mux.HandleFunc("GET /screens", middleware.WithLogging(protect(h.ListScreens)))

A nil parser turns the guard off so a dev instance runs without credentials.
The authenticated user is available through UserID(ctx).

# CORS Middleware

Enable cross-origin requests for the dashboard:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows methods GET, POST, PUT, PATCH, DELETE, OPTIONS with headers
Content-Type, Authorization, X-Google-Token.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
	middleware.ValidationErrorResponse(w, map[string]string{"wardName": "..."})

Parse JSON request bodies:

	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)
*/
package middleware
