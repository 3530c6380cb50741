package http

import (
	"net/http"

	"github.com/driftlock/identity/internal/identity/service"
	"github.com/driftlock/identity/pkg/httpx"
	"github.com/driftlock/identity/pkg/slogx"
)

type AuthHandler struct {
	AuthService *service.AuthService
}

// HandleRegister creates an account. The response carries the created
// user only; tokens come from a subsequent login.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := slogx.RequestIDFromContext(ctx)

	var req registerRequest
	if appErr := decodeJSON(r, &req); appErr != nil {
		appErr.Write(w, requestID)
		return
	}
	if appErr := req.validate(); appErr != nil {
		appErr.Write(w, requestID)
		return
	}

	user, err := h.AuthService.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusCreated, toUserResponse(user),
		"user registered successfully", requestID)
}

// HandleLogin verifies credentials and issues a token pair.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := slogx.RequestIDFromContext(ctx)

	var req loginRequest
	if appErr := decodeJSON(r, &req); appErr != nil {
		appErr.Write(w, requestID)
		return
	}
	if appErr := req.validate(); appErr != nil {
		appErr.Write(w, requestID)
		return
	}

	user, pair, err := h.AuthService.Login(ctx, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, authResponse{
		User:         toUserResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "login successful", requestID)
}

// HandleRefresh exchanges a refresh token for a new access token.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := slogx.RequestIDFromContext(ctx)

	var req refreshRequest
	if appErr := decodeJSON(r, &req); appErr != nil {
		appErr.Write(w, requestID)
		return
	}
	if appErr := req.validate(); appErr != nil {
		appErr.Write(w, requestID)
		return
	}

	access, err := h.AuthService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, refreshResponse{AccessToken: access},
		"token refreshed successfully", requestID)
}

// HandleLogout acknowledges the logout. Tokens are stateless so the
// client discards them; there is nothing to revoke server-side.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	requestID := slogx.RequestIDFromContext(r.Context())
	httpx.WriteSuccess(w, http.StatusOK, nil, "logged out successfully", requestID)
}
