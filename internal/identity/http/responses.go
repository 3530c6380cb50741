package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/driftlock/identity/internal/identity/domain"
	"github.com/driftlock/identity/internal/identity/service"
	"github.com/driftlock/identity/pkg/apperr"
	"github.com/driftlock/identity/pkg/slogx"
)

// userResponse is the public view of a user. The password hash never
// leaves the service.
type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toUserResponses(users []domain.User) []userResponse {
	out := make([]userResponse, len(users))
	for i, u := range users {
		out[i] = toUserResponse(u)
	}
	return out
}

type authResponse struct {
	User         userResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// mapServiceError folds service sentinels into the error taxonomy.
func mapServiceError(err error) *apperr.Error {
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		return apperr.Conflict("email is already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		return apperr.Authentication("invalid email or password")
	case errors.Is(err, service.ErrInvalidRefresh):
		return apperr.Authentication("invalid or expired refresh token")
	case errors.Is(err, service.ErrUserNotFound):
		return apperr.NotFound("user not found")
	}
	return apperr.From(err)
}

// writeServiceError renders err as an error envelope. Unclassified
// failures surface as a generic INTERNAL_ERROR and the real cause is
// logged in full.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := mapServiceError(err)
	if appErr.StatusCode >= http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
	}
	appErr.Write(w, slogx.RequestIDFromContext(r.Context()))
}
