package http

import (
	"net/http"
	"strings"

	"github.com/driftlock/identity/internal/identity/domain"
	"github.com/driftlock/identity/internal/identity/service"
	"github.com/driftlock/identity/pkg/apperr"
	"github.com/driftlock/identity/pkg/httpx"
	"github.com/driftlock/identity/pkg/slogx"
)

type UsersHandler struct {
	UserService *service.UserService
}

// HandleMe returns the authenticated user's own profile.
func (h *UsersHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := slogx.RequestIDFromContext(ctx)

	user, err := h.UserService.GetByID(ctx, httpx.UserIDFromCtx(ctx))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, toUserResponse(user), "", requestID)
}

// HandleList returns all users. Admin only.
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := slogx.RequestIDFromContext(ctx)

	users, err := h.UserService.List(ctx)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, toUserResponses(users), "", requestID)
}

// HandleSearch returns users matching the q query parameter. Admin only.
func (h *UsersHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := slogx.RequestIDFromContext(ctx)

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		apperr.Validation("search query is required").Write(w, requestID)
		return
	}

	users, err := h.UserService.Search(ctx, q)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, toUserResponses(users), "", requestID)
}

// HandleGet returns a user by id. Admin only.
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := slogx.RequestIDFromContext(ctx)

	user, err := h.UserService.GetByID(ctx, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, toUserResponse(user), "", requestID)
}

// HandleUpdate mutates a user's name or email. Users may update
// themselves; admins may update anyone.
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := slogx.RequestIDFromContext(ctx)
	targetID := r.PathValue("id")

	if httpx.UserIDFromCtx(ctx) != targetID && httpx.RoleFromCtx(ctx) != domain.RoleAdmin {
		apperr.Authorization("you may only update your own account").Write(w, requestID)
		return
	}

	var req updateUserRequest
	if appErr := decodeJSON(r, &req); appErr != nil {
		appErr.Write(w, requestID)
		return
	}
	if appErr := req.validate(); appErr != nil {
		appErr.Write(w, requestID)
		return
	}

	user, err := h.UserService.Update(ctx, targetID, service.UserUpdate{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, toUserResponse(user), "user updated successfully", requestID)
}

// HandleDelete removes a user. Admin only.
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := slogx.RequestIDFromContext(ctx)

	if err := h.UserService.Delete(ctx, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, nil, "user deleted successfully", requestID)
}
