package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/proneo/platform/internal/domain"
	"github.com/proneo/platform/internal/service"
)

// UserHandler serves access-request decisions and user administration.
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Approve handles POST /users/{email}/approve.
func (h *UserHandler) Approve(w http.ResponseWriter, r *http.Request) {
	res, err := h.users.Approve(r.Context(), actorFrom(r), chi.URLParam(r, "email"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusAccepted, res)
}

// Reject handles POST /users/{email}/reject.
func (h *UserHandler) Reject(w http.ResponseWriter, r *http.Request) {
	res, err := h.users.Reject(r.Context(), actorFrom(r), chi.URLParam(r, "email"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusAccepted, res)
}

// List handles GET /users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context(), actorFrom(r))
	if err != nil {
		RespondError(w, err)
		return
	}
	if users == nil {
		users = []domain.User{}
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

// Update handles PATCH /users/{email}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateInput
	if err := DecodeJSON(r, &in); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if err := h.users.Update(r.Context(), actorFrom(r), chi.URLParam(r, "email"), in); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}

// Delete handles DELETE /users/{email}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), actorFrom(r), chi.URLParam(r, "email")); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}
