package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/alvinobieroh/devlinks-api/internal/apperror"
	"github.com/alvinobieroh/devlinks-api/internal/http/respond"
	"github.com/alvinobieroh/devlinks-api/internal/middleware"
	"github.com/alvinobieroh/devlinks-api/internal/models/dto"
	"github.com/alvinobieroh/devlinks-api/internal/storage"
)

// ProfileHandler serves the authenticated user's profile fields.
type ProfileHandler struct {
	users    storage.UserStore
	resp     *respond.Responder
	validate *validator.Validate
}

// NewProfileHandler constructs the handler.
func NewProfileHandler(users storage.UserStore, resp *respond.Responder, validate *validator.Validate) *ProfileHandler {
	return &ProfileHandler{users: users, resp: resp, validate: validate}
}

// Register attaches the protected profile routes.
func (h *ProfileHandler) Register(r chi.Router) {
	r.Get("/profile-update", h.handleGet)
	r.Patch("/profile-update", h.handleUpdate)
}

// RegisterPublic attaches the unauthenticated profile lookup that backs
// shared link pages.
func (h *ProfileHandler) RegisterPublic(r chi.Router) {
	r.Get("/offline-profile", h.handlePublicGet)
}

func (h *ProfileHandler) handlePublicGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		h.resp.Error(w, apperror.ProfileNotFound())
		return
	}
	user, err := h.users.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.resp.Error(w, apperror.ProfileNotFound())
			return
		}
		h.resp.Error(w, err)
		return
	}
	h.resp.Success(w, http.StatusOK, "", map[string]any{"user": user})
}

func (h *ProfileHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.resp.Error(w, apperror.NotAuthenticated())
		return
	}
	h.resp.Success(w, http.StatusOK, "", map[string]any{"user": user})
}

func (h *ProfileHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.resp.Error(w, apperror.NotAuthenticated())
		return
	}
	var req dto.ProfileUpdateRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		h.resp.Error(w, err)
		return
	}
	updated, err := h.users.UpdateProfile(r.Context(), user.ID, req.FirstName, req.LastName, req.Photo)
	if err != nil {
		h.resp.Error(w, err)
		return
	}
	h.resp.Success(w, http.StatusOK, "", map[string]any{"user": updated})
}
