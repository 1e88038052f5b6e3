package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/alvinobieroh/devlinks-api/internal/apperror"
	"github.com/alvinobieroh/devlinks-api/internal/http/respond"
	"github.com/alvinobieroh/devlinks-api/internal/middleware"
	"github.com/alvinobieroh/devlinks-api/internal/models"
	"github.com/alvinobieroh/devlinks-api/internal/models/dto"
	"github.com/alvinobieroh/devlinks-api/internal/storage"
)

// LinksHandler serves link lists. The client posts the whole list at once,
// so writes replace rather than patch.
type LinksHandler struct {
	links    storage.LinkStore
	users    storage.UserStore
	resp     *respond.Responder
	validate *validator.Validate
}

// NewLinksHandler constructs the handler.
func NewLinksHandler(links storage.LinkStore, users storage.UserStore,
	resp *respond.Responder, validate *validator.Validate) *LinksHandler {
	return &LinksHandler{links: links, users: users, resp: resp, validate: validate}
}

// Register attaches the protected link routes.
func (h *LinksHandler) Register(r chi.Router) {
	r.Get("/links", h.handleList)
	r.Post("/links", h.handleReplace)
}

// RegisterPublic attaches the unauthenticated link lookup that backs shared
// link pages.
func (h *LinksHandler) RegisterPublic(r chi.Router) {
	r.Get("/offline-links", h.handlePublicList)
}

func (h *LinksHandler) handlePublicList(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		h.resp.Error(w, apperror.ProfileNotFound())
		return
	}
	if _, err := h.users.FindByID(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.resp.Error(w, apperror.ProfileNotFound())
			return
		}
		h.resp.Error(w, err)
		return
	}
	links, err := h.links.LinksByUser(r.Context(), id)
	if err != nil {
		h.resp.Error(w, err)
		return
	}
	h.resp.Success(w, http.StatusOK, "", map[string]any{"links": links})
}

func (h *LinksHandler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.resp.Error(w, apperror.NotAuthenticated())
		return
	}
	links, err := h.links.LinksByUser(r.Context(), user.ID)
	if err != nil {
		h.resp.Error(w, err)
		return
	}
	h.resp.Success(w, http.StatusOK, "", map[string]any{"links": links})
}

func (h *LinksHandler) handleReplace(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.resp.Error(w, apperror.NotAuthenticated())
		return
	}

	var reqs []dto.LinkRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		h.resp.Error(w, apperror.Validation("invalid JSON payload"))
		return
	}
	for _, req := range reqs {
		if err := h.validate.Struct(req); err != nil {
			h.resp.Error(w, apperror.Validation(validationMessage(err)))
			return
		}
	}

	links := make([]models.Link, 0, len(reqs))
	for i, req := range reqs {
		links = append(links, models.Link{
			ID:       uuid.New(),
			UserID:   user.ID,
			Platform: req.Platform,
			URL:      req.URL,
			Position: i,
		})
	}
	saved, err := h.links.ReplaceLinks(r.Context(), user.ID, links)
	if err != nil {
		h.resp.Error(w, err)
		return
	}
	h.resp.Success(w, http.StatusCreated, "", map[string]any{"links": saved})
}
