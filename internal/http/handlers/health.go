package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/alvinobieroh/devlinks-api/internal/http/respond"
)

// HealthHandler returns uptime and basic status.
type HealthHandler struct {
	startedAt time.Time
	resp      *respond.Responder
}

// NewHealthHandler creates a health endpoint handler.
func NewHealthHandler(startedAt time.Time, resp *respond.Responder) *HealthHandler {
	return &HealthHandler{startedAt: startedAt, resp: resp}
}

// Register wires the handler into the router.
func (h *HealthHandler) Register(r chi.Router) {
	r.Get("/health", h.handle)
}

func (h *HealthHandler) handle(w http.ResponseWriter, r *http.Request) {
	h.resp.Success(w, http.StatusOK, "", map[string]string{
		"status": "ok",
		"uptime": time.Since(h.startedAt).Truncate(time.Second).String(),
	})
}
