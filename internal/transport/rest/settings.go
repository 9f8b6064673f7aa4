package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/semenovdl/recallbot/internal/domain"
)

// settingsService defines the minimal interface needed by SettingsHandler.
type settingsService interface {
	GetSettings(ctx context.Context) (domain.Owner, error)
	SetNotifications(ctx context.Context, enabled bool) (domain.Owner, error)
}

// SettingsHandler serves the owner settings endpoints.
type SettingsHandler struct {
	svc settingsService
	log *slog.Logger
}

// NewSettingsHandler creates a SettingsHandler.
func NewSettingsHandler(svc settingsService, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{svc: svc, log: logger.With("handler", "settings")}
}

type notificationsRequest struct {
	Enabled *bool `json:"enabled"`
}

type ownerResponse struct {
	ID                   int64 `json:"id"`
	NotificationsEnabled bool  `json:"notificationsEnabled"`
	Suppressed           bool  `json:"suppressed"`
}

// Get handles GET /api/settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, err := h.svc.GetSettings(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toOwnerResponse(owner))
}

// SetNotifications handles PUT /api/settings.
func (h *SettingsHandler) SetNotifications(w http.ResponseWriter, r *http.Request) {
	var req notificationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	owner, err := h.svc.SetNotifications(r.Context(), *req.Enabled)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toOwnerResponse(owner))
}

func (h *SettingsHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		h.log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func toOwnerResponse(o domain.Owner) ownerResponse {
	return ownerResponse{
		ID:                   o.ID,
		NotificationsEnabled: o.NotificationsEnabled,
		Suppressed:           o.Suppressed,
	}
}
