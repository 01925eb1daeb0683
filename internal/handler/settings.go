package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Achille2gre/bonvan-wind-dashboard/internal/model"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/service"
)

// SettingsStore is the part of service.SettingsService the handlers use.
type SettingsStore interface {
	Get(ctx context.Context) (model.Settings, error)
	Update(ctx context.Context, patch service.SettingsPatch) (model.Settings, error)
}

type SettingsHandler struct {
	settings SettingsStore
	logger   *slog.Logger
}

func NewSettingsHandler(settings SettingsStore, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{settings: settings, logger: logger}
}

// HandleGet returns every setting, defaults filled in.
//
// HTTP: GET /api/settings
func (h *SettingsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Get(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, s)
}

// HandleUpdate changes the settings present in the body.
//
// HTTP: PATCH /api/settings
// REQUEST BODY: {"theme": "dark"}
func (h *SettingsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch service.SettingsPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	s, err := h.settings.Update(r.Context(), patch)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, s)
}
