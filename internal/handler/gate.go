package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Achille2gre/bonvan-wind-dashboard/internal/apperror"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/auth"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/service"
)

// Gatekeeper decides which screen the app shell shows.
type Gatekeeper interface {
	State(ctx context.Context, authenticated bool) (service.GateState, error)
}

type GateHandler struct {
	gate     Gatekeeper
	tokens   *auth.TokenService
	sessions auth.SessionSource
	logger   *slog.Logger
}

func NewGateHandler(gate Gatekeeper, tokens *auth.TokenService, sessions auth.SessionSource, logger *slog.Logger) *GateHandler {
	return &GateHandler{gate: gate, tokens: tokens, sessions: sessions, logger: logger}
}

// HandleState returns the gate decision for the caller.
//
// HTTP: GET /api/gate
// RESPONSE: {"authRequired":true,"authenticated":false,"onboardingRequired":true,"showApp":false}
func (h *GateHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	id, err := auth.Authenticate(r, h.tokens, h.sessions)
	if err != nil && errors.Is(err, apperror.ErrStorage) {
		writeError(w, r, h.logger, err)
		return
	}

	st, err := h.gate.State(r.Context(), err == nil && id != nil)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, st)
}
