package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Achille2gre/bonvan-wind-dashboard/internal/apperror"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/model"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/service"
)

// OnboardingStore is the part of service.OnboardingService the handlers use.
type OnboardingStore interface {
	Load(ctx context.Context) (model.OnboardingStorage, error)
	Save(ctx context.Context, answers model.OnboardingAnswers) (model.OnboardingStorage, error)
	Patch(ctx context.Context, patch service.AnswersPatch) (model.OnboardingStorage, error)
	Skip(ctx context.Context) (model.OnboardingStorage, error)
	Reset(ctx context.Context) error
}

// TipsResponse lists the personalized tips of the home page.
type TipsResponse struct {
	Tips []service.Tip `json:"tips"`
}

type OnboardingHandler struct {
	onboarding OnboardingStore
	logger     *slog.Logger
}

func NewOnboardingHandler(onboarding OnboardingStore, logger *slog.Logger) *OnboardingHandler {
	return &OnboardingHandler{onboarding: onboarding, logger: logger}
}

// HandleGet returns the completion record.
//
// HTTP: GET /api/onboarding
// RESPONSE: {"completed":false} or {"completed":true,"completedAt":"...","answers":{...}}
func (h *OnboardingHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := h.onboarding.Load(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, rec)
}

// HandleSave records a full answer set at the end of the wizard.
//
// HTTP: PUT /api/onboarding
// REQUEST BODY: the complete answers object
func (h *OnboardingHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	var answers model.OnboardingAnswers
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&answers); err != nil {
		writeError(w, r, h.logger, apperror.ValidationFailed("answers", "invalid answers: "+err.Error()))
		return
	}

	rec, err := h.onboarding.Save(r.Context(), answers)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, rec)
}

// HandlePatch merges some answers into the stored ones.
//
// HTTP: PATCH /api/onboarding
// REQUEST BODY: {"tariff": "tempo"}
func (h *OnboardingHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	var patch service.AnswersPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	rec, err := h.onboarding.Patch(r.Context(), patch)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, rec)
}

// HandleSkip marks onboarding done without answers.
//
// HTTP: POST /api/onboarding/skip
func (h *OnboardingHandler) HandleSkip(w http.ResponseWriter, r *http.Request) {
	rec, err := h.onboarding.Skip(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, rec)
}

// HandleReset deletes the record so the wizard runs again.
//
// HTTP: DELETE /api/onboarding
func (h *OnboardingHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.onboarding.Reset(r.Context()); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleTips returns up to three tips derived from the answers.
//
// HTTP: GET /api/onboarding/tips
func (h *OnboardingHandler) HandleTips(w http.ResponseWriter, r *http.Request) {
	rec, err := h.onboarding.Load(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, TipsResponse{Tips: service.PersonalizedTips(rec.Answers)})
}
