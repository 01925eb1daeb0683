package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/Achille2gre/bonvan-wind-dashboard/internal/apperror"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/lib/validate"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/model"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/service"
)

// ProfileStore is the part of service.ProfileService the handlers use.
type ProfileStore interface {
	LoadReconciled(ctx context.Context) (model.UserProfile, error)
	Save(ctx context.Context, p model.UserProfile) (model.UserProfile, error)
	SetAvatar(ctx context.Context, img []byte) (model.UserProfile, error)
	ClearAvatar(ctx context.Context) (model.UserProfile, error)
	UpdateSite(ctx context.Context, variant service.SiteVariant, next model.SiteProfile) (model.UserProfile, error)
	SetNotifications(ctx context.Context, enabled bool) (model.UserProfile, error)
}

// SiteEditRequest is the body of PATCH /api/profile/site.
type SiteEditRequest struct {
	Variant service.SiteVariant `json:"variant" validate:"required,oneof=site usage"`
	Site    model.SiteProfile   `json:"site"`
}

// NotificationsRequest is the body of PUT /api/profile/notifications.
type NotificationsRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

type ProfileHandler struct {
	profiles ProfileStore
	validate *validator.Validate
	logger   *slog.Logger
}

func NewProfileHandler(profiles ProfileStore, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, validate: validate.New(), logger: logger}
}

// HandleGet returns the profile, first completing its site from the
// onboarding answers where it has gaps.
//
// HTTP: GET /api/profile
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.LoadReconciled(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

// HandleSave replaces the whole profile.
//
// HTTP: PUT /api/profile
func (h *ProfileHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	var p model.UserProfile
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	saved, err := h.profiles.Save(r.Context(), p)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, saved)
}

// HandleSetAvatar stores the raw image in the request body.
//
// HTTP: PUT /api/profile/avatar
// REQUEST BODY: image bytes (PNG, JPEG, WebP, GIF)
func (h *ProfileHandler) HandleSetAvatar(w http.ResponseWriter, r *http.Request) {
	// One byte over the limit is enough for the service to reject the upload.
	img, err := io.ReadAll(io.LimitReader(r.Body, service.MaxAvatarBytes+1))
	if err != nil {
		writeError(w, r, h.logger, apperror.ValidationFailed("avatar", "could not read avatar"))
		return
	}

	p, err := h.profiles.SetAvatar(r.Context(), img)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

// HandleClearAvatar removes the avatar.
//
// HTTP: DELETE /api/profile/avatar
func (h *ProfileHandler) HandleClearAvatar(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.ClearAvatar(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

// HandleEditSite applies one of the two site dialogs.
//
// HTTP: PATCH /api/profile/site
// REQUEST BODY: {"variant": "usage", "site": {"heating": "gas", "equipments": {"pool": true}}}
func (h *ProfileHandler) HandleEditSite(w http.ResponseWriter, r *http.Request) {
	var req SiteEditRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := validate.Struct(h.validate, req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	p, err := h.profiles.UpdateSite(r.Context(), req.Variant, req.Site)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

// HandleSetNotifications records the site's notification preference.
//
// HTTP: PUT /api/profile/notifications
// REQUEST BODY: {"enabled": true}
func (h *ProfileHandler) HandleSetNotifications(w http.ResponseWriter, r *http.Request) {
	var req NotificationsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := validate.Struct(h.validate, req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	p, err := h.profiles.SetNotifications(r.Context(), *req.Enabled)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}
