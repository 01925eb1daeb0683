package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/Achille2gre/bonvan-wind-dashboard/internal/lib/validate"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/model"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/repository"
)

// SettingsPatch lists the settings to change; nil fields are kept.
type SettingsPatch struct {
	Theme                  *string                `json:"theme" validate:"omitempty,oneof=light dark system"`
	Lang                   *string                `json:"lang" validate:"omitempty,oneof=fr en"`
	NotificationsEnabled   *bool                  `json:"notificationsEnabled"`
	NotificationsFrequency *model.NotifyFrequency `json:"notificationsFrequency" validate:"omitempty,oneof=daily weekly alerts_only none"`
}

// SettingsService reads and writes the plain-string slots of the Settings
// page and the dev auth bypass flag.
type SettingsService struct {
	store    repository.KeyValueStore
	validate *validator.Validate
	logger   *slog.Logger

	mu sync.Mutex
}

func NewSettingsService(store repository.KeyValueStore, logger *slog.Logger) *SettingsService {
	return &SettingsService{store: store, validate: validate.New(), logger: logger}
}

// Get returns the settings; a missing or unrecognized slot yields its default.
func (s *SettingsService) Get(ctx context.Context) (model.Settings, error) {
	out := model.DefaultSettings()

	theme, err := s.enumSlot(ctx, repository.KeyTheme, "theme", out.Theme)
	if err != nil {
		return out, err
	}
	lang, err := s.enumSlot(ctx, repository.KeyLang, "lang", out.Lang)
	if err != nil {
		return out, err
	}
	freq, err := s.enumSlot(ctx, repository.KeyNotificationsFrequency, "notificationsFrequency", string(out.NotificationsFrequency))
	if err != nil {
		return out, err
	}

	enabled, found, err := repository.LoadString(ctx, s.store, repository.KeyNotificationsEnabled)
	if err != nil {
		return out, fmt.Errorf("service/settings: loading: %w", err)
	}
	if found {
		out.NotificationsEnabled = enabled == "true"
	}

	out.Theme = theme
	out.Lang = lang
	out.NotificationsFrequency = model.NotifyFrequency(freq)
	return out, nil
}

// Update validates patch and writes the slots it names.
func (s *SettingsService) Update(ctx context.Context, patch SettingsPatch) (model.Settings, error) {
	if err := validate.Struct(s.validate, patch); err != nil {
		return model.Settings{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var writes [][2]string // key, value
	if patch.Theme != nil {
		writes = append(writes, [2]string{repository.KeyTheme, *patch.Theme})
	}
	if patch.Lang != nil {
		writes = append(writes, [2]string{repository.KeyLang, *patch.Lang})
	}
	if patch.NotificationsEnabled != nil {
		writes = append(writes, [2]string{repository.KeyNotificationsEnabled, strconv.FormatBool(*patch.NotificationsEnabled)})
	}
	if patch.NotificationsFrequency != nil {
		writes = append(writes, [2]string{repository.KeyNotificationsFrequency, string(*patch.NotificationsFrequency)})
	}

	for _, w := range writes {
		if err := repository.SaveString(ctx, s.store, w[0], w[1]); err != nil {
			return model.Settings{}, fmt.Errorf("service/settings: saving %s: %w", w[0], err)
		}
	}

	return s.Get(ctx)
}

// AuthBypass reports the persisted dev bypass flag. An absent slot is false.
func (s *SettingsService) AuthBypass(ctx context.Context) (bool, error) {
	v, _, err := repository.LoadString(ctx, s.store, repository.KeyDevDisableAuth)
	if err != nil {
		return false, fmt.Errorf("service/settings: loading auth bypass: %w", err)
	}
	return v == "true", nil
}

// SetAuthBypass writes the dev bypass flag as "true" or "false".
func (s *SettingsService) SetAuthBypass(ctx context.Context, on bool) error {
	if err := repository.SaveString(ctx, s.store, repository.KeyDevDisableAuth, strconv.FormatBool(on)); err != nil {
		return fmt.Errorf("service/settings: saving auth bypass: %w", err)
	}
	s.logger.Warn("dev auth bypass changed", slog.Bool("enabled", on))
	return nil
}

// enumSlot reads a string slot and falls back to def when the stored value
// is absent or would not validate as field of model.Settings.
func (s *SettingsService) enumSlot(ctx context.Context, key, field, def string) (string, error) {
	v, found, err := repository.LoadString(ctx, s.store, key)
	if err != nil {
		return def, fmt.Errorf("service/settings: loading %s: %w", key, err)
	}
	if !found {
		return def, nil
	}
	probe := model.DefaultSettings()
	switch field {
	case "theme":
		probe.Theme = v
	case "lang":
		probe.Lang = v
	case "notificationsFrequency":
		probe.NotificationsFrequency = model.NotifyFrequency(v)
	}
	if err := s.validate.Struct(probe); err != nil {
		s.logger.Debug("ignoring unrecognized setting", slog.String("key", key), slog.String("value", v))
		return def, nil
	}
	return v, nil
}
