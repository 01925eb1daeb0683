package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"

	"github.com/Achille2gre/bonvan-wind-dashboard/internal/apperror"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/lib/validate"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/model"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/repository"
)

// MaxAvatarBytes bounds an uploaded avatar before base64 encoding.
const MaxAvatarBytes = 2 << 20

// SiteVariant selects which part of the site record an edit replaces,
// mirroring the two edit dialogs of the Profile page.
type SiteVariant string

const (
	// SiteVariantSite replaces the site type only.
	SiteVariantSite SiteVariant = "site"
	// SiteVariantUsage replaces heating, tariff and consumption pattern and
	// merges the equipments.
	SiteVariantUsage SiteVariant = "usage"
)

// AnswersSource provides raw onboarding answers for reconciliation.
type AnswersSource interface {
	RawAnswers(ctx context.Context) (map[string]any, error)
}

// ProfileService manages the merged user profile. Each mutation loads the
// profile, applies one change and saves the whole object.
type ProfileService struct {
	store    repository.KeyValueStore
	answers  AnswersSource
	validate *validator.Validate
	logger   *slog.Logger

	mu sync.Mutex
}

func NewProfileService(store repository.KeyValueStore, answers AnswersSource, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		store:    store,
		answers:  answers,
		validate: validate.New(),
		logger:   logger,
	}
}

// Load returns the stored profile deep-merged with the defaults: fields the
// stored document omits, nested ones included, take their default value.
func (s *ProfileService) Load(ctx context.Context) (model.UserProfile, error) {
	p, _, err := repository.LoadJSONWithDefaults(ctx, s.store, repository.KeyProfile, model.DefaultUserProfile)
	if err != nil {
		return model.DefaultUserProfile(), fmt.Errorf("service/profile: loading: %w", err)
	}
	return withDefaults(p), nil
}

// Save validates and persists the whole profile. An avatar that differs
// from the stored one must be a base64 data URL of a raster image, as
// SetAvatar produces.
func (s *ProfileService) Save(ctx context.Context, p model.UserProfile) (model.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.AvatarDataURL != "" {
		current, err := s.Load(ctx)
		if err != nil {
			return model.UserProfile{}, err
		}
		if p.AvatarDataURL != current.AvatarDataURL {
			if err := checkAvatarURL(p.AvatarDataURL); err != nil {
				return model.UserProfile{}, err
			}
		}
	}
	return s.save(ctx, p)
}

// SetAvatar stores img as a base64 data URL. img must be a raster image.
func (s *ProfileService) SetAvatar(ctx context.Context, img []byte) (model.UserProfile, error) {
	mtype, err := detectAvatar("avatar", img)
	if err != nil {
		return model.UserProfile{}, err
	}
	dataURL := "data:" + mtype + ";base64," + base64.StdEncoding.EncodeToString(img)

	return s.update(ctx, func(p *model.UserProfile) {
		p.AvatarDataURL = dataURL
	})
}

// ClearAvatar removes the avatar.
func (s *ProfileService) ClearAvatar(ctx context.Context) (model.UserProfile, error) {
	return s.update(ctx, func(p *model.UserProfile) {
		p.AvatarDataURL = ""
	})
}

// UpdateSite applies an edit from one of the site dialogs. Fields outside
// the variant are left alone; fields inside it are replaced, so an unset
// field in next clears the stored value. Equipments are merged, not
// replaced.
func (s *ProfileService) UpdateSite(ctx context.Context, variant SiteVariant, next model.SiteProfile) (model.UserProfile, error) {
	switch variant {
	case SiteVariantSite, SiteVariantUsage:
	default:
		return model.UserProfile{}, apperror.ValidationFailed("variant", "variant must be one of: site usage")
	}

	return s.update(ctx, func(p *model.UserProfile) {
		site := p.Site
		if variant == SiteVariantSite {
			site.SiteType = next.SiteType
			return
		}

		site.Heating = next.Heating
		site.TariffType = next.TariffType
		site.ConsumptionPattern = next.ConsumptionPattern

		var eq model.SiteEquipments
		if site.Equipments != nil {
			eq = *site.Equipments
		}
		if next.Equipments != nil {
			if next.Equipments.ElectricCar != nil {
				eq.ElectricCar = next.Equipments.ElectricCar
			}
			if next.Equipments.Pool != nil {
				eq.Pool = next.Equipments.Pool
			}
			if next.Equipments.AirConditioning != nil {
				eq.AirConditioning = next.Equipments.AirConditioning
			}
		}
		site.Equipments = &eq
	})
}

// SetNotifications records the notification preference of the site.
func (s *ProfileService) SetNotifications(ctx context.Context, enabled bool) (model.UserProfile, error) {
	return s.update(ctx, func(p *model.UserProfile) {
		p.Site.AllowNotifications = &enabled
	})
}

// SetAssets replaces the installed fleet description.
func (s *ProfileService) SetAssets(ctx context.Context, assets model.BonvanAssets) (model.UserProfile, error) {
	return s.update(ctx, func(p *model.UserProfile) {
		p.Assets = assets
	})
}

// SetOrderNumber records the order number.
func (s *ProfileService) SetOrderNumber(ctx context.Context, orderNumber string) (model.UserProfile, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	return s.update(ctx, func(p *model.UserProfile) {
		p.OrderNumber = orderNumber
	})
}

// LoadReconciled loads the profile and fills its unset site fields from the
// onboarding answers. The profile is saved only when that changed something.
func (s *ProfileService) LoadReconciled(ctx context.Context) (model.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.Load(ctx)
	if err != nil {
		return p, err
	}

	raw, err := s.answers.RawAnswers(ctx)
	if err != nil {
		return p, fmt.Errorf("service/profile: reading onboarding answers: %w", err)
	}
	if len(raw) == 0 {
		return p, nil
	}

	merged, changed := MergeMissingSite(*p.Site, OnboardingToSite(raw))
	if !changed {
		return p, nil
	}
	p.Site = &merged

	saved, err := s.save(ctx, p)
	if err != nil {
		return p, err
	}
	s.logger.Info("profile site completed from onboarding answers")
	return saved, nil
}

func (s *ProfileService) update(ctx context.Context, mutate func(p *model.UserProfile)) (model.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.Load(ctx)
	if err != nil {
		return p, err
	}
	mutate(&p)
	return s.save(ctx, p)
}

func (s *ProfileService) save(ctx context.Context, p model.UserProfile) (model.UserProfile, error) {
	p = withDefaults(p)
	if err := validate.Struct(s.validate, p); err != nil {
		return model.UserProfile{}, err
	}
	if err := repository.SaveJSON(ctx, s.store, repository.KeyProfile, p); err != nil {
		return model.UserProfile{}, fmt.Errorf("service/profile: saving: %w", err)
	}
	return p, nil
}

// detectAvatar returns the MIME type of img, which must be a non-empty
// raster image of at most MaxAvatarBytes.
func detectAvatar(field string, img []byte) (string, error) {
	if len(img) == 0 {
		return "", apperror.ValidationFailed(field, "avatar is empty")
	}
	if len(img) > MaxAvatarBytes {
		return "", apperror.ValidationFailed(field, fmt.Sprintf("avatar must be at most %d bytes", MaxAvatarBytes))
	}

	mtype := mimetype.Detect(img)
	// SVG is an image type but can embed script.
	if !strings.HasPrefix(mtype.String(), "image/") || mtype.Is("image/svg+xml") {
		return "", apperror.ValidationFailed(field, "avatar must be an image")
	}
	return mtype.String(), nil
}

// checkAvatarURL accepts data:<type>;base64,<payload> where the payload is
// an avatar detectAvatar accepts and <type> is its detected type.
func checkAvatarURL(dataURL string) error {
	const field = "avatarDataUrl"

	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return apperror.ValidationFailed(field, "avatar must be a base64 data URL")
	}
	declared, payload, ok := strings.Cut(rest, ";base64,")
	if !ok {
		return apperror.ValidationFailed(field, "avatar must be a base64 data URL")
	}
	if len(payload) > base64.StdEncoding.EncodedLen(MaxAvatarBytes) {
		return apperror.ValidationFailed(field, fmt.Sprintf("avatar must be at most %d bytes", MaxAvatarBytes))
	}
	img, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return apperror.ValidationFailed(field, "avatar is not valid base64")
	}

	detected, err := detectAvatar(field, img)
	if err != nil {
		return err
	}
	if declared != detected {
		return apperror.ValidationFailed(field, fmt.Sprintf("avatar is %s, not %s", detected, declared))
	}
	return nil
}

// withDefaults fills what a decoded or caller-built profile may lack.
func withDefaults(p model.UserProfile) model.UserProfile {
	def := model.DefaultUserProfile()
	if p.Site == nil {
		p.Site = def.Site
	}
	if p.Assets.OwnershipModel == "" {
		p.Assets.OwnershipModel = def.Assets.OwnershipModel
	}
	return p
}
