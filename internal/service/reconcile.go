package service

import (
	"math"
	"strconv"
	"strings"

	"github.com/Achille2gre/bonvan-wind-dashboard/internal/model"
)

// siteField is one row of the reconciliation table: the answer fields that
// feed one SiteProfile field, in priority order, and the normalizer that
// turns a raw value into the canonical one. The first source present in the
// answers (and not null) is the only one normalized; an unrecognized value
// leaves the profile field unset rather than falling through to the next
// source.
type siteField struct {
	sources []string
	apply   func(site *model.SiteProfile, raw any) bool
}

// siteFields maps questionnaire answers, in both the current field names and
// the names older wizard versions stored, onto SiteProfile.
var siteFields = []siteField{
	{sources: []string{"siteType", "dwellingType", "typeSite"}, apply: set(normalizeSiteType, func(s *model.SiteProfile) **model.SiteType { return &s.SiteType })},
	{sources: []string{"peopleCount", "nombrePersonnes", "nbPeople"}, apply: set(normalizePeopleCount, func(s *model.SiteProfile) **int { return &s.PeopleCount })},
	{sources: []string{"climate", "climat"}, apply: set(normalizeClimate, func(s *model.SiteProfile) **model.Climate { return &s.Climate })},
	{sources: []string{"heating", "heatingType", "chauffage"}, apply: set(normalizeHeating, func(s *model.SiteProfile) **model.Heating { return &s.Heating })},
	{sources: []string{"tariffType", "tariff", "typeTarif", "optionTarifaire"}, apply: set(normalizeTariff, func(s *model.SiteProfile) **model.TariffType { return &s.TariffType })},
	{sources: []string{"consumptionPattern", "usagePeak", "consommePlutot"}, apply: set(normalizePattern, func(s *model.SiteProfile) **model.ConsumptionPattern { return &s.ConsumptionPattern })},
	{sources: []string{"allowNotifications", "notifications", "notify"}, apply: set(normalizeBool, func(s *model.SiteProfile) **bool { return &s.AllowNotifications })},

	{sources: []string{"electricCar", "hasEV", "voitureElectrique"}, apply: set(normalizeBool, func(s *model.SiteProfile) **bool { return &equipments(s).ElectricCar })},
	{sources: []string{"pool", "hasPool", "piscine"}, apply: set(normalizeBool, func(s *model.SiteProfile) **bool { return &equipments(s).Pool })},
	{sources: []string{"airConditioning", "hasAC", "climatisation"}, apply: set(normalizeBool, func(s *model.SiteProfile) **bool { return &equipments(s).AirConditioning })},
}

// set builds a row action from a normalizer and a field selector.
func set[T any](normalize func(any) (T, bool), field func(*model.SiteProfile) **T) func(*model.SiteProfile, any) bool {
	return func(site *model.SiteProfile, raw any) bool {
		v, ok := normalize(raw)
		if !ok {
			return false
		}
		*field(site) = &v
		return true
	}
}

func equipments(s *model.SiteProfile) *model.SiteEquipments {
	if s.Equipments == nil {
		s.Equipments = &model.SiteEquipments{}
	}
	return s.Equipments
}

// OnboardingToSite translates raw onboarding answers into a SiteProfile
// holding only the fields that could be recognized.
func OnboardingToSite(answers map[string]any) model.SiteProfile {
	var site model.SiteProfile
	if answers == nil {
		return site
	}

	for _, row := range siteFields {
		for _, name := range row.sources {
			raw, ok := answers[name]
			if !ok || raw == nil {
				continue
			}
			row.apply(&site, raw)
			break
		}
	}

	if site.Equipments.IsZero() {
		site.Equipments = nil
	}
	return site
}

// MergeMissingSite copies every field of incoming into current where current
// has none, nested equipments included. Fields already set in current are
// never touched, so the merge is idempotent and user edits always win.
// changed reports whether anything was copied.
func MergeMissingSite(current, incoming model.SiteProfile) (merged model.SiteProfile, changed bool) {
	merged = current

	changed = fillMissing(&merged.SiteType, incoming.SiteType) || changed
	changed = fillMissing(&merged.PeopleCount, incoming.PeopleCount) || changed
	changed = fillMissing(&merged.Climate, incoming.Climate) || changed
	changed = fillMissing(&merged.Heating, incoming.Heating) || changed
	changed = fillMissing(&merged.GPS, incoming.GPS) || changed
	changed = fillMissing(&merged.TariffType, incoming.TariffType) || changed
	changed = fillMissing(&merged.ConsumptionPattern, incoming.ConsumptionPattern) || changed
	changed = fillMissing(&merged.AllowNotifications, incoming.AllowNotifications) || changed
	changed = fillMissing(&merged.City, incoming.City) || changed

	if !incoming.Equipments.IsZero() {
		var eq model.SiteEquipments
		if current.Equipments != nil {
			eq = *current.Equipments
		}
		eqChanged := fillMissing(&eq.ElectricCar, incoming.Equipments.ElectricCar)
		eqChanged = fillMissing(&eq.Pool, incoming.Equipments.Pool) || eqChanged
		eqChanged = fillMissing(&eq.AirConditioning, incoming.Equipments.AirConditioning) || eqChanged
		if eqChanged {
			merged.Equipments = &eq
			changed = true
		}
	}

	return merged, changed
}

// fillMissing sets *dst to a copy of src when *dst is unset.
func fillMissing[T any](dst **T, src *T) bool {
	if *dst != nil || src == nil {
		return false
	}
	v := *src
	*dst = &v
	return true
}

// =========================================================================
// NORMALIZERS
// =========================================================================
//
// Each accepts the canonical token and the exact French label the wizard
// displayed, compared after trimming and lowercasing. Anything else is
// reported as unrecognized.

func token(raw any) (string, bool) {
	s, ok := raw.(string)
	if !ok {
		return "", false
	}
	return strings.ToLower(strings.TrimSpace(s)), true
}

func lookup[T any](table map[string]T) func(any) (T, bool) {
	return func(raw any) (T, bool) {
		var zero T
		s, ok := token(raw)
		if !ok {
			return zero, false
		}
		v, ok := table[s]
		return v, ok
	}
}

var (
	normalizeSiteType = lookup(map[string]model.SiteType{
		"house": model.SiteHouse, "maison": model.SiteHouse,
		"apartment": model.SiteApartment, "appartement": model.SiteApartment,
		"farm": model.SiteFarm, "exploitation": model.SiteFarm,
		"sme": model.SiteSME, "pme": model.SiteSME,
	})

	normalizeClimate = lookup(map[string]model.Climate{
		"mild": model.SiteClimateMild, "doux": model.SiteClimateMild,
		"medium": model.SiteClimateMedium, "temperate": model.SiteClimateMedium,
		"moyen": model.SiteClimateMedium, "tempéré": model.SiteClimateMedium,
		"cold": model.SiteClimateCold, "froid": model.SiteClimateCold,
	})

	normalizeHeating = lookup(map[string]model.Heating{
		"electric": model.SiteHeatingElectric, "électrique": model.SiteHeatingElectric, "electrique": model.SiteHeatingElectric,
		"gas": model.SiteHeatingGas, "gaz": model.SiteHeatingGas,
		"heat_pump": model.SiteHeatingHeatPump, "pac": model.SiteHeatingHeatPump, "pompe à chaleur": model.SiteHeatingHeatPump,
		"wood": model.SiteHeatingWood, "bois": model.SiteHeatingWood,
	})

	normalizeTariff = lookup(map[string]model.TariffType{
		"base":  model.SiteTariffBase,
		"hphc":  model.SiteTariffHPHC, "hp_hc": model.SiteTariffHPHC, "hp/hc": model.SiteTariffHPHC,
		"tempo":   model.SiteTariffTempo,
		"unknown": model.SiteTariffUnknown, "je ne sais pas": model.SiteTariffUnknown,
	})

	normalizePattern = lookup(map[string]model.ConsumptionPattern{
		"morning": model.PatternMorning, "le matin": model.PatternMorning, "matin": model.PatternMorning,
		"evening": model.PatternEvening, "le soir": model.PatternEvening, "soir": model.PatternEvening,
		"day": model.PatternDay, "la journée": model.PatternDay, "journée": model.PatternDay,
		"variable": model.PatternVariable,
	})
)

// normalizePeopleCount accepts 1..6 as a JSON number or a string, and "6+".
func normalizePeopleCount(raw any) (int, bool) {
	var n float64
	switch v := raw.(type) {
	case float64:
		n = v
	case int:
		n = float64(v)
	case string:
		s := strings.TrimSpace(v)
		if s == "6+" {
			return 6, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if n != math.Trunc(n) || n < 1 || n > 6 {
		return 0, false
	}
	return int(n), true
}

func normalizeBool(raw any) (bool, bool) {
	if b, ok := raw.(bool); ok {
		return b, true
	}
	s, ok := token(raw)
	if !ok {
		return false, false
	}
	switch s {
	case "true", "1", "yes", "oui":
		return true, true
	case "false", "0", "no", "non":
		return false, true
	}
	return false, false
}
