package service

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Achille2gre/bonvan-wind-dashboard/internal/model"
)

// =========================================================================
// OnboardingToSite TESTS
// =========================================================================

func TestOnboardingToSite(t *testing.T) {
	tests := []struct {
		name    string
		answers map[string]any
		want    model.SiteProfile
	}{
		{
			name: "nil answers",
			want: model.SiteProfile{},
		},
		{
			name: "current field names",
			answers: map[string]any{
				"dwellingType": "house",
				"peopleCount":  float64(4),
				"climate":      "temperate",
				"heatingType":  "heat_pump",
				"tariff":       "hp_hc",
				"usagePeak":    "evening",
				"hasEV":        true,
				"hasPool":      false,
				"hasAC":        false,
			},
			want: model.SiteProfile{
				SiteType:           model.Ptr(model.SiteHouse),
				PeopleCount:        model.Ptr(4),
				Climate:            model.Ptr(model.SiteClimateMedium),
				Heating:            model.Ptr(model.SiteHeatingHeatPump),
				TariffType:         model.Ptr(model.SiteTariffHPHC),
				ConsumptionPattern: model.Ptr(model.PatternEvening),
				Equipments: &model.SiteEquipments{
					ElectricCar:     model.Ptr(true),
					Pool:            model.Ptr(false),
					AirConditioning: model.Ptr(false),
				},
			},
		},
		{
			name: "legacy French labels",
			answers: map[string]any{
				"typeSite":          "Maison",
				"nombrePersonnes":   "6+",
				"climat":            "Tempéré",
				"chauffage":         "Pompe à chaleur",
				"optionTarifaire":   "Je ne sais pas",
				"consommePlutot":    "Le soir",
				"voitureElectrique": "oui",
			},
			want: model.SiteProfile{
				SiteType:           model.Ptr(model.SiteHouse),
				PeopleCount:        model.Ptr(6),
				Climate:            model.Ptr(model.SiteClimateMedium),
				Heating:            model.Ptr(model.SiteHeatingHeatPump),
				TariffType:         model.Ptr(model.SiteTariffUnknown),
				ConsumptionPattern: model.Ptr(model.PatternEvening),
				Equipments:         &model.SiteEquipments{ElectricCar: model.Ptr(true)},
			},
		},
		{
			name: "unrecognized values stay unset",
			answers: map[string]any{
				"dwellingType": "other",
				"heatingType":  "unknown",
				"peopleCount":  float64(2.5),
				"climate":      42,
			},
			want: model.SiteProfile{},
		},
		{
			name: "first present source wins without fallthrough",
			answers: map[string]any{
				"heating":   "plasma",
				"chauffage": "gaz",
			},
			want: model.SiteProfile{},
		},
		{
			name: "null source is skipped",
			answers: map[string]any{
				"heating":   nil,
				"chauffage": "gaz",
			},
			want: model.SiteProfile{Heating: model.Ptr(model.SiteHeatingGas)},
		},
		{
			name:    "notifications",
			answers: map[string]any{"allowNotifications": true},
			want:    model.SiteProfile{AllowNotifications: model.Ptr(true)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OnboardingToSite(tt.answers)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("OnboardingToSite() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizePeopleCount(t *testing.T) {
	tests := []struct {
		raw    any
		want   int
		wantOK bool
	}{
		{raw: float64(1), want: 1, wantOK: true},
		{raw: float64(6), want: 6, wantOK: true},
		{raw: 3, want: 3, wantOK: true},
		{raw: " 2 ", want: 2, wantOK: true},
		{raw: "6+", want: 6, wantOK: true},
		{raw: float64(0)},
		{raw: float64(7)},
		{raw: "beaucoup"},
		{raw: true},
	}

	for _, tt := range tests {
		got, ok := normalizePeopleCount(tt.raw)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("normalizePeopleCount(%#v) = (%d, %v), want (%d, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

// =========================================================================
// MergeMissingSite TESTS
// =========================================================================

func TestMergeMissingSite_KeepsExistingValues(t *testing.T) {
	current := model.SiteProfile{
		Heating:    model.Ptr(model.SiteHeatingGas),
		Equipments: &model.SiteEquipments{Pool: model.Ptr(true)},
	}
	incoming := model.SiteProfile{
		Heating:    model.Ptr(model.SiteHeatingElectric),
		TariffType: model.Ptr(model.SiteTariffTempo),
		Equipments: &model.SiteEquipments{Pool: model.Ptr(false), ElectricCar: model.Ptr(true)},
	}

	merged, changed := MergeMissingSite(current, incoming)
	if !changed {
		t.Fatal("changed = false, want true")
	}
	want := model.SiteProfile{
		Heating:    model.Ptr(model.SiteHeatingGas),
		TariffType: model.Ptr(model.SiteTariffTempo),
		Equipments: &model.SiteEquipments{Pool: model.Ptr(true), ElectricCar: model.Ptr(true)},
	}
	if diff := cmp.Diff(want, merged); diff != "" {
		t.Errorf("MergeMissingSite() mismatch (-want +got):\n%s", diff)
	}

	// current must not be mutated through shared pointers.
	if current.Equipments.ElectricCar != nil {
		t.Error("MergeMissingSite mutated current.Equipments")
	}
}

func TestMergeMissingSite_Idempotent(t *testing.T) {
	current := model.SiteProfile{SiteType: model.Ptr(model.SiteFarm)}
	incoming := OnboardingToSite(map[string]any{
		"dwellingType": "house",
		"climate":      "cold",
		"hasAC":        true,
	})

	once, changed := MergeMissingSite(current, incoming)
	if !changed {
		t.Fatal("first merge should report a change")
	}
	twice, changed := MergeMissingSite(once, incoming)
	if changed {
		t.Error("second merge reported a change")
	}
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("second merge altered the profile (-once +twice):\n%s", diff)
	}
	if *twice.SiteType != model.SiteFarm {
		t.Errorf("siteType = %v, want the user's farm", *twice.SiteType)
	}
}

func TestMergeMissingSite_NothingIncoming(t *testing.T) {
	current := model.SiteProfile{City: model.Ptr("Brest")}
	merged, changed := MergeMissingSite(current, model.SiteProfile{})
	if changed {
		t.Error("changed = true for an empty incoming profile")
	}
	if diff := cmp.Diff(current, merged); diff != "" {
		t.Errorf("merge altered the profile:\n%s", diff)
	}
}
