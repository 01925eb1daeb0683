package dashboard

import (
	"strconv"
	"strings"
)

// FranceID is the national aggregate, also the fallback for unknown ids.
const FranceID = "france"

// Region is the Bonvan community in one area.
type Region struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	FullName         string `json:"fullName"`
	Turbines         int    `json:"turbines"`
	AnnualProduction int    `json:"annualProduction"` // kWh
	CO2Avoided       int    `json:"co2Avoided"`       // tonnes CO2e
}

var france = Region{ID: FranceID, Name: "France", FullName: "France", Turbines: 2847, AnnualProduction: 14235000, CO2Avoided: 5694}

// regions lists the administrative regions in display order.
var regions = []Region{
	{ID: "ile-de-france", Name: "Île-de-France", FullName: "Île-de-France", Turbines: 312, AnnualProduction: 1560000, CO2Avoided: 624},
	{ID: "auvergne-rhone-alpes", Name: "AURA", FullName: "Auvergne-Rhône-Alpes", Turbines: 428, AnnualProduction: 2140000, CO2Avoided: 856},
	{ID: "bretagne", Name: "Bretagne", FullName: "Bretagne", Turbines: 523, AnnualProduction: 2615000, CO2Avoided: 1046},
	{ID: "normandie", Name: "Normandie", FullName: "Normandie", Turbines: 387, AnnualProduction: 1935000, CO2Avoided: 774},
	{ID: "hauts-de-france", Name: "Hauts-de-France", FullName: "Hauts-de-France", Turbines: 456, AnnualProduction: 2280000, CO2Avoided: 912},
	{ID: "grand-est", Name: "Grand Est", FullName: "Grand Est", Turbines: 298, AnnualProduction: 1490000, CO2Avoided: 596},
	{ID: "pays-de-la-loire", Name: "Pays de la Loire", FullName: "Pays de la Loire", Turbines: 267, AnnualProduction: 1335000, CO2Avoided: 534},
	{ID: "nouvelle-aquitaine", Name: "Nouvelle-Aquitaine", FullName: "Nouvelle-Aquitaine", Turbines: 234, AnnualProduction: 1170000, CO2Avoided: 468},
	{ID: "occitanie", Name: "Occitanie", FullName: "Occitanie", Turbines: 312, AnnualProduction: 1560000, CO2Avoided: 624},
	{ID: "provence-alpes-cote-d-azur", Name: "PACA", FullName: "Provence-Alpes-Côte d'Azur", Turbines: 156, AnnualProduction: 780000, CO2Avoided: 312},
	{ID: "corse", Name: "Corse", FullName: "Corse", Turbines: 42, AnnualProduction: 210000, CO2Avoided: 84},
	{ID: "bourgogne-franche-comte", Name: "Bourgogne-F-C", FullName: "Bourgogne-Franche-Comté", Turbines: 178, AnnualProduction: 890000, CO2Avoided: 356},
	{ID: "centre-val-de-loire", Name: "Centre-VdL", FullName: "Centre-Val de Loire", Turbines: 254, AnnualProduction: 1270000, CO2Avoided: 508},
}

// macro groups regions into the five areas of the map.
type macro struct {
	id, name string
	members  []string
}

var macros = []macro{
	{id: "nord-ouest", name: "Nord-Ouest", members: []string{"bretagne", "normandie", "pays-de-la-loire"}},
	{id: "nord-est", name: "Nord-Est", members: []string{"hauts-de-france", "grand-est", "ile-de-france"}},
	{id: "centre", name: "Centre", members: []string{"centre-val-de-loire", "bourgogne-franche-comte"}},
	{id: "sud-ouest", name: "Sud-Ouest", members: []string{"nouvelle-aquitaine", "occitanie"}},
	{id: "sud-est", name: "Sud-Est", members: []string{"auvergne-rhone-alpes", "provence-alpes-cote-d-azur", "corse"}},
}

// inseeRegions maps INSEE region codes to region ids.
var inseeRegions = map[string]string{
	"11": "ile-de-france",
	"24": "centre-val-de-loire",
	"27": "bourgogne-franche-comte",
	"28": "normandie",
	"32": "hauts-de-france",
	"44": "grand-est",
	"52": "pays-de-la-loire",
	"53": "bretagne",
	"75": "nouvelle-aquitaine",
	"76": "occitanie",
	"84": "auvergne-rhone-alpes",
	"93": "provence-alpes-cote-d-azur",
	"94": "corse",
}

// shortLabels abbreviates the long region names on the map caption.
var shortLabels = map[string]string{
	"Auvergne-Rhône-Alpes":       "AURA",
	"Provence-Alpes-Côte d'Azur": "PACA",
}

// Regions returns every administrative region, France excluded.
func Regions() []Region {
	return append([]Region(nil), regions...)
}

// RegionByID returns a region, a macro-region aggregated from its members,
// or France for any other id.
func RegionByID(id string) Region {
	if id == FranceID {
		return france
	}
	for _, r := range regions {
		if r.ID == id {
			return r
		}
	}
	for _, m := range macros {
		if m.id == id {
			return m.aggregate()
		}
	}
	return france
}

func (m macro) aggregate() Region {
	out := Region{ID: m.id, Name: m.name, FullName: m.name}
	for _, id := range m.members {
		r := RegionByID(id)
		out.Turbines += r.Turbines
		out.AnnualProduction += r.AnnualProduction
		out.CO2Avoided += r.CO2Avoided
	}
	return out
}

// Selection is what the community page shows after a click on the map:
// figures of the macro-region, caption of the clicked region.
type Selection struct {
	Code  string `json:"code,omitempty"` // INSEE code of the clicked region
	Macro string `json:"macro"`
	Label string `json:"label"`
	Data  Region `json:"data"`
}

// Select resolves a click on the map by INSEE region code. An empty or
// unknown code selects France.
func Select(code string) Selection {
	code = strings.TrimSpace(code)
	id, ok := inseeRegions[code]
	if !ok {
		return Selection{Macro: FranceID, Label: france.Name, Data: france}
	}

	region := RegionByID(id)
	m := macroOf(id)
	label := region.FullName
	if short, ok := shortLabels[label]; ok {
		label = short
	}
	return Selection{Code: code, Macro: m.id, Label: label, Data: m.aggregate()}
}

func macroOf(regionID string) macro {
	for _, m := range macros {
		for _, id := range m.members {
			if id == regionID {
				return m
			}
		}
	}
	return macro{id: FranceID}
}

// FormatNumber renders large counts compactly: 14235000 → "14.2M",
// 2140 → "2k".
func FormatNumber(n int) string {
	switch {
	case n >= 1_000_000:
		return strconv.FormatFloat(float64(n)/1_000_000, 'f', 1, 64) + "M"
	case n >= 1_000:
		return strconv.FormatFloat(float64(n)/1_000, 'f', 0, 64) + "k"
	}
	return itoa(n)
}

func itoa(n int) string { return strconv.Itoa(n) }
