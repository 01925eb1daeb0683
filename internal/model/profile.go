package model

// OwnershipModel says who owns the installed turbines.
type OwnershipModel string

const (
	OwnershipOwner      OwnershipModel = "owner"
	OwnershipThirdParty OwnershipModel = "third_party"
)

// Site profile enumerations. These are the canonical profile values, which
// differ slightly from the questionnaire's (e.g. "medium" vs "temperate",
// "hphc" vs "hp_hc").
type (
	SiteType           string
	Climate            string
	Heating            string
	TariffType         string
	ConsumptionPattern string
)

const (
	SiteHouse     SiteType = "house"
	SiteApartment SiteType = "apartment"
	SiteFarm      SiteType = "farm"
	SiteSME       SiteType = "sme"

	SiteClimateMild   Climate = "mild"
	SiteClimateMedium Climate = "medium"
	SiteClimateCold   Climate = "cold"

	SiteHeatingElectric Heating = "electric"
	SiteHeatingGas      Heating = "gas"
	SiteHeatingHeatPump Heating = "heat_pump"
	SiteHeatingWood     Heating = "wood"

	SiteTariffBase    TariffType = "base"
	SiteTariffHPHC    TariffType = "hphc"
	SiteTariffTempo   TariffType = "tempo"
	SiteTariffUnknown TariffType = "unknown"

	PatternMorning  ConsumptionPattern = "morning"
	PatternEvening  ConsumptionPattern = "evening"
	PatternDay      ConsumptionPattern = "day"
	PatternVariable ConsumptionPattern = "variable"
)

// BonvanAssets describes the installed fleet.
type BonvanAssets struct {
	TurbinesCount  int            `json:"turbinesCount" validate:"min=0,max=100"`
	OwnershipModel OwnershipModel `json:"ownershipModel" validate:"oneof=owner third_party"`
}

// SiteEquipments is a partial record: a nil field means "not answered".
type SiteEquipments struct {
	ElectricCar     *bool `json:"electricCar,omitempty"`
	Pool            *bool `json:"pool,omitempty"`
	AirConditioning *bool `json:"airConditioning,omitempty"`
}

// IsZero reports whether no equipment has been answered.
func (e *SiteEquipments) IsZero() bool {
	return e == nil || (e.ElectricCar == nil && e.Pool == nil && e.AirConditioning == nil)
}

// GPSCoords are WGS84 coordinates of the installation.
type GPSCoords struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

// SiteProfile has no required fields; every field is filled progressively,
// either by the user or by reconciliation with onboarding answers.
type SiteProfile struct {
	SiteType    *SiteType  `json:"siteType,omitempty" validate:"omitempty,oneof=house apartment farm sme"`
	PeopleCount *int       `json:"peopleCount,omitempty" validate:"omitempty,min=1,max=6"`
	Climate     *Climate   `json:"climate,omitempty" validate:"omitempty,oneof=mild medium cold"`
	Heating     *Heating   `json:"heating,omitempty" validate:"omitempty,oneof=electric gas heat_pump wood"`
	GPS         *GPSCoords `json:"gps,omitempty"`

	Equipments *SiteEquipments `json:"equipments,omitempty"`

	TariffType         *TariffType         `json:"tariffType,omitempty" validate:"omitempty,oneof=base hphc tempo unknown"`
	ConsumptionPattern *ConsumptionPattern `json:"consumptionPattern,omitempty" validate:"omitempty,oneof=morning evening day variable"`

	AllowNotifications *bool `json:"allowNotifications,omitempty"`

	City *string `json:"city,omitempty" validate:"omitempty,max=120"`
}

// UserProfile is the merged profile shown on the Profile page.
type UserProfile struct {
	AvatarDataURL string       `json:"avatarDataUrl,omitempty"` // base64 data URL
	Assets        BonvanAssets `json:"assets"`
	Site          *SiteProfile `json:"site,omitempty"`
	OrderNumber   string       `json:"orderNumber,omitempty"`
}

// DefaultUserProfile is the profile used before anything has been saved.
func DefaultUserProfile() UserProfile {
	return UserProfile{
		Assets: BonvanAssets{
			TurbinesCount:  0,
			OwnershipModel: OwnershipOwner,
		},
		Site: &SiteProfile{},
	}
}

// Ptr returns a pointer to v. Handy for optional enum fields.
func Ptr[T any](v T) *T {
	return &v
}
