package model

// Enumerations used by the onboarding questionnaire.
type (
	DwellingType     string
	ClimateType      string
	HeatingType      string
	WaterHeatingType string
	EnergyTariff     string
	UsagePeak        string
	MainGoal         string
	NotifyFrequency  string
	NotifyTime       string
)

const (
	DwellingHouse     DwellingType = "house"
	DwellingApartment DwellingType = "apartment"
	DwellingFarm      DwellingType = "farm"
	DwellingSME       DwellingType = "sme"
	DwellingOther     DwellingType = "other"

	ClimateMild      ClimateType = "mild"
	ClimateTemperate ClimateType = "temperate"
	ClimateCold      ClimateType = "cold"

	HeatingElectric HeatingType = "electric"
	HeatingGas      HeatingType = "gas"
	HeatingHeatPump HeatingType = "heat_pump"
	HeatingWood     HeatingType = "wood"
	HeatingOther    HeatingType = "other"
	HeatingUnknown  HeatingType = "unknown"

	WaterHeatingElectric WaterHeatingType = "electric"
	WaterHeatingGas      WaterHeatingType = "gas"
	WaterHeatingHeatPump WaterHeatingType = "heat_pump"
	WaterHeatingSolar    WaterHeatingType = "solar"
	WaterHeatingOther    WaterHeatingType = "other"
	WaterHeatingUnknown  WaterHeatingType = "unknown"

	TariffBase    EnergyTariff = "base"
	TariffHPHC    EnergyTariff = "hp_hc"
	TariffTempo   EnergyTariff = "tempo"
	TariffUnknown EnergyTariff = "unknown"

	PeakMorning  UsagePeak = "morning"
	PeakEvening  UsagePeak = "evening"
	PeakDay      UsagePeak = "day"
	PeakVariable UsagePeak = "variable"

	GoalSaveMoney  MainGoal = "save_money"
	GoalReduceCO2  MainGoal = "reduce_co2"
	GoalAutonomy   MainGoal = "autonomy"
	GoalUnderstand MainGoal = "understand"

	NotifyDaily      NotifyFrequency = "daily"
	NotifyWeekly     NotifyFrequency = "weekly"
	NotifyAlertsOnly NotifyFrequency = "alerts_only"
	NotifyNone       NotifyFrequency = "none"

	NotifyAtMorning NotifyTime = "morning"
	NotifyAtMidday  NotifyTime = "midday"
	NotifyAtEvening NotifyTime = "evening"
	NotifyAtAny     NotifyTime = "any"
)

// OnboardingAnswers is the flat questionnaire record.
//
// Nullable fields are pointers without omitempty so an unanswered question is
// persisted as JSON null, matching what the wizard stored.
type OnboardingAnswers struct {
	DwellingType *DwellingType `json:"dwellingType" validate:"omitempty,oneof=house apartment farm sme other"`
	PeopleCount  *int          `json:"peopleCount" validate:"omitempty,min=1,max=6"` // 6 means "6+"
	Climate      *ClimateType  `json:"climate" validate:"omitempty,oneof=mild temperate cold"`

	HeatingType      *HeatingType      `json:"heatingType" validate:"omitempty,oneof=electric gas heat_pump wood other unknown"`
	WaterHeatingType *WaterHeatingType `json:"waterHeatingType" validate:"omitempty,oneof=electric gas heat_pump solar other unknown"`

	HasEV   bool `json:"hasEV"`
	HasPool bool `json:"hasPool"`
	HasAC   bool `json:"hasAC"`

	Tariff    *EnergyTariff `json:"tariff" validate:"omitempty,oneof=base hp_hc tempo unknown"`
	UsagePeak *UsagePeak    `json:"usagePeak" validate:"omitempty,oneof=morning evening day variable"`

	Goal *MainGoal `json:"goal" validate:"omitempty,oneof=save_money reduce_co2 autonomy understand"`

	TurbinesCount  *int            `json:"turbinesCount" validate:"omitempty,min=0,max=100"`
	OwnershipModel *OwnershipModel `json:"ownershipModel" validate:"omitempty,oneof=owner third_party"`

	AllowNotifications bool             `json:"allowNotifications"`
	NotifyFrequency    *NotifyFrequency `json:"notifyFrequency" validate:"omitempty,oneof=daily weekly alerts_only none"`
	NotifyTime         *NotifyTime      `json:"notifyTime" validate:"omitempty,oneof=morning midday evening any"`
}

// DefaultOnboardingAnswers returns the wizard's starting answers: every
// question unanswered and every boolean false.
func DefaultOnboardingAnswers() OnboardingAnswers {
	return OnboardingAnswers{}
}

// OnboardingStorage is the persisted completion record.
// When Completed is false, CompletedAt and Answers are absent.
type OnboardingStorage struct {
	Completed   bool               `json:"completed"`
	CompletedAt string             `json:"completedAt,omitempty"`
	Answers     *OnboardingAnswers `json:"answers,omitempty"`
}
