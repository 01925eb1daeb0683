package service

import "github.com/Achille2gre/bonvan-wind-dashboard/internal/model"

// MaxTips is the number of tips shown at once.
const MaxTips = 3

// Tip is a personalized energy-saving suggestion.
type Tip struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type tipRule struct {
	tip   Tip
	match func(a *model.OnboardingAnswers) bool
}

func is[T comparable](p *T, v T) bool { return p != nil && *p == v }

// tipRules are evaluated in order; the first MaxTips matches are kept.
var tipRules = []tipRule{
	{
		tip: Tip{
			ID:          "hp_hc_shift",
			Title:       "Décale tes gros usages en Heures Creuses",
			Description: "Lave-linge, lave-vaisselle, chauffe-eau et recharge VE : idéalement sur la plage HC pour réduire ta facture.",
		},
		match: func(a *model.OnboardingAnswers) bool { return is(a.Tariff, model.TariffHPHC) },
	},
	{
		tip: Tip{
			ID:          "tempo_alert",
			Title:       "Tempo : anticipe les jours rouges",
			Description: "Réduis les usages électriques forts (chauffage, chauffe-eau) quand c’est rouge, et privilégie les bleus/blancs.",
		},
		match: func(a *model.OnboardingAnswers) bool { return is(a.Tariff, model.TariffTempo) },
	},
	{
		tip: Tip{
			ID:          "ev_schedule",
			Title:       "Recharge VE : programme plutôt la nuit",
			Description: "Même sans borne intelligente, programmer une recharge décalée peut aider à lisser et réduire tes coûts.",
		},
		match: func(a *model.OnboardingAnswers) bool { return a.HasEV },
	},
	{
		tip: Tip{
			ID:          "pool_pump",
			Title:       "Piscine : optimise la filtration",
			Description: "Programme la filtration aux horaires les plus favorables (et surveille la durée : c’est un poste important).",
		},
		match: func(a *model.OnboardingAnswers) bool { return a.HasPool },
	},
	{
		tip: Tip{
			ID:          "ac_smart",
			Title:       "Clim : vise une consigne réaliste",
			Description: "Une consigne trop basse coûte très cher : 1–2°C de plus peut déjà faire une différence sensible.",
		},
		match: func(a *model.OnboardingAnswers) bool { return a.HasAC },
	},
	{
		tip: Tip{
			ID:          "heating_1c",
			Title:       "Chauffage électrique : baisse d’1°C",
			Description: "Un petit ajustement de consigne + une bonne programmation peuvent réduire la consommation sans perdre en confort.",
		},
		// An unanswered climate counts as not mild.
		match: func(a *model.OnboardingAnswers) bool {
			return is(a.HeatingType, model.HeatingElectric) && !is(a.Climate, model.ClimateMild)
		},
	},
	{
		tip: Tip{
			ID:          "evening_peak",
			Title:       "Pic du soir : évite les multi-appareils",
			Description: "Limiter la cuisson + chauffage + ballon + VE en même temps peut réduire la puissance appelée et améliorer l’efficacité.",
		},
		match: func(a *model.OnboardingAnswers) bool { return is(a.UsagePeak, model.PeakEvening) },
	},
	{
		tip: Tip{
			ID:          "autonomy",
			Title:       "Autonomie : commence par mesurer",
			Description: "On va t’aider à identifier les postes les plus lourds et à déplacer ce qui peut l’être sur les bons créneaux.",
		},
		match: func(a *model.OnboardingAnswers) bool { return is(a.Goal, model.GoalAutonomy) },
	},
}

// PersonalizedTips returns at most MaxTips tips for the answers. Nil answers
// (onboarding skipped or not done) yield none.
func PersonalizedTips(a *model.OnboardingAnswers) []Tip {
	tips := []Tip{}
	if a == nil {
		return tips
	}
	for _, r := range tipRules {
		if len(tips) == MaxTips {
			break
		}
		if r.match(a) {
			tips = append(tips, r.tip)
		}
	}
	return tips
}
