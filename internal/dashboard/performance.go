// Package dashboard serves the figures of the Performances, Prévisions,
// Communauté and Documents pages. The data is simulated until the turbines
// report real measurements.
package dashboard

import (
	"math"
	"math/rand/v2"

	"github.com/Achille2gre/bonvan-wind-dashboard/internal/apperror"
)

// Period selects one of the three performance views.
type Period string

const (
	PeriodAnnual  Period = "annual"
	PeriodMonthly Period = "monthly"
	PeriodDaily   Period = "daily"
)

// PricePerKWh is the saving credited for every self-consumed kWh, in euros.
const PricePerKWh = 0.18

// Point is one bar of a performance chart. Label is the month ("Jan"), the
// day of the month ("1") or the hour ("00h") depending on the period.
type Point struct {
	Label       string  `json:"label"`
	Production  float64 `json:"production"`  // kWh
	Consumption float64 `json:"consumption"` // kWh
}

// Stats summarizes a period.
type Stats struct {
	Production      float64 `json:"production"`
	Consumption     float64 `json:"consumption"`
	AutoConsumption float64 `json:"autoconsumption"`
	Savings         float64 `json:"savings"` // euros
}

// Report is a chart plus its summary.
type Report struct {
	Period Period  `json:"period"`
	Points []Point `json:"points"`
	Stats  Stats   `json:"stats"`
}

var annualPoints = []Point{
	{"Jan", 420, 380}, {"Fév", 380, 350}, {"Mar", 450, 320}, {"Avr", 520, 280},
	{"Mai", 580, 250}, {"Jun", 540, 240}, {"Jul", 480, 260}, {"Aoû", 510, 270},
	{"Sep", 490, 300}, {"Oct", 440, 340}, {"Nov", 400, 370}, {"Déc", 350, 400},
}

var dailyPoints = []Point{
	{"00h", 2.1, 1.8}, {"01h", 2.3, 1.5}, {"02h", 2.5, 1.2}, {"03h", 2.8, 1.0},
	{"04h", 3.2, 1.1}, {"05h", 3.5, 1.5}, {"06h", 3.8, 2.2}, {"07h", 4.2, 3.5},
	{"08h", 4.8, 4.2}, {"09h", 5.1, 3.8}, {"10h", 5.5, 3.2}, {"11h", 5.8, 3.0},
	{"12h", 6.2, 3.5}, {"13h", 5.9, 3.2}, {"14h", 5.5, 2.8}, {"15h", 5.0, 2.5},
	{"16h", 4.5, 2.8}, {"17h", 4.0, 3.5}, {"18h", 3.5, 4.2}, {"19h", 3.0, 4.5},
	{"20h", 2.8, 4.0}, {"21h", 2.5, 3.5}, {"22h", 2.3, 2.8}, {"23h", 2.1, 2.2},
}

// Share of min(production, consumption) assumed self-consumed per period.
var autoConsumptionRatio = map[Period]float64{
	PeriodAnnual:  0.7,
	PeriodMonthly: 0.65,
	PeriodDaily:   0.6,
}

// Performance holds the three performance views. The monthly view is drawn
// once from rng at construction and stays fixed for the process lifetime.
type Performance struct {
	monthly []Point
}

func NewPerformance(rng *rand.Rand) *Performance {
	monthly := make([]Point, 31)
	for i := range monthly {
		monthly[i] = Point{
			Label:       itoa(i + 1),
			Production:  math.Round(10 + rng.Float64()*20),
			Consumption: math.Round(8 + rng.Float64()*15),
		}
	}
	return &Performance{monthly: monthly}
}

// Report returns the chart and stats of period.
func (p *Performance) Report(period Period) (Report, error) {
	var points []Point
	switch period {
	case PeriodAnnual:
		points = annualPoints
	case PeriodMonthly:
		points = p.monthly
	case PeriodDaily:
		points = dailyPoints
	default:
		return Report{}, apperror.ValidationFailed("period", "period must be one of: annual monthly daily")
	}

	out := make([]Point, len(points))
	copy(out, points)
	return Report{Period: period, Points: out, Stats: summarize(period, out)}, nil
}

func summarize(period Period, points []Point) Stats {
	var prod, cons float64
	for _, pt := range points {
		prod += pt.Production
		cons += pt.Consumption
	}
	auto := math.Min(prod, cons) * autoConsumptionRatio[period]
	savings := auto * PricePerKWh

	if period == PeriodDaily {
		return Stats{
			Production:      roundTo(prod, 1),
			Consumption:     roundTo(cons, 1),
			AutoConsumption: roundTo(auto, 1),
			Savings:         roundTo(savings, 2),
		}
	}
	return Stats{
		Production:      math.Round(prod),
		Consumption:     math.Round(cons),
		AutoConsumption: math.Round(auto),
		Savings:         math.Round(savings),
	}
}

func roundTo(v float64, decimals int) float64 {
	f := math.Pow(10, float64(decimals))
	return math.Round(v*f) / f
}
