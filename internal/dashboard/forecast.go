package dashboard

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

// HourlyForecast is the predicted production of one hour.
type HourlyForecast struct {
	Hour       int     `json:"hour"`
	Production float64 `json:"production"` // kWh
	WindSpeed  int     `json:"windSpeed"`  // km/h
}

// DayForecast is the prediction for one calendar day.
type DayForecast struct {
	Date            string           `json:"date"` // YYYY-MM-DD
	TotalProduction float64          `json:"totalProduction"`
	Hourly          []HourlyForecast `json:"hourlyData"`
}

// Forecaster simulates wind production. Each calendar day is generated once
// and then served from memory, so a page asking twice sees the same curve.
type Forecaster struct {
	mu    sync.Mutex
	rng   *rand.Rand
	cache map[string]DayForecast
}

func NewForecaster(rng *rand.Rand) *Forecaster {
	return &Forecaster{rng: rng, cache: make(map[string]DayForecast)}
}

// windMultiplier follows a typical pattern: windier in the morning and the
// evening, calmer at night and around noon.
func windMultiplier(hour int) float64 {
	switch {
	case hour >= 6 && hour <= 10:
		return 1.3
	case hour >= 16 && hour <= 20:
		return 1.4
	case hour >= 0 && hour <= 5:
		return 0.8
	case hour >= 11 && hour <= 15:
		return 0.9
	}
	return 1
}

// Day returns the forecast of the calendar day of date, in date's location.
func (f *Forecaster) Day(date time.Time) DayForecast {
	key := date.Format(time.DateOnly)

	f.mu.Lock()
	defer f.mu.Unlock()

	if fc, ok := f.cache[key]; ok {
		return clone(fc)
	}
	fc := f.generate(key)
	f.cache[key] = fc
	return clone(fc)
}

// Month returns one forecast per day of month.
func (f *Forecaster) Month(year int, month time.Month, loc *time.Location) []DayForecast {
	days := time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
	out := make([]DayForecast, days)
	for i := range out {
		out[i] = f.Day(time.Date(year, month, i+1, 0, 0, 0, 0, loc))
	}
	return out
}

// generate must be called with f.mu held; rand.Rand is not safe for
// concurrent use.
func (f *Forecaster) generate(key string) DayForecast {
	base := 0.8 + f.rng.Float64()*0.4

	hourly := make([]HourlyForecast, 24)
	var total float64
	for h := range hourly {
		mult := windMultiplier(h)
		wind := int(math.Round(15 + f.rng.Float64()*20*mult))
		prod := roundTo(base*mult*(0.8+f.rng.Float64()*0.4), 2)
		hourly[h] = HourlyForecast{Hour: h, Production: prod, WindSpeed: wind}
		total += prod
	}

	return DayForecast{Date: key, TotalProduction: roundTo(total, 1), Hourly: hourly}
}

func clone(fc DayForecast) DayForecast {
	fc.Hourly = append([]HourlyForecast(nil), fc.Hourly...)
	return fc
}
