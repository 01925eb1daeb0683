package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Achille2gre/bonvan-wind-dashboard/internal/apperror"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/dashboard"
)

// DashboardHandler serves the performance, forecast, community and
// documents pages.
type DashboardHandler struct {
	performance *dashboard.Performance
	forecasts   *dashboard.Forecaster
	loc         *time.Location
	now         func() time.Time
	logger      *slog.Logger
}

// NewDashboardHandler creates a DashboardHandler. Dates without a zone are
// read in loc.
func NewDashboardHandler(performance *dashboard.Performance, forecasts *dashboard.Forecaster, loc *time.Location, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		performance: performance,
		forecasts:   forecasts,
		loc:         loc,
		now:         time.Now,
		logger:      logger,
	}
}

// HandlePerformance returns one performance chart.
//
// HTTP: GET /api/dashboard/performance/{period}   period = annual | monthly | daily
func (h *DashboardHandler) HandlePerformance(w http.ResponseWriter, r *http.Request) {
	report, err := h.performance.Report(dashboard.Period(chi.URLParam(r, "period")))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}

// HandleForecast returns the forecast of one day, today by default.
//
// HTTP: GET /api/dashboard/forecast?date=2026-01-15
func (h *DashboardHandler) HandleForecast(w http.ResponseWriter, r *http.Request) {
	day := h.now().In(h.loc)
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.ParseInLocation(time.DateOnly, raw, h.loc)
		if err != nil {
			writeError(w, r, h.logger, apperror.ValidationFailed("date", "date must be YYYY-MM-DD"))
			return
		}
		day = parsed
	}
	writeJSON(w, r, http.StatusOK, h.forecasts.Day(day))
}

// HandleMonthForecast returns one forecast per day of a month, the current
// month by default.
//
// HTTP: GET /api/dashboard/forecast/month?year=2026&month=1
func (h *DashboardHandler) HandleMonthForecast(w http.ResponseWriter, r *http.Request) {
	now := h.now().In(h.loc)
	year, month := now.Year(), int(now.Month())

	q := r.URL.Query()
	if raw := q.Get("year"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 2000 || v > 2100 {
			writeError(w, r, h.logger, apperror.ValidationFailed("year", "year must be between 2000 and 2100"))
			return
		}
		year = v
	}
	if raw := q.Get("month"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 12 {
			writeError(w, r, h.logger, apperror.ValidationFailed("month", "month must be between 1 and 12"))
			return
		}
		month = v
	}

	writeJSON(w, r, http.StatusOK, h.forecasts.Month(year, time.Month(month), h.loc))
}

// HandleRegions lists the community figures of every region.
//
// HTTP: GET /api/community/regions
func (h *DashboardHandler) HandleRegions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, dashboard.Regions())
}

// HandleRegion returns a region or macro-region; unknown ids get France.
//
// HTTP: GET /api/community/regions/{id}
func (h *DashboardHandler) HandleRegion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, dashboard.RegionByID(chi.URLParam(r, "id")))
}

// HandleSelect resolves a click on the map.
//
// HTTP: GET /api/community/select?code=84
func (h *DashboardHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, dashboard.Select(r.URL.Query().Get("code")))
}

// HandleDocuments lists the customer's documents.
//
// HTTP: GET /api/documents
func (h *DashboardHandler) HandleDocuments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, dashboard.Documents())
}
