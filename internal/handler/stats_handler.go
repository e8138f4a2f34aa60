package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"healthlog/internal/errors"
	"healthlog/internal/service"
)

const (
	statsDateLayout   = "2006-01-02"
	defaultPeriodDays = 7
	maxPeriodDays     = 366
)

// StatsHandler handles the aggregation endpoint.
type StatsHandler struct {
	statsService service.StatsService
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsService service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// Get godoc
// @Summary Aggregate records into per-category chart series
// @Description Window selection: date= for a single day, start_date/end_date
// @Description for an explicit range, otherwise period= trailing days ending today.
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Param date query string false "Single day (YYYY-MM-DD)"
// @Param start_date query string false "Inclusive start date (YYYY-MM-DD)"
// @Param end_date query string false "Inclusive end date (YYYY-MM-DD)"
// @Param period query int false "Trailing window in days, default 7"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /stats [get]
func (h *StatsHandler) Get(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	window, err := parseWindow(c)
	if err != nil {
		return err
	}

	stats, err := h.statsService.Compute(c.Request().Context(), userID, window)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"start_date": window.Start,
		"end_date":   window.End,
		"stats":      stats,
	})
}

func parseWindow(c echo.Context) (service.Window, error) {
	if date := c.QueryParam("date"); date != "" {
		if !validStatsDate(date) {
			return service.Window{}, echo.NewHTTPError(http.StatusBadRequest, "invalid date")
		}
		return service.Window{Start: date, End: date}, nil
	}

	start, end := c.QueryParam("start_date"), c.QueryParam("end_date")
	if start != "" || end != "" {
		if !validStatsDate(start) || !validStatsDate(end) {
			return service.Window{}, echo.NewHTTPError(http.StatusBadRequest, "start_date and end_date must both be YYYY-MM-DD")
		}
		if start > end {
			return service.Window{}, echo.NewHTTPError(http.StatusBadRequest, "start_date must not be after end_date")
		}
		return service.Window{Start: start, End: end}, nil
	}

	period := defaultPeriodDays
	if raw := c.QueryParam("period"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxPeriodDays {
			return service.Window{}, echo.NewHTTPError(http.StatusBadRequest, "invalid period")
		}
		period = parsed
	}

	today := time.Now()
	return service.Window{
		Start: today.AddDate(0, 0, -(period - 1)).Format(statsDateLayout),
		End:   today.Format(statsDateLayout),
	}, nil
}

func validStatsDate(date string) bool {
	_, err := time.Parse(statsDateLayout, date)
	return err == nil
}
