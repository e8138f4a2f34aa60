package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"healthlog/internal/errors"
	"healthlog/internal/repository"
	"healthlog/internal/service"
)

// ExportHandler streams record exports.
type ExportHandler struct {
	recordService service.RecordService
	exportService service.ExportService
}

// NewExportHandler creates a new export handler.
func NewExportHandler(recordService service.RecordService, exportService service.ExportService) *ExportHandler {
	return &ExportHandler{
		recordService: recordService,
		exportService: exportService,
	}
}

// Export godoc
// @Summary Export records as CSV
// @Description The "excel" format is an alias for CSV; the file carries a
// @Description UTF-8 byte-order marker so spreadsheets detect the encoding.
// @Tags export
// @Produce text/csv
// @Security BearerAuth
// @Param format query string false "csv or excel, default csv"
// @Param start_date query string false "Inclusive start date (YYYY-MM-DD)"
// @Param end_date query string false "Inclusive end date (YYYY-MM-DD)"
// @Param category_id query int false "Restrict to one category"
// @Success 200 {string} string "CSV payload"
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /export [get]
func (h *ExportHandler) Export(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	format := c.QueryParam("format")
	switch format {
	case "", "csv", "excel":
	default:
		httpErr := errors.MapErrorToHTTP(errors.ErrExportFormatUnsupported)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	filter := repository.RecordFilter{
		StartDate: c.QueryParam("start_date"),
		EndDate:   c.QueryParam("end_date"),
	}
	if raw := c.QueryParam("category_id"); raw != "" {
		categoryID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid category_id")
		}
		filter.CategoryID = uint(categoryID)
	}

	records, err := h.recordService.List(c.Request().Context(), userID, filter)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	columns, rows := h.exportService.BuildRows(records)

	var buf bytes.Buffer
	if err := h.exportService.WriteCSV(&buf, columns, rows); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%s", exportFilename(filter.StartDate, filter.EndDate)))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func exportFilename(start, end string) string {
	if start == "" {
		start = "all"
	}
	if end == "" {
		end = "all"
	}
	return fmt.Sprintf("health_records_%s_%s.csv", start, end)
}
