package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"healthlog/internal/errors"
	"healthlog/internal/model"
	"healthlog/internal/repository"
	"healthlog/internal/service"
)

// RecordHandler handles record endpoints.
type RecordHandler struct {
	recordService service.RecordService
}

// NewRecordHandler creates a new record handler.
func NewRecordHandler(recordService service.RecordService) *RecordHandler {
	return &RecordHandler{recordService: recordService}
}

// CreateRecordRequest represents a record creation request. Data holds the
// dynamic field payload keyed by field_name; values may be strings, numbers
// or structured JSON.
type CreateRecordRequest struct {
	CategoryID uint                   `json:"category_id" validate:"required"`
	RecordDate string                 `json:"record_date" validate:"required"`
	RecordTime *string                `json:"record_time"`
	Notes      *string                `json:"notes"`
	Data       map[string]interface{} `json:"data"`
}

// UpdateRecordRequest represents a partial record update. A present data key
// replaces every stored value row, even when the new map is empty; an absent
// one leaves the rows untouched. An empty record_time or notes string clears
// the column.
type UpdateRecordRequest struct {
	CategoryID *uint                   `json:"category_id"`
	RecordDate *string                 `json:"record_date"`
	RecordTime *string                 `json:"record_time"`
	Notes      *string                 `json:"notes"`
	Data       *map[string]interface{} `json:"data"`
}

// List godoc
// @Summary List records, newest first
// @Tags records
// @Produce json
// @Security BearerAuth
// @Param start_date query string false "Inclusive start date (YYYY-MM-DD)"
// @Param end_date query string false "Inclusive end date (YYYY-MM-DD)"
// @Param category_id query int false "Restrict to one category"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /records [get]
func (h *RecordHandler) List(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
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

	return c.JSON(http.StatusOK, map[string]interface{}{"records": records})
}

// Get godoc
// @Summary Get one record
// @Tags records
// @Produce json
// @Security BearerAuth
// @Param id path int true "Record ID"
// @Success 200 {object} service.AssembledRecord
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /records/{id} [get]
func (h *RecordHandler) Get(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	id, err := pathID(c)
	if err != nil {
		return err
	}

	record, err := h.recordService.Get(c.Request().Context(), userID, id)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, record)
}

// Create godoc
// @Summary Create a record with its field values
// @Tags records
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateRecordRequest true "Record data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /records [post]
func (h *RecordHandler) Create(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req CreateRecordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	id, err := h.recordService.Create(c.Request().Context(), userID, service.RecordInput{
		CategoryID: req.CategoryID,
		RecordDate: req.RecordDate,
		RecordTime: req.RecordTime,
		Notes:      req.Notes,
		Data:       tagValues(req.Data),
	})
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{"id": id})
}

// Update godoc
// @Summary Partially update a record
// @Tags records
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Record ID"
// @Param request body UpdateRecordRequest true "Fields to update"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /records/{id} [put]
func (h *RecordHandler) Update(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req UpdateRecordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	patch := service.RecordPatch{
		CategoryID: req.CategoryID,
		RecordDate: req.RecordDate,
		RecordTime: req.RecordTime,
		Notes:      req.Notes,
	}
	if req.Data != nil {
		data := tagValues(*req.Data)
		patch.Data = &data
	}

	if err := h.recordService.Update(c.Request().Context(), userID, id, patch); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "record updated"})
}

// Delete godoc
// @Summary Delete a record and its field values
// @Tags records
// @Produce json
// @Security BearerAuth
// @Param id path int true "Record ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /records/{id} [delete]
func (h *RecordHandler) Delete(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.recordService.Delete(c.Request().Context(), userID, id); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "record deleted"})
}

// tagValues classifies a decoded JSON payload into tagged field values.
func tagValues(raw map[string]interface{}) map[string]model.Value {
	if raw == nil {
		return nil
	}
	data := make(map[string]model.Value, len(raw))
	for name, v := range raw {
		data[name] = model.ValueFromAny(v)
	}
	return data
}
