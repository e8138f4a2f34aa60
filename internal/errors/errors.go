package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrCategoryNameRequired is returned when a category name is empty or whitespace.
	ErrCategoryNameRequired = errors.New("category name is required")
	// ErrCategoryNotFound is returned when a category does not exist.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrDefaultCategoryImmutable is returned on attempts to modify a default category.
	ErrDefaultCategoryImmutable = errors.New("default categories cannot be modified")
	// ErrCategoryForbidden is returned when a category belongs to another user.
	ErrCategoryForbidden = errors.New("no permission to modify this category")
	// ErrCategoryRequired is returned when a record is missing its category.
	ErrCategoryRequired = errors.New("category is required")
	// ErrRecordDateRequired is returned when a record is missing its date.
	ErrRecordDateRequired = errors.New("record date is required")
	// ErrRecordDateInvalid is returned when a date is not a YYYY-MM-DD calendar date.
	ErrRecordDateInvalid = errors.New("record date must be YYYY-MM-DD")
	// ErrRecordNotFound is returned when a record does not resolve for the caller.
	ErrRecordNotFound = errors.New("record not found")
	// ErrFieldNameRequired is returned when a field definition has no name.
	ErrFieldNameRequired = errors.New("field name is required")
	// ErrFieldTypeInvalid is returned when a field type is outside the known set.
	ErrFieldTypeInvalid = errors.New("invalid field type")
	// ErrFieldOptionsRequired is returned when a select field carries no options.
	ErrFieldOptionsRequired = errors.New("select fields require options")
	// ErrStrategyInvalid is returned when an aggregation strategy is unknown.
	ErrStrategyInvalid = errors.New("invalid aggregation strategy")
	// ErrExportFormatUnsupported is returned for export formats other than CSV.
	ErrExportFormatUnsupported = errors.New("unsupported export format")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Validation failures map
// to 400, ownership and default-immutability violations to 403, unresolved
// ids to 404, and anything else is treated as an upstream failure.
func MapErrorToHTTP(err error) *HTTPError {
	switch err {
	case ErrCategoryNameRequired:
		return NewHTTPError(http.StatusBadRequest, err.Error(), "CATEGORY_NAME_REQUIRED")
	case ErrCategoryRequired:
		return NewHTTPError(http.StatusBadRequest, err.Error(), "CATEGORY_REQUIRED")
	case ErrRecordDateRequired:
		return NewHTTPError(http.StatusBadRequest, err.Error(), "RECORD_DATE_REQUIRED")
	case ErrRecordDateInvalid:
		return NewHTTPError(http.StatusBadRequest, err.Error(), "RECORD_DATE_INVALID")
	case ErrFieldNameRequired:
		return NewHTTPError(http.StatusBadRequest, err.Error(), "FIELD_NAME_REQUIRED")
	case ErrFieldTypeInvalid:
		return NewHTTPError(http.StatusBadRequest, err.Error(), "FIELD_TYPE_INVALID")
	case ErrFieldOptionsRequired:
		return NewHTTPError(http.StatusBadRequest, err.Error(), "FIELD_OPTIONS_REQUIRED")
	case ErrStrategyInvalid:
		return NewHTTPError(http.StatusBadRequest, err.Error(), "STRATEGY_INVALID")
	case ErrExportFormatUnsupported:
		return NewHTTPError(http.StatusBadRequest, err.Error(), "EXPORT_FORMAT_UNSUPPORTED")
	case ErrDefaultCategoryImmutable:
		return NewHTTPError(http.StatusForbidden, err.Error(), "DEFAULT_CATEGORY_IMMUTABLE")
	case ErrCategoryForbidden:
		return NewHTTPError(http.StatusForbidden, err.Error(), "CATEGORY_FORBIDDEN")
	case ErrCategoryNotFound:
		return NewHTTPError(http.StatusNotFound, err.Error(), "CATEGORY_NOT_FOUND")
	case ErrRecordNotFound:
		return NewHTTPError(http.StatusNotFound, err.Error(), "RECORD_NOT_FOUND")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
