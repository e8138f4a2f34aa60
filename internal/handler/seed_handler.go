package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"healthlog/internal/repository"
	"healthlog/internal/seed"
)

// SeedHandler exposes the default-category seed for development setups.
type SeedHandler struct {
	categoryRepo repository.CategoryRepository
	fieldRepo    repository.FieldRepository
}

// NewSeedHandler creates a new seed handler.
func NewSeedHandler(categoryRepo repository.CategoryRepository, fieldRepo repository.FieldRepository) *SeedHandler {
	return &SeedHandler{
		categoryRepo: categoryRepo,
		fieldRepo:    fieldRepo,
	}
}

// Seed godoc
// @Summary Seed the built-in default categories
// @Description Idempotent: existing defaults are left untouched.
// @Tags seed
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} errors.ErrorResponse
// @Router /seed [post]
func (h *SeedHandler) Seed(c echo.Context) error {
	created, err := seed.Apply(c.Request().Context(), h.categoryRepo, h.fieldRepo)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to seed default categories")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "default categories seeded",
		"created": created,
	})
}
