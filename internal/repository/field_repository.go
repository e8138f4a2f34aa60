package repository

import (
	"context"

	"gorm.io/gorm"

	"healthlog/internal/model"
)

// FieldRepository defines field definition persistence operations.
type FieldRepository interface {
	Create(ctx context.Context, field *model.FieldDefinition) error
	ListByCategory(ctx context.Context, categoryID uint) ([]model.FieldDefinition, error)
	MaxDisplayOrder(ctx context.Context, categoryID uint) (int, error)
}

type fieldRepository struct {
	db *gorm.DB
}

// NewFieldRepository creates a new field repository.
func NewFieldRepository(db *gorm.DB) FieldRepository {
	return &fieldRepository{db: db}
}

// Create creates a new field definition.
func (r *fieldRepository) Create(ctx context.Context, field *model.FieldDefinition) error {
	return r.db.WithContext(ctx).Create(field).Error
}

// ListByCategory returns raw field rows ordered (display_order asc, id asc).
// The result may contain duplicate field_name rows; callers must collapse
// them through the resolver before use.
func (r *fieldRepository) ListByCategory(ctx context.Context, categoryID uint) ([]model.FieldDefinition, error) {
	var fields []model.FieldDefinition
	if err := r.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("display_order ASC").
		Order("id ASC").
		Find(&fields).Error; err != nil {
		return nil, err
	}
	return fields, nil
}

// MaxDisplayOrder returns the highest display_order within a category's schema.
func (r *fieldRepository) MaxDisplayOrder(ctx context.Context, categoryID uint) (int, error) {
	var max *int
	if err := r.db.WithContext(ctx).Model(&model.FieldDefinition{}).
		Where("category_id = ?", categoryID).
		Select("MAX(display_order)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}
