package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"healthlog/internal/model"
)

// CategoryRepository defines category persistence operations.
type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Category, error)
	FindByName(ctx context.Context, name string, isDefault bool) (*model.Category, error)
	ListVisible(ctx context.Context, userID uuid.UUID) ([]model.Category, error)
	MaxDisplayOrder(ctx context.Context, userID uuid.UUID) (int, error)
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// Create creates a new category.
func (r *categoryRepository) Create(ctx context.Context, category *model.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

// Update updates an existing category.
func (r *categoryRepository) Update(ctx context.Context, category *model.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

// Delete removes a category. Records keep their stale category_id.
func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Category{}, id).Error
}

// FindByID finds a category by ID.
func (r *categoryRepository) FindByID(ctx context.Context, id uint) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// FindByName finds a category by name within the default or user scope.
func (r *categoryRepository) FindByName(ctx context.Context, name string, isDefault bool) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).
		Where("name = ? AND is_default = ?", name, isDefault).
		First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// ListVisible returns the raw candidate set for a user: shared defaults plus
// the user's own categories, ordered (is_default desc, display_order asc,
// id asc). Hidden-flag and legacy-name filtering happens in the service.
func (r *categoryRepository) ListVisible(ctx context.Context, userID uuid.UUID) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).
		Where("is_default = ? OR user_id = ?", true, userID).
		Order("is_default DESC").
		Order("display_order ASC").
		Order("id ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// MaxDisplayOrder returns the highest display_order among the user's own categories.
func (r *categoryRepository) MaxDisplayOrder(ctx context.Context, userID uuid.UUID) (int, error) {
	var max *int
	if err := r.db.WithContext(ctx).Model(&model.Category{}).
		Where("user_id = ?", userID).
		Select("MAX(display_order)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}
