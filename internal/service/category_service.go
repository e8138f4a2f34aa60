package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"healthlog/internal/cache"
	"healthlog/internal/errors"
	"healthlog/internal/model"
	"healthlog/internal/repository"
)

const (
	categoryCacheTTL = 5 * time.Minute
	defaultIcon      = "📝"
)

// legacyCategoryNames are reserved names from retired built-in categories.
// Rows may still exist in storage; the visibility filter drops them.
var legacyCategoryNames = map[string]struct{}{
	"Blood Oxygen": {},
	"Care Notes":   {},
}

// CategoryPatch carries the mutable subset of a category. Nil fields are
// left untouched.
type CategoryPatch struct {
	Name     *string
	Icon     *string
	IsHidden *bool
	Strategy *model.AggregationStrategy
}

// CategoryService handles the category and field schema registry.
type CategoryService interface {
	ListVisible(ctx context.Context, userID uuid.UUID) ([]model.Category, error)
	ListFields(ctx context.Context, categoryID uint) ([]model.FieldDefinition, error)
	Create(ctx context.Context, userID uuid.UUID, name, icon string, strategy model.AggregationStrategy) (*model.Category, error)
	Update(ctx context.Context, userID uuid.UUID, id uint, patch CategoryPatch) (*model.Category, error)
	Delete(ctx context.Context, userID uuid.UUID, id uint) error
	AddField(ctx context.Context, userID uuid.UUID, categoryID uint, field model.FieldDefinition) (*model.FieldDefinition, error)
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
	fieldRepo    repository.FieldRepository
	cache        *cache.Client
}

// NewCategoryService creates a new category service.
func NewCategoryService(categoryRepo repository.CategoryRepository, fieldRepo repository.FieldRepository, cache *cache.Client) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		fieldRepo:    fieldRepo,
		cache:        cache,
	}
}

func (s *categoryService) cacheKey(userID uuid.UUID) string {
	return fmt.Sprintf("categories:user:%s", userID.String())
}

// ListVisible returns the user's visible categories: shared defaults plus
// their own, minus hidden ones and reserved legacy names, deduplicated by id.
func (s *categoryService) ListVisible(ctx context.Context, userID uuid.UUID) ([]model.Category, error) {
	var cached []model.Category
	if s.cache.GetJSON(ctx, s.cacheKey(userID), &cached) {
		return cached, nil
	}

	raw, err := s.categoryRepo.ListVisible(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	seen := make(map[uint]struct{}, len(raw))
	categories := make([]model.Category, 0, len(raw))
	for _, cat := range raw {
		if _, reserved := legacyCategoryNames[cat.Name]; reserved {
			continue
		}
		if cat.IsHidden {
			continue
		}
		if _, dup := seen[cat.ID]; dup {
			continue
		}
		seen[cat.ID] = struct{}{}
		categories = append(categories, cat)
	}

	s.cache.SetJSON(ctx, s.cacheKey(userID), categories, categoryCacheTTL)
	return categories, nil
}

// ListFields returns the canonical resolved field schema of a category.
func (s *categoryService) ListFields(ctx context.Context, categoryID uint) ([]model.FieldDefinition, error) {
	raw, err := s.fieldRepo.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}
	return resolveFields(raw), nil
}

// Create creates a user-owned category.
func (s *categoryService) Create(ctx context.Context, userID uuid.UUID, name, icon string, strategy model.AggregationStrategy) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.ErrCategoryNameRequired
	}
	if icon == "" {
		icon = defaultIcon
	}
	if strategy == "" {
		strategy = model.StrategyGeneric
	}
	if !model.ValidStrategy(strategy) {
		return nil, errors.ErrStrategyInvalid
	}

	maxOrder, err := s.categoryRepo.MaxDisplayOrder(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("max display order: %w", err)
	}

	category := &model.Category{
		Name:                name,
		Icon:                icon,
		IsDefault:           false,
		UserID:              &userID,
		AggregationStrategy: strategy,
		DisplayOrder:        maxOrder + 1,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	_ = s.cache.Delete(ctx, s.cacheKey(userID))
	return category, nil
}

// Update mutates a user-owned category.
func (s *categoryService) Update(ctx context.Context, userID uuid.UUID, id uint, patch CategoryPatch) (*model.Category, error) {
	category, err := s.ownedCategory(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, errors.ErrCategoryNameRequired
		}
		category.Name = name
	}
	if patch.Icon != nil {
		if *patch.Icon == "" {
			category.Icon = defaultIcon
		} else {
			category.Icon = *patch.Icon
		}
	}
	if patch.IsHidden != nil {
		category.IsHidden = *patch.IsHidden
	}
	if patch.Strategy != nil {
		if !model.ValidStrategy(*patch.Strategy) {
			return nil, errors.ErrStrategyInvalid
		}
		category.AggregationStrategy = *patch.Strategy
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}

	_ = s.cache.Delete(ctx, s.cacheKey(userID))
	return category, nil
}

// Delete removes a user-owned category. Existing records keep their stale
// category_id and surface as "unknown" afterwards.
func (s *categoryService) Delete(ctx context.Context, userID uuid.UUID, id uint) error {
	if _, err := s.ownedCategory(ctx, userID, id); err != nil {
		return err
	}
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(userID))
	return nil
}

// AddField appends a field definition to a user-owned category's schema.
func (s *categoryService) AddField(ctx context.Context, userID uuid.UUID, categoryID uint, field model.FieldDefinition) (*model.FieldDefinition, error) {
	if _, err := s.ownedCategory(ctx, userID, categoryID); err != nil {
		return nil, err
	}

	field.FieldName = strings.TrimSpace(field.FieldName)
	if field.FieldName == "" {
		return nil, errors.ErrFieldNameRequired
	}
	if field.FieldLabel == "" {
		field.FieldLabel = field.FieldName
	}
	if field.FieldType == "" {
		field.FieldType = model.FieldTypeText
	}
	if !model.ValidFieldType(field.FieldType) {
		return nil, errors.ErrFieldTypeInvalid
	}
	if field.FieldType == model.FieldTypeSelect && len(field.Options) == 0 {
		return nil, errors.ErrFieldOptionsRequired
	}
	if len(field.Options) > 0 {
		encoded := encodeOptions(field.Options)
		field.RawOptions = &encoded
	}

	maxOrder, err := s.fieldRepo.MaxDisplayOrder(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("max field order: %w", err)
	}
	field.CategoryID = categoryID
	field.DisplayOrder = maxOrder + 1

	if err := s.fieldRepo.Create(ctx, &field); err != nil {
		return nil, fmt.Errorf("create field: %w", err)
	}
	return &field, nil
}

// ownedCategory loads a category and checks it is mutable by the user.
func (s *categoryService) ownedCategory(ctx context.Context, userID uuid.UUID, id uint) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	if category.IsDefault {
		return nil, errors.ErrDefaultCategoryImmutable
	}
	if !category.OwnedBy(userID) {
		return nil, errors.ErrCategoryForbidden
	}
	return category, nil
}
