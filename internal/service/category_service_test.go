package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"healthlog/internal/cache"
	"healthlog/internal/errors"
	"healthlog/internal/model"
)

// noCache is a nil client; the cache wrapper treats it as a permanent miss.
var noCache *cache.Client

func TestCategoryService_ListVisible(t *testing.T) {
	userID := uuid.New()

	raw := []model.Category{
		{ID: 1, Name: "Blood Pressure", IsDefault: true},
		{ID: 2, Name: "Blood Oxygen", IsDefault: true},
		{ID: 3, Name: "Care Notes", IsDefault: true},
		{ID: 4, Name: "Workout", UserID: &userID},
		{ID: 5, Name: "Mood", UserID: &userID, IsHidden: true},
		{ID: 4, Name: "Workout", UserID: &userID},
	}

	mockRepo := new(MockCategoryRepository)
	mockRepo.On("ListVisible", mock.Anything, userID).Return(raw, nil)

	svc := NewCategoryService(mockRepo, new(MockFieldRepository), noCache)
	categories, err := svc.ListVisible(context.Background(), userID)

	assert.NoError(t, err)
	assert.Len(t, categories, 2)
	assert.Equal(t, "Blood Pressure", categories[0].Name)
	assert.Equal(t, "Workout", categories[1].Name)
	mockRepo.AssertExpectations(t)
}

func TestCategoryService_Create(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name          string
		categoryName  string
		icon          string
		strategy      model.AggregationStrategy
		setupMock     func(*MockCategoryRepository)
		expectedError error
		check         func(*testing.T, *model.Category)
	}{
		{
			name:          "empty name",
			categoryName:  "   ",
			setupMock:     func(m *MockCategoryRepository) {},
			expectedError: errors.ErrCategoryNameRequired,
		},
		{
			name:          "unknown strategy",
			categoryName:  "Workout",
			strategy:      "median",
			setupMock:     func(m *MockCategoryRepository) {},
			expectedError: errors.ErrStrategyInvalid,
		},
		{
			name:         "defaults applied",
			categoryName: "Workout",
			setupMock: func(m *MockCategoryRepository) {
				m.On("MaxDisplayOrder", mock.Anything, userID).Return(2, nil)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.Category")).Return(nil)
			},
			check: func(t *testing.T, c *model.Category) {
				assert.Equal(t, "📝", c.Icon)
				assert.Equal(t, model.StrategyGeneric, c.AggregationStrategy)
				assert.Equal(t, 3, c.DisplayOrder)
				assert.False(t, c.IsDefault)
				assert.Equal(t, userID, *c.UserID)
			},
		},
		{
			name:         "explicit strategy kept",
			categoryName: "Hydration",
			icon:         "💧",
			strategy:     model.StrategyWeighted,
			setupMock: func(m *MockCategoryRepository) {
				m.On("MaxDisplayOrder", mock.Anything, userID).Return(0, nil)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.Category")).Return(nil)
			},
			check: func(t *testing.T, c *model.Category) {
				assert.Equal(t, "💧", c.Icon)
				assert.Equal(t, model.StrategyWeighted, c.AggregationStrategy)
				assert.Equal(t, 1, c.DisplayOrder)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockCategoryRepository)
			tt.setupMock(mockRepo)

			svc := NewCategoryService(mockRepo, new(MockFieldRepository), noCache)
			category, err := svc.Create(context.Background(), userID, tt.categoryName, tt.icon, tt.strategy)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, category)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, category)
				tt.check(t, category)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestCategoryService_UpdateOwnership(t *testing.T) {
	userID := uuid.New()
	otherID := uuid.New()
	hidden := true

	tests := []struct {
		name          string
		setupMock     func(*MockCategoryRepository)
		expectedError error
	}{
		{
			name: "category not found",
			setupMock: func(m *MockCategoryRepository) {
				m.On("FindByID", mock.Anything, uint(10)).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: errors.ErrCategoryNotFound,
		},
		{
			name: "default category immutable",
			setupMock: func(m *MockCategoryRepository) {
				m.On("FindByID", mock.Anything, uint(10)).Return(&model.Category{ID: 10, IsDefault: true}, nil)
			},
			expectedError: errors.ErrDefaultCategoryImmutable,
		},
		{
			name: "owned by someone else",
			setupMock: func(m *MockCategoryRepository) {
				m.On("FindByID", mock.Anything, uint(10)).Return(&model.Category{ID: 10, UserID: &otherID}, nil)
			},
			expectedError: errors.ErrCategoryForbidden,
		},
		{
			name: "owned update succeeds",
			setupMock: func(m *MockCategoryRepository) {
				m.On("FindByID", mock.Anything, uint(10)).Return(&model.Category{ID: 10, UserID: &userID, Name: "Workout"}, nil)
				m.On("Update", mock.Anything, mock.AnythingOfType("*model.Category")).Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockCategoryRepository)
			tt.setupMock(mockRepo)

			svc := NewCategoryService(mockRepo, new(MockFieldRepository), noCache)
			category, err := svc.Update(context.Background(), userID, 10, CategoryPatch{IsHidden: &hidden})

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
			} else {
				assert.NoError(t, err)
				assert.True(t, category.IsHidden)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestCategoryService_Delete(t *testing.T) {
	userID := uuid.New()

	mockRepo := new(MockCategoryRepository)
	mockRepo.On("FindByID", mock.Anything, uint(7)).Return(&model.Category{ID: 7, UserID: &userID}, nil)
	mockRepo.On("Delete", mock.Anything, uint(7)).Return(nil)

	svc := NewCategoryService(mockRepo, new(MockFieldRepository), noCache)
	err := svc.Delete(context.Background(), userID, 7)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestCategoryService_AddField(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name          string
		field         model.FieldDefinition
		setupField    func(*MockFieldRepository)
		expectedError error
		check         func(*testing.T, *model.FieldDefinition)
	}{
		{
			name:          "empty field name",
			field:         model.FieldDefinition{FieldName: "  "},
			setupField:    func(m *MockFieldRepository) {},
			expectedError: errors.ErrFieldNameRequired,
		},
		{
			name:          "unknown field type",
			field:         model.FieldDefinition{FieldName: "mood", FieldType: "slider"},
			setupField:    func(m *MockFieldRepository) {},
			expectedError: errors.ErrFieldTypeInvalid,
		},
		{
			name:          "select without options",
			field:         model.FieldDefinition{FieldName: "kind", FieldType: model.FieldTypeSelect},
			setupField:    func(m *MockFieldRepository) {},
			expectedError: errors.ErrFieldOptionsRequired,
		},
		{
			name:  "defaults and encoded options",
			field: model.FieldDefinition{FieldName: "kind", FieldType: model.FieldTypeSelect, Options: []string{"stool", "urine"}},
			setupField: func(m *MockFieldRepository) {
				m.On("MaxDisplayOrder", mock.Anything, uint(7)).Return(1, nil)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.FieldDefinition")).Return(nil)
			},
			check: func(t *testing.T, f *model.FieldDefinition) {
				assert.Equal(t, "kind", f.FieldLabel)
				assert.Equal(t, uint(7), f.CategoryID)
				assert.Equal(t, 2, f.DisplayOrder)
				assert.NotNil(t, f.RawOptions)
				assert.JSONEq(t, `["stool","urine"]`, *f.RawOptions)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockCategoryRepository)
			mockRepo.On("FindByID", mock.Anything, uint(7)).Return(&model.Category{ID: 7, UserID: &userID}, nil)
			mockField := new(MockFieldRepository)
			tt.setupField(mockField)

			svc := NewCategoryService(mockRepo, mockField, noCache)
			field, err := svc.AddField(context.Background(), userID, 7, tt.field)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, field)
			} else {
				assert.NoError(t, err)
				tt.check(t, field)
			}

			mockField.AssertExpectations(t)
		})
	}
}

func TestCategoryService_ListFieldsResolvesDuplicates(t *testing.T) {
	raw := []model.FieldDefinition{
		{ID: 2, CategoryID: 1, FieldName: "systolic", DisplayOrder: 1},
		{ID: 9, CategoryID: 1, FieldName: "systolic", DisplayOrder: 1},
		{ID: 3, CategoryID: 1, FieldName: "diastolic", DisplayOrder: 2},
	}

	mockField := new(MockFieldRepository)
	mockField.On("ListByCategory", mock.Anything, uint(1)).Return(raw, nil)

	svc := NewCategoryService(new(MockCategoryRepository), mockField, noCache)
	fields, err := svc.ListFields(context.Background(), 1)

	assert.NoError(t, err)
	assert.Len(t, fields, 2)
	assert.Equal(t, uint(2), fields[0].ID)
	mockField.AssertExpectations(t)
}
