package seed

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"healthlog/internal/model"
	"healthlog/internal/repository"
)

func encodeOptions(options []string) (string, error) {
	raw, err := json.Marshal(options)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// FieldSeed describes one field of a default category's schema.
type FieldSeed struct {
	Name     string
	Label    string
	Type     model.FieldType
	Options  []string
	Required bool
	Unit     string
}

// CategorySeed describes one built-in category.
type CategorySeed struct {
	Name     string
	Icon     string
	Strategy model.AggregationStrategy
	Fields   []FieldSeed
}

// Defaults returns the built-in categories every user sees.
func Defaults() []CategorySeed {
	return []CategorySeed{
		{
			Name: "Blood Pressure", Icon: "🩺", Strategy: model.StrategyTimeSeries,
			Fields: []FieldSeed{
				{Name: "systolic", Label: "Systolic", Type: model.FieldTypeNumber, Required: true, Unit: "mmHg"},
				{Name: "diastolic", Label: "Diastolic", Type: model.FieldTypeNumber, Required: true, Unit: "mmHg"},
			},
		},
		{
			Name: "Heart Rate", Icon: "❤️", Strategy: model.StrategyTimeSeries,
			Fields: []FieldSeed{
				{Name: "heart_rate", Label: "Heart Rate", Type: model.FieldTypeNumber, Required: true, Unit: "bpm"},
			},
		},
		{
			Name: "Diet", Icon: "🍱", Strategy: model.StrategyFrequency,
			Fields: []FieldSeed{
				{Name: "name", Label: "Food", Type: model.FieldTypeText, Required: true},
				{Name: "portion", Label: "Portion", Type: model.FieldTypeSelect, Options: []string{"small", "medium", "large"}},
			},
		},
		{
			Name: "Medication", Icon: "💊", Strategy: model.StrategyFrequency,
			Fields: []FieldSeed{
				{Name: "medicine_name", Label: "Medicine", Type: model.FieldTypeText, Required: true},
				{Name: "dosage", Label: "Dosage", Type: model.FieldTypeText},
			},
		},
		{
			Name: "Output Log", Icon: "🚽", Strategy: model.StrategyWeighted,
			Fields: []FieldSeed{
				{Name: "weight", Label: "Weight", Type: model.FieldTypeNumber, Required: true, Unit: "g"},
				{Name: "kind", Label: "Kind", Type: model.FieldTypeSelect, Options: []string{"stool", "urine"}},
			},
		},
	}
}

// Apply creates any missing default categories and their field schemas.
// Existing defaults are left untouched, so the seed is safe to re-run.
func Apply(ctx context.Context, categoryRepo repository.CategoryRepository, fieldRepo repository.FieldRepository) (created int, err error) {
	for order, cs := range Defaults() {
		existing, err := categoryRepo.FindByName(ctx, cs.Name, true)
		if err != nil && err != gorm.ErrRecordNotFound {
			return created, fmt.Errorf("check default category %q: %w", cs.Name, err)
		}
		if existing != nil {
			continue
		}

		category := &model.Category{
			Name:                cs.Name,
			Icon:                cs.Icon,
			IsDefault:           true,
			AggregationStrategy: cs.Strategy,
			DisplayOrder:        order + 1,
		}
		if err := categoryRepo.Create(ctx, category); err != nil {
			return created, fmt.Errorf("create default category %q: %w", cs.Name, err)
		}

		for fieldOrder, fs := range cs.Fields {
			field := &model.FieldDefinition{
				CategoryID:   category.ID,
				FieldName:    fs.Name,
				FieldLabel:   fs.Label,
				FieldType:    fs.Type,
				IsRequired:   fs.Required,
				Unit:         fs.Unit,
				DisplayOrder: fieldOrder + 1,
			}
			if len(fs.Options) > 0 {
				encoded, err := encodeOptions(fs.Options)
				if err != nil {
					return created, fmt.Errorf("encode options for %q.%q: %w", cs.Name, fs.Name, err)
				}
				field.RawOptions = &encoded
			}
			if err := fieldRepo.Create(ctx, field); err != nil {
				return created, fmt.Errorf("create field %q.%q: %w", cs.Name, fs.Name, err)
			}
		}
		created++
	}
	return created, nil
}
