package model

import (
	"time"

	"github.com/google/uuid"
)

// AggregationStrategy selects how a category's records are turned into chart data.
type AggregationStrategy string

const (
	StrategyTimeSeries AggregationStrategy = "time_series"
	StrategyFrequency  AggregationStrategy = "frequency"
	StrategyWeighted   AggregationStrategy = "weighted"
	StrategyGeneric    AggregationStrategy = "generic"
)

// ValidStrategy reports whether s is one of the known aggregation strategies.
func ValidStrategy(s AggregationStrategy) bool {
	switch s {
	case StrategyTimeSeries, StrategyFrequency, StrategyWeighted, StrategyGeneric:
		return true
	}
	return false
}

// Category groups health records under a shared field schema.
// Default categories are visible to every user and immutable; user-created
// categories belong to exactly one owner.
type Category struct {
	ID                  uint                `json:"id" gorm:"primaryKey"`
	Name                string              `json:"name" gorm:"size:255;not null;index"`
	Icon                string              `json:"icon" gorm:"size:16;not null"`
	IsDefault           bool                `json:"is_default" gorm:"default:false;index"`
	IsHidden            bool                `json:"is_hidden" gorm:"default:false"`
	UserID              *uuid.UUID          `json:"user_id,omitempty" gorm:"type:char(36);index"`
	AggregationStrategy AggregationStrategy `json:"aggregation_strategy" gorm:"type:varchar(20);not null;default:'generic'"`
	DisplayOrder        int                 `json:"display_order" gorm:"not null;default:0"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`

	// Relations
	Fields []FieldDefinition `json:"fields,omitempty" gorm:"foreignKey:CategoryID"`
}

// OwnedBy reports whether the category belongs to the given user.
func (c *Category) OwnedBy(userID uuid.UUID) bool {
	return c.UserID != nil && *c.UserID == userID
}
