package model

import "time"

// FieldType is the closed set of input types a field definition can take.
type FieldType string

const (
	FieldTypeText   FieldType = "text"
	FieldTypeNumber FieldType = "number"
	FieldTypeDate   FieldType = "date"
	FieldTypeTime   FieldType = "time"
	FieldTypeSelect FieldType = "select"
)

// ValidFieldType reports whether t is one of the known field types.
func ValidFieldType(t FieldType) bool {
	switch t {
	case FieldTypeText, FieldTypeNumber, FieldTypeDate, FieldTypeTime, FieldTypeSelect:
		return true
	}
	return false
}

// FieldDefinition describes one typed input field of a category's schema.
// The table may hold duplicate field_name rows per category left behind by
// old migrations; consumers must collapse them through the resolver before use.
type FieldDefinition struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	CategoryID   uint      `json:"category_id" gorm:"not null;index"`
	FieldName    string    `json:"field_name" gorm:"size:100;not null;index"`
	FieldLabel   string    `json:"field_label" gorm:"size:255;not null"`
	FieldType    FieldType `json:"field_type" gorm:"type:varchar(20);not null;default:'text'"`
	RawOptions   *string   `json:"-" gorm:"column:field_options;type:text"`
	Options      []string  `json:"field_options,omitempty" gorm:"-"`
	IsRequired   bool      `json:"is_required" gorm:"default:false"`
	Unit         string    `json:"unit,omitempty" gorm:"size:32"`
	DisplayOrder int       `json:"display_order" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at"`
}
