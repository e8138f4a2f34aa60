package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Record is one dated log entry belonging to one owner and one category.
// The category may be deleted later; the record keeps its stale category_id
// and is presented as belonging to an unknown category.
type Record struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uuid.UUID `json:"user_id" gorm:"type:char(36);not null;index:idx_records_user_date"`
	CategoryID uint      `json:"category_id" gorm:"not null;index"`
	RecordDate string    `json:"record_date" gorm:"size:10;not null;index:idx_records_user_date"`
	RecordTime *string   `json:"record_time,omitempty" gorm:"size:8"`
	Notes      *string   `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relations
	Category *Category          `json:"-" gorm:"foreignKey:CategoryID"`
	Values   []RecordFieldValue `json:"-" gorm:"foreignKey:RecordID"`
}

// RecordFieldValue is one (field_name, value) pair attached to a record.
// Exactly one of FieldValue and FieldValueJSON is non-null per row: raw
// strings land in field_value, everything else in field_value_json.
type RecordFieldValue struct {
	ID             uint    `json:"id" gorm:"primaryKey"`
	RecordID       uint    `json:"record_id" gorm:"not null;index"`
	FieldName      string  `json:"field_name" gorm:"size:100;not null"`
	FieldValue     *string `json:"field_value" gorm:"type:text"`
	FieldValueJSON *string `json:"field_value_json" gorm:"column:field_value_json;type:text"`
}

// Value returns the tagged value of the row, preferring the JSON
// representation when present.
func (r RecordFieldValue) Value() Value {
	if r.FieldValueJSON != nil {
		return ValueFromRaw(json.RawMessage(*r.FieldValueJSON))
	}
	if r.FieldValue != nil {
		return StringValue(*r.FieldValue)
	}
	return Value{}
}

// NewRecordFieldValue maps a tagged value onto the two storage columns.
func NewRecordFieldValue(recordID uint, fieldName string, v Value) RecordFieldValue {
	row := RecordFieldValue{RecordID: recordID, FieldName: fieldName}
	if v.Kind == ValueString {
		s := v.Str
		row.FieldValue = &s
		return row
	}
	raw, err := json.Marshal(v)
	if err != nil {
		raw = []byte("null")
	}
	encoded := string(raw)
	row.FieldValueJSON = &encoded
	return row
}
