package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"healthlog/internal/model"
)

func strPtr(s string) *string {
	return &s
}

func TestResolveFields_DropsDuplicatesBySmallerDisplayOrder(t *testing.T) {
	raw := []model.FieldDefinition{
		{ID: 5, FieldName: "systolic", DisplayOrder: 3},
		{ID: 9, FieldName: "systolic", DisplayOrder: 1},
		{ID: 2, FieldName: "diastolic", DisplayOrder: 2},
	}

	fields := resolveFields(raw)

	assert.Len(t, fields, 2)
	assert.Equal(t, "systolic", fields[0].FieldName)
	assert.Equal(t, uint(9), fields[0].ID)
	assert.Equal(t, "diastolic", fields[1].FieldName)
}

func TestResolveFields_EqualDisplayOrderSmallerIDWins(t *testing.T) {
	raw := []model.FieldDefinition{
		{ID: 7, FieldName: "name", DisplayOrder: 1},
		{ID: 3, FieldName: "name", DisplayOrder: 1},
	}

	fields := resolveFields(raw)

	assert.Len(t, fields, 1)
	assert.Equal(t, uint(3), fields[0].ID)
}

func TestResolveFields_RowWithIDBeatsRowWithout(t *testing.T) {
	raw := []model.FieldDefinition{
		{ID: 0, FieldName: "name", DisplayOrder: 1},
		{ID: 4, FieldName: "name", DisplayOrder: 1},
	}

	fields := resolveFields(raw)

	assert.Len(t, fields, 1)
	assert.Equal(t, uint(4), fields[0].ID)
}

func TestResolveFields_OrderIndependent(t *testing.T) {
	a := []model.FieldDefinition{
		{ID: 5, FieldName: "systolic", DisplayOrder: 3},
		{ID: 9, FieldName: "systolic", DisplayOrder: 1},
		{ID: 2, FieldName: "diastolic", DisplayOrder: 2},
		{ID: 8, FieldName: "diastolic", DisplayOrder: 2},
	}
	b := []model.FieldDefinition{a[3], a[2], a[1], a[0]}

	assert.Equal(t, resolveFields(a), resolveFields(b))
}

func TestResolveFields_Idempotent(t *testing.T) {
	raw := []model.FieldDefinition{
		{ID: 5, FieldName: "systolic", DisplayOrder: 3},
		{ID: 9, FieldName: "systolic", DisplayOrder: 1},
		{ID: 2, FieldName: "diastolic", DisplayOrder: 2},
	}

	once := resolveFields(raw)
	twice := resolveFields(once)

	assert.Equal(t, once, twice)
}

func TestResolveFields_SortsByDisplayOrderThenID(t *testing.T) {
	raw := []model.FieldDefinition{
		{ID: 3, FieldName: "c", DisplayOrder: 2},
		{ID: 1, FieldName: "a", DisplayOrder: 2},
		{ID: 2, FieldName: "b", DisplayOrder: 1},
	}

	fields := resolveFields(raw)

	assert.Equal(t, []string{"b", "a", "c"}, []string{fields[0].FieldName, fields[1].FieldName, fields[2].FieldName})
}

func TestDecodeOptions(t *testing.T) {
	tests := []struct {
		name     string
		raw      *string
		expected []string
	}{
		{
			name:     "nil input",
			raw:      nil,
			expected: nil,
		},
		{
			name:     "plain JSON array",
			raw:      strPtr(`["small","medium","large"]`),
			expected: []string{"small", "medium", "large"},
		},
		{
			name:     "double-encoded array",
			raw:      strPtr(`"[\"stool\",\"urine\"]"`),
			expected: []string{"stool", "urine"},
		},
		{
			name:     "garbage",
			raw:      strPtr(`not json`),
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, decodeOptions(tt.raw))
		})
	}
}

func TestEncodeOptionsRoundTrip(t *testing.T) {
	encoded := encodeOptions([]string{"a", "b"})
	assert.Equal(t, []string{"a", "b"}, decodeOptions(&encoded))
}
