package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"healthlog/internal/model"
)

func numRow(recordID uint, name, raw string) model.RecordFieldValue {
	return model.RecordFieldValue{RecordID: recordID, FieldName: name, FieldValueJSON: &raw}
}

func textRow(recordID uint, name, val string) model.RecordFieldValue {
	return model.RecordFieldValue{RecordID: recordID, FieldName: name, FieldValue: &val}
}

func timePtr(s string) *string {
	return &s
}

func bloodPressureSchema() []model.FieldDefinition {
	return []model.FieldDefinition{
		{ID: 1, FieldName: "systolic", FieldType: model.FieldTypeNumber, IsRequired: true, DisplayOrder: 1},
		{ID: 2, FieldName: "diastolic", FieldType: model.FieldTypeNumber, IsRequired: true, DisplayOrder: 2},
	}
}

func computeStats(t *testing.T, categories []model.Category, fields map[uint][]model.FieldDefinition, records map[uint][]model.Record, orphans []model.Record, window Window) map[uint]CategoryStats {
	t.Helper()
	userID := uuid.New()

	mockCats := new(MockCategoryService)
	mockCats.On("ListVisible", mock.Anything, userID).Return(categories, nil)
	mockRepo := new(MockRecordRepository)
	for _, cat := range categories {
		mockCats.On("ListFields", mock.Anything, cat.ID).Return(fields[cat.ID], nil)
		mockRepo.On("ListInWindow", mock.Anything, userID, cat.ID, window.Start, window.End).Return(records[cat.ID], nil)
	}
	mockRepo.On("ListInWindowExcluding", mock.Anything, userID, window.Start, window.End, mock.Anything).Return(orphans, nil)

	svc := NewStatsService(mockCats, mockRepo)
	out, err := svc.Compute(context.Background(), userID, window)
	assert.NoError(t, err)
	return out
}

func TestStatsService_TimeSeriesSingleDay(t *testing.T) {
	window := Window{Start: "2025-03-01", End: "2025-03-01"}
	cat := model.Category{ID: 1, Name: "Blood Pressure", Icon: "🩺", AggregationStrategy: model.StrategyTimeSeries}

	records := []model.Record{
		{ID: 1, CategoryID: 1, RecordDate: "2025-03-01", RecordTime: timePtr("08:00"), Values: []model.RecordFieldValue{
			numRow(1, "systolic", "120"), numRow(1, "diastolic", "80"),
		}},
		// missing diastolic: whole point dropped
		{ID: 2, CategoryID: 1, RecordDate: "2025-03-01", RecordTime: timePtr("12:00"), Values: []model.RecordFieldValue{
			numRow(2, "systolic", "118"),
		}},
		// unparseable diastolic coerces to zero and drops the point
		{ID: 3, CategoryID: 1, RecordDate: "2025-03-01", RecordTime: timePtr("20:00"), Values: []model.RecordFieldValue{
			numRow(3, "systolic", "122"), textRow(3, "diastolic", "n/a"),
		}},
	}

	out := computeStats(t,
		[]model.Category{cat},
		map[uint][]model.FieldDefinition{1: bloodPressureSchema()},
		map[uint][]model.Record{1: records},
		nil, window)

	stats := out[1]
	assert.Equal(t, ChartTimeSeries, stats.Type)
	assert.Len(t, stats.Data, 1)
	assert.Equal(t, "2025-03-01 08:00", stats.Data[0].Label)
	assert.Equal(t, map[string]float64{"systolic": 120, "diastolic": 80}, stats.Data[0].Values)
}

func TestStatsService_TimeSeriesMultiDayBucketsByDate(t *testing.T) {
	window := Window{Start: "2025-03-01", End: "2025-03-07"}
	cat := model.Category{ID: 1, Name: "Blood Pressure", AggregationStrategy: model.StrategyTimeSeries}

	records := []model.Record{
		{ID: 1, CategoryID: 1, RecordDate: "2025-03-02", Values: []model.RecordFieldValue{
			numRow(1, "systolic", "120"), numRow(1, "diastolic", "80"),
		}},
		// same day, later record: its readings win the bucket
		{ID: 2, CategoryID: 1, RecordDate: "2025-03-02", Values: []model.RecordFieldValue{
			numRow(2, "systolic", "124"), numRow(2, "diastolic", "82"),
		}},
		{ID: 3, CategoryID: 1, RecordDate: "2025-03-05", Values: []model.RecordFieldValue{
			numRow(3, "systolic", "118"), numRow(3, "diastolic", "79"),
		}},
		// incomplete day is dropped
		{ID: 4, CategoryID: 1, RecordDate: "2025-03-06", Values: []model.RecordFieldValue{
			numRow(4, "systolic", "121"),
		}},
	}

	out := computeStats(t,
		[]model.Category{cat},
		map[uint][]model.FieldDefinition{1: bloodPressureSchema()},
		map[uint][]model.Record{1: records},
		nil, window)

	stats := out[1]
	assert.Len(t, stats.Data, 2)
	assert.Equal(t, "2025-03-02", stats.Data[0].Label)
	assert.Equal(t, map[string]float64{"systolic": 124, "diastolic": 82}, stats.Data[0].Values)
	assert.Equal(t, "2025-03-05", stats.Data[1].Label)
}

func TestStatsService_TimeSeriesWithoutNumberFieldsFallsBack(t *testing.T) {
	window := Window{Start: "2025-03-01", End: "2025-03-07"}
	cat := model.Category{ID: 1, Name: "Journal", AggregationStrategy: model.StrategyTimeSeries}

	records := []model.Record{
		{ID: 1, CategoryID: 1, RecordDate: "2025-03-01", Values: []model.RecordFieldValue{textRow(1, "entry", "walked")}},
		{ID: 2, CategoryID: 1, RecordDate: "2025-03-02", Values: []model.RecordFieldValue{textRow(2, "entry", "walked")}},
	}

	out := computeStats(t,
		[]model.Category{cat},
		map[uint][]model.FieldDefinition{1: {{ID: 1, FieldName: "entry", FieldType: model.FieldTypeText}}},
		map[uint][]model.Record{1: records},
		nil, window)

	stats := out[1]
	assert.Equal(t, ChartFrequency, stats.Type)
	assert.Len(t, stats.Data, 1)
	assert.Equal(t, int64(2), stats.Data[0].Count)
}

func TestStatsService_FrequencyCountsLabelField(t *testing.T) {
	window := Window{Start: "2025-03-01", End: "2025-03-07"}
	cat := model.Category{ID: 2, Name: "Diet", AggregationStrategy: model.StrategyFrequency}
	fields := []model.FieldDefinition{
		{ID: 1, FieldName: "name", FieldType: model.FieldTypeText, IsRequired: true, DisplayOrder: 1},
		{ID: 2, FieldName: "portion", FieldType: model.FieldTypeSelect, DisplayOrder: 2},
	}

	records := []model.Record{
		{ID: 1, CategoryID: 2, RecordDate: "2025-03-01", Values: []model.RecordFieldValue{textRow(1, "name", "rice")}},
		{ID: 2, CategoryID: 2, RecordDate: "2025-03-02", Values: []model.RecordFieldValue{textRow(2, "name", "rice")}},
		{ID: 3, CategoryID: 2, RecordDate: "2025-03-03", Values: []model.RecordFieldValue{textRow(3, "name", "soup")}},
		// no label value: not counted
		{ID: 4, CategoryID: 2, RecordDate: "2025-03-04", Values: []model.RecordFieldValue{textRow(4, "portion", "small")}},
	}

	out := computeStats(t,
		[]model.Category{cat},
		map[uint][]model.FieldDefinition{2: fields},
		map[uint][]model.Record{2: records},
		nil, window)

	stats := out[2]
	assert.Equal(t, ChartFrequency, stats.Type)
	assert.Equal(t, []ChartPoint{
		{Label: "rice", Count: 2},
		{Label: "soup", Count: 1},
	}, stats.Data)
}

func TestStatsService_WeightedExcludesUnparseableWeights(t *testing.T) {
	window := Window{Start: "2025-03-01", End: "2025-03-07"}
	cat := model.Category{ID: 3, Name: "Output Log", AggregationStrategy: model.StrategyWeighted}
	fields := []model.FieldDefinition{
		{ID: 1, FieldName: "weight", FieldType: model.FieldTypeNumber, IsRequired: true, Unit: "g", DisplayOrder: 1},
	}

	records := []model.Record{
		{ID: 1, CategoryID: 3, RecordDate: "2025-03-01", Values: []model.RecordFieldValue{numRow(1, "weight", "10")}},
		{ID: 2, CategoryID: 3, RecordDate: "2025-03-02", Values: []model.RecordFieldValue{textRow(2, "weight", "abc")}},
		{ID: 3, CategoryID: 3, RecordDate: "2025-03-03", Values: []model.RecordFieldValue{numRow(3, "weight", "15")}},
	}

	out := computeStats(t,
		[]model.Category{cat},
		map[uint][]model.FieldDefinition{3: fields},
		map[uint][]model.Record{3: records},
		nil, window)

	stats := out[3]
	assert.Equal(t, ChartWeightedBar, stats.Type)
	assert.Equal(t, 2, stats.Count)
	assert.NotNil(t, stats.Total)
	assert.True(t, stats.Total.Equal(decimal.NewFromInt(25)), "total = %s", stats.Total)
	assert.Equal(t, "g", stats.Unit)
	assert.Len(t, stats.Data, 2)
	assert.Equal(t, "2025-03-01", stats.Data[0].Label)
	assert.Equal(t, float64(10), *stats.Data[0].Value)
}

func TestStatsService_WeightedEmptyWindowHasNoTotal(t *testing.T) {
	window := Window{Start: "2025-03-01", End: "2025-03-07"}
	cat := model.Category{ID: 3, Name: "Output Log", AggregationStrategy: model.StrategyWeighted}

	out := computeStats(t,
		[]model.Category{cat},
		map[uint][]model.FieldDefinition{3: nil},
		map[uint][]model.Record{3: nil},
		nil, window)

	stats := out[3]
	assert.Nil(t, stats.Total)
	assert.Zero(t, stats.Count)
	assert.Empty(t, stats.Data)
}

func TestStatsService_OrphanRecordsGroupUnderStaleCategory(t *testing.T) {
	window := Window{Start: "2025-03-01", End: "2025-03-07"}
	cat := model.Category{ID: 1, Name: "Blood Pressure", AggregationStrategy: model.StrategyTimeSeries}

	hiddenCat := model.Category{ID: 9, Name: "Mood", IsHidden: true}
	orphans := []model.Record{
		// category row deleted: surfaces as unknown
		{ID: 10, CategoryID: 77, RecordDate: "2025-03-02", Values: []model.RecordFieldValue{textRow(10, "note", "leg pain")}},
		{ID: 11, CategoryID: 77, RecordDate: "2025-03-03", Values: []model.RecordFieldValue{textRow(11, "note", "leg pain")}},
		// category still exists, it is just hidden: not an orphan
		{ID: 12, CategoryID: 9, RecordDate: "2025-03-03", Category: &hiddenCat, Values: []model.RecordFieldValue{textRow(12, "mood", "ok")}},
	}

	out := computeStats(t,
		[]model.Category{cat},
		map[uint][]model.FieldDefinition{1: bloodPressureSchema()},
		map[uint][]model.Record{1: nil},
		orphans, window)

	stats, ok := out[77]
	assert.True(t, ok)
	assert.Equal(t, "unknown", stats.Name)
	assert.Equal(t, ChartFrequency, stats.Type)
	assert.Equal(t, []ChartPoint{{Label: "leg pain", Count: 2}}, stats.Data)

	_, hiddenPresent := out[9]
	assert.False(t, hiddenPresent)
}

func TestStatsService_GenericCountsFirstNonEmptyField(t *testing.T) {
	window := Window{Start: "2025-03-01", End: "2025-03-01"}
	cat := model.Category{ID: 4, Name: "Misc", AggregationStrategy: model.StrategyGeneric}

	records := []model.Record{
		{ID: 1, CategoryID: 4, RecordDate: "2025-03-01", Values: []model.RecordFieldValue{
			textRow(1, "a", ""), textRow(1, "b", "hello"),
		}},
		{ID: 2, CategoryID: 4, RecordDate: "2025-03-01", Values: []model.RecordFieldValue{
			textRow(2, "b", "hello"),
		}},
	}

	out := computeStats(t,
		[]model.Category{cat},
		map[uint][]model.FieldDefinition{4: nil},
		map[uint][]model.Record{4: records},
		nil, window)

	stats := out[4]
	assert.Equal(t, ChartFrequency, stats.Type)
	assert.Equal(t, []ChartPoint{{Label: "hello", Count: 2}}, stats.Data)
}
