package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"healthlog/internal/model"
	"healthlog/internal/repository"
)

// weightFieldName is the conventional field the weighted strategy accumulates.
const weightFieldName = "weight"

// Window is an inclusive calendar-date range. Dates are zero-padded
// YYYY-MM-DD strings compared as calendar dates, never as instants.
type Window struct {
	Start string
	End   string
}

// SingleDay reports whether the window covers exactly one calendar day.
func (w Window) SingleDay() bool {
	return w.Start == w.End
}

// ChartType describes the shape a category's series renders as.
type ChartType string

const (
	ChartTimeSeries  ChartType = "time-series"
	ChartFrequency   ChartType = "frequency"
	ChartWeightedBar ChartType = "weighted-bar"
)

// ChartPoint is one datum of a category series. Which member is populated
// follows the chart type: Values for time series, Count for frequency,
// Value for weighted bars.
type ChartPoint struct {
	Label  string             `json:"label"`
	Values map[string]float64 `json:"values,omitempty"`
	Count  int64              `json:"count,omitempty"`
	Value  *float64           `json:"value,omitempty"`
}

// CategoryStats is one category's chart-ready series. The shape is
// self-describing so consumers can render without per-category branching.
type CategoryStats struct {
	CategoryID uint             `json:"category_id"`
	Name       string           `json:"name"`
	Icon       string           `json:"icon,omitempty"`
	Type       ChartType        `json:"type"`
	Data       []ChartPoint     `json:"data"`
	Total      *decimal.Decimal `json:"total,omitempty"`
	Count      int              `json:"count,omitempty"`
	Unit       string           `json:"unit,omitempty"`
}

// StatsService aggregates records in a date window into per-category series.
type StatsService interface {
	Compute(ctx context.Context, userID uuid.UUID, window Window) (map[uint]CategoryStats, error)
}

type statsService struct {
	categories CategoryService
	recordRepo repository.RecordRepository
}

// NewStatsService creates a new stats service.
func NewStatsService(categories CategoryService, recordRepo repository.RecordRepository) StatsService {
	return &statsService{
		categories: categories,
		recordRepo: recordRepo,
	}
}

// Compute scans the window once per visible category and dispatches on the
// category's stored aggregation strategy. Records of categories that no
// longer resolve are grouped under their stale id with the generic strategy.
// Malformed per-record data degrades (dropped point, zero coercion) and
// never aborts the batch.
func (s *statsService) Compute(ctx context.Context, userID uuid.UUID, window Window) (map[uint]CategoryStats, error) {
	categories, err := s.categories.ListVisible(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve visible categories: %w", err)
	}

	out := make(map[uint]CategoryStats, len(categories))
	visibleIDs := make([]uint, 0, len(categories))
	for _, cat := range categories {
		visibleIDs = append(visibleIDs, cat.ID)

		records, err := s.recordRepo.ListInWindow(ctx, userID, cat.ID, window.Start, window.End)
		if err != nil {
			return nil, fmt.Errorf("list records for category %d: %w", cat.ID, err)
		}

		fields, err := s.categories.ListFields(ctx, cat.ID)
		if err != nil {
			// schema unavailable: fall through to the generic strategy
			fields = nil
		}

		stats := buildCategoryStats(cat, fields, records, window)
		out[cat.ID] = stats
	}

	orphans, err := s.recordRepo.ListInWindowExcluding(ctx, userID, window.Start, window.End, visibleIDs)
	if err != nil {
		return nil, fmt.Errorf("list orphaned records: %w", err)
	}
	for id, stats := range orphanStats(orphans, window) {
		out[id] = stats
	}

	return out, nil
}

func buildCategoryStats(cat model.Category, fields []model.FieldDefinition, records []model.Record, window Window) CategoryStats {
	stats := CategoryStats{
		CategoryID: cat.ID,
		Name:       cat.Name,
		Icon:       cat.Icon,
	}

	switch cat.AggregationStrategy {
	case model.StrategyTimeSeries:
		subs := requiredNumberFields(fields)
		if len(subs) == 0 {
			stats.Type = ChartFrequency
			stats.Data = genericCounts(records)
			return stats
		}
		stats.Type = ChartTimeSeries
		stats.Data = timeSeriesPoints(subs, records, window)
	case model.StrategyFrequency:
		stats.Type = ChartFrequency
		if label := labelField(fields); label != "" {
			stats.Data = frequencyCounts(label, records)
		} else {
			stats.Data = genericCounts(records)
		}
	case model.StrategyWeighted:
		stats.Type = ChartWeightedBar
		stats.Data, stats.Total, stats.Count = weightedPoints(records, window)
		stats.Unit = weightUnit(fields)
	default:
		stats.Type = ChartFrequency
		stats.Data = genericCounts(records)
	}
	return stats
}

// timeSeriesPoints emits one point per calendar date in multi-day windows
// (later records merge into their date's bucket) and one point per record in
// single-day windows. Numeric parsing is forgiving, coercing unparseable
// values to zero, but a point missing or zero on any required sub-field is
// dropped entirely rather than plotted at a misleading zero.
func timeSeriesPoints(subs []string, records []model.Record, window Window) []ChartPoint {
	points := make([]ChartPoint, 0, len(records))

	if window.SingleDay() {
		for _, record := range records {
			assembled := assembleRecord(record)
			values, complete := subValues(subs, assembled.Data)
			if !complete {
				continue
			}
			points = append(points, ChartPoint{Label: pointLabel(record), Values: values})
		}
		return points
	}

	buckets := make(map[string]map[string]float64)
	dates := make([]string, 0)
	for _, record := range records {
		assembled := assembleRecord(record)
		bucket, ok := buckets[record.RecordDate]
		if !ok {
			bucket = make(map[string]float64, len(subs))
			buckets[record.RecordDate] = bucket
			dates = append(dates, record.RecordDate)
		}
		for _, sub := range subs {
			value, present := assembled.Data[sub]
			if !present {
				continue
			}
			f, _ := value.Float()
			bucket[sub] = f
		}
	}

	sort.Strings(dates)
	for _, date := range dates {
		bucket := buckets[date]
		complete := true
		for _, sub := range subs {
			if bucket[sub] == 0 {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		points = append(points, ChartPoint{Label: date, Values: bucket})
	}
	return points
}

// subValues extracts all required sub-fields of one record, reporting
// whether the point is complete (every sub-field present and nonzero).
func subValues(subs []string, data map[string]model.Value) (map[string]float64, bool) {
	values := make(map[string]float64, len(subs))
	for _, sub := range subs {
		value, present := data[sub]
		if !present {
			return nil, false
		}
		f, _ := value.Float()
		if f == 0 {
			return nil, false
		}
		values[sub] = f
	}
	return values, true
}

// frequencyCounts groups records by the value of the label field.
func frequencyCounts(label string, records []model.Record) []ChartPoint {
	counts := make(map[string]int64)
	order := make([]string, 0)
	for _, record := range records {
		assembled := assembleRecord(record)
		value, ok := assembled.Data[label]
		if !ok || value.IsEmpty() {
			continue
		}
		key := value.ExportString()
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}

	points := make([]ChartPoint, 0, len(order))
	for _, key := range order {
		points = append(points, ChartPoint{Label: key, Count: counts[key]})
	}
	return points
}

// genericCounts groups records by their first non-empty field value.
func genericCounts(records []model.Record) []ChartPoint {
	counts := make(map[string]int64)
	order := make([]string, 0)
	for _, record := range records {
		assembled := assembleRecord(record)
		key := ""
		for _, name := range assembled.FieldOrder {
			if value := assembled.Data[name]; !value.IsEmpty() {
				key = value.ExportString()
				break
			}
		}
		if key == "" {
			continue
		}
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}

	points := make([]ChartPoint, 0, len(order))
	for _, key := range order {
		points = append(points, ChartPoint{Label: key, Count: counts[key]})
	}
	return points
}

// weightedPoints accumulates every record with a parseable weight into a
// running total and count, and emits one labeled point per record in
// (date, time) order. Unparseable weights are excluded from both the sum and
// the count, never zero-added.
func weightedPoints(records []model.Record, window Window) ([]ChartPoint, *decimal.Decimal, int) {
	points := make([]ChartPoint, 0, len(records))
	total := decimal.Zero
	count := 0
	for _, record := range records {
		assembled := assembleRecord(record)
		value, ok := assembled.Data[weightFieldName]
		if !ok {
			continue
		}
		f, parsed := value.Float()
		if !parsed {
			continue
		}
		total = total.Add(decimal.NewFromFloat(f))
		count++
		weight := f
		label := record.RecordDate
		if window.SingleDay() {
			label = pointLabel(record)
		}
		points = append(points, ChartPoint{Label: label, Value: &weight})
	}
	if count == 0 {
		return points, nil, 0
	}
	return points, &total, count
}

// orphanStats buckets records whose category row is gone under their stale
// category id with the generic strategy.
func orphanStats(records []model.Record, window Window) map[uint]CategoryStats {
	byCategory := make(map[uint][]model.Record)
	for _, record := range records {
		if record.Category != nil {
			// category still exists, it is just hidden or reserved
			continue
		}
		byCategory[record.CategoryID] = append(byCategory[record.CategoryID], record)
	}

	out := make(map[uint]CategoryStats, len(byCategory))
	for id, group := range byCategory {
		out[id] = CategoryStats{
			CategoryID: id,
			Name:       unknownCategoryName,
			Type:       ChartFrequency,
			Data:       genericCounts(group),
		}
	}
	return out
}

// requiredNumberFields returns the names of the schema's required number
// fields in schema order. These are the sub-fields of a time series.
func requiredNumberFields(fields []model.FieldDefinition) []string {
	subs := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.FieldType == model.FieldTypeNumber && f.IsRequired {
			subs = append(subs, f.FieldName)
		}
	}
	return subs
}

// labelField returns the first text or select field of the schema.
func labelField(fields []model.FieldDefinition) string {
	for _, f := range fields {
		if f.FieldType == model.FieldTypeText || f.FieldType == model.FieldTypeSelect {
			return f.FieldName
		}
	}
	if len(fields) > 0 {
		return fields[0].FieldName
	}
	return ""
}

// weightUnit returns the unit of the schema's weight field.
func weightUnit(fields []model.FieldDefinition) string {
	for _, f := range fields {
		if f.FieldName == weightFieldName {
			return f.Unit
		}
	}
	return ""
}

// pointLabel labels a single-day data point with its date and, when
// recorded, time of day.
func pointLabel(record model.Record) string {
	if record.RecordTime != nil && *record.RecordTime != "" {
		return record.RecordDate + " " + *record.RecordTime
	}
	return record.RecordDate
}
