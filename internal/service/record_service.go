package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"healthlog/internal/errors"
	"healthlog/internal/model"
	"healthlog/internal/repository"
)

const dateLayout = "2006-01-02"

// unknownCategoryName labels records whose category no longer resolves.
const unknownCategoryName = "unknown"

// RecordInput carries a new record and its field values.
type RecordInput struct {
	CategoryID uint
	RecordDate string
	RecordTime *string
	Notes      *string
	Data       map[string]model.Value
}

// RecordPatch carries a partial record update. Nil fields are left
// untouched. An empty RecordTime or Notes clears the column to NULL. A
// non-nil Data replaces every existing value row, even when the new set is
// empty.
type RecordPatch struct {
	CategoryID *uint
	RecordDate *string
	RecordTime *string
	Notes      *string
	Data       *map[string]model.Value
}

// AssembledRecord is a record with its flat value rows folded back into a
// field_name keyed payload, plus denormalized category name and icon.
type AssembledRecord struct {
	ID           uint                   `json:"id"`
	CategoryID   uint                   `json:"category_id"`
	CategoryName string                 `json:"category_name"`
	CategoryIcon string                 `json:"category_icon"`
	RecordDate   string                 `json:"record_date"`
	RecordTime   *string                `json:"record_time,omitempty"`
	Notes        *string                `json:"notes,omitempty"`
	Data         map[string]model.Value `json:"data"`
	FieldOrder   []string               `json:"-"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// RecordService handles records and their field values as one logical unit.
type RecordService interface {
	Create(ctx context.Context, userID uuid.UUID, in RecordInput) (uint, error)
	Update(ctx context.Context, userID uuid.UUID, id uint, patch RecordPatch) error
	Delete(ctx context.Context, userID uuid.UUID, id uint) error
	Get(ctx context.Context, userID uuid.UUID, id uint) (*AssembledRecord, error)
	List(ctx context.Context, userID uuid.UUID, filter repository.RecordFilter) ([]AssembledRecord, error)
}

type recordService struct {
	recordRepo repository.RecordRepository
}

// NewRecordService creates a new record service.
func NewRecordService(recordRepo repository.RecordRepository) RecordService {
	return &recordService{recordRepo: recordRepo}
}

// Create inserts the record row and one value row per non-empty field inside
// a single transaction: if value insertion fails, the record row never
// becomes observable.
func (s *recordService) Create(ctx context.Context, userID uuid.UUID, in RecordInput) (uint, error) {
	if in.CategoryID == 0 {
		return 0, errors.ErrCategoryRequired
	}
	if err := validateDate(in.RecordDate); err != nil {
		return 0, err
	}

	record := model.Record{
		UserID:     userID,
		CategoryID: in.CategoryID,
		RecordDate: in.RecordDate,
		RecordTime: in.RecordTime,
		Notes:      in.Notes,
	}

	err := s.recordRepo.WithTransaction(ctx, func(ctx context.Context, repo repository.RecordRepository) error {
		if err := repo.Create(ctx, &record); err != nil {
			return fmt.Errorf("create record: %w", err)
		}
		if err := repo.CreateValues(ctx, valueRows(record.ID, in.Data)); err != nil {
			return fmt.Errorf("create record values: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return record.ID, nil
}

// Update applies a partial update. When patch.Data is present all existing
// value rows are deleted and the new set inserted, a full replace rather
// than a merge.
func (s *recordService) Update(ctx context.Context, userID uuid.UUID, id uint, patch RecordPatch) error {
	columns := map[string]interface{}{}
	if patch.CategoryID != nil {
		if *patch.CategoryID == 0 {
			return errors.ErrCategoryRequired
		}
		columns["category_id"] = *patch.CategoryID
	}
	if patch.RecordDate != nil {
		if err := validateDate(*patch.RecordDate); err != nil {
			return err
		}
		columns["record_date"] = *patch.RecordDate
	}
	if patch.RecordTime != nil {
		columns["record_time"] = nullableColumn(*patch.RecordTime)
	}
	if patch.Notes != nil {
		columns["notes"] = nullableColumn(*patch.Notes)
	}

	return s.recordRepo.WithTransaction(ctx, func(ctx context.Context, repo repository.RecordRepository) error {
		if _, err := repo.FindByID(ctx, id, userID); err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.ErrRecordNotFound
			}
			return fmt.Errorf("find record: %w", err)
		}
		if err := repo.UpdateColumns(ctx, id, userID, columns); err != nil {
			return fmt.Errorf("update record: %w", err)
		}
		if patch.Data != nil {
			if err := repo.DeleteValues(ctx, id); err != nil {
				return fmt.Errorf("delete record values: %w", err)
			}
			if err := repo.CreateValues(ctx, valueRows(id, *patch.Data)); err != nil {
				return fmt.Errorf("create record values: %w", err)
			}
		}
		return nil
	})
}

// Delete removes a record and its value rows, scoped by owner.
func (s *recordService) Delete(ctx context.Context, userID uuid.UUID, id uint) error {
	return s.recordRepo.WithTransaction(ctx, func(ctx context.Context, repo repository.RecordRepository) error {
		affected, err := repo.Delete(ctx, id, userID)
		if err != nil {
			return fmt.Errorf("delete record: %w", err)
		}
		if affected == 0 {
			return errors.ErrRecordNotFound
		}
		if err := repo.DeleteValues(ctx, id); err != nil {
			return fmt.Errorf("delete record values: %w", err)
		}
		return nil
	})
}

// Get returns one assembled record.
func (s *recordService) Get(ctx context.Context, userID uuid.UUID, id uint) (*AssembledRecord, error) {
	record, err := s.recordRepo.FindByID(ctx, id, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrRecordNotFound
		}
		return nil, fmt.Errorf("find record: %w", err)
	}
	assembled := assembleRecord(*record)
	return &assembled, nil
}

// List returns the user's assembled records, newest first.
func (s *recordService) List(ctx context.Context, userID uuid.UUID, filter repository.RecordFilter) ([]AssembledRecord, error) {
	records, err := s.recordRepo.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	assembled := make([]AssembledRecord, 0, len(records))
	for _, record := range records {
		assembled = append(assembled, assembleRecord(record))
	}
	return assembled, nil
}

// assembleRecord folds value rows into a field_name keyed payload. Duplicate
// field_name rows resolve the same way the field resolver does: the row with
// the smallest id wins.
func assembleRecord(record model.Record) AssembledRecord {
	rows := append([]model.RecordFieldValue(nil), record.Values...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })

	data := make(map[string]model.Value, len(rows))
	order := make([]string, 0, len(rows))
	for _, row := range rows {
		if _, dup := data[row.FieldName]; dup {
			continue
		}
		data[row.FieldName] = row.Value()
		order = append(order, row.FieldName)
	}

	name, icon := unknownCategoryName, ""
	if record.Category != nil {
		name, icon = record.Category.Name, record.Category.Icon
	}

	return AssembledRecord{
		ID:           record.ID,
		CategoryID:   record.CategoryID,
		CategoryName: name,
		CategoryIcon: icon,
		RecordDate:   record.RecordDate,
		RecordTime:   record.RecordTime,
		Notes:        record.Notes,
		Data:         data,
		FieldOrder:   order,
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}
}

// valueRows maps non-empty field values onto storage rows in stable name order.
func valueRows(recordID uint, data map[string]model.Value) []model.RecordFieldValue {
	if len(data) == 0 {
		return nil
	}
	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]model.RecordFieldValue, 0, len(names))
	for _, name := range names {
		value := data[name]
		if value.IsEmpty() {
			continue
		}
		rows = append(rows, model.NewRecordFieldValue(recordID, name, value))
	}
	return rows
}

// nullableColumn maps an empty string onto SQL NULL so a patch can clear the
// nullable record_time and notes columns.
func nullableColumn(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func validateDate(date string) error {
	if date == "" {
		return errors.ErrRecordDateRequired
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return errors.ErrRecordDateInvalid
	}
	return nil
}
