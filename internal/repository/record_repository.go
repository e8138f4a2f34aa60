package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"healthlog/internal/model"
)

// RecordFilter narrows record listings. Dates are inclusive YYYY-MM-DD
// calendar dates; zero values leave the dimension unfiltered.
type RecordFilter struct {
	StartDate  string
	EndDate    string
	CategoryID uint
}

// RecordRepository defines record persistence operations. Every query is
// scoped by owner so cross-user access is unreachable, not merely hidden.
type RecordRepository interface {
	Create(ctx context.Context, record *model.Record) error
	CreateValues(ctx context.Context, values []model.RecordFieldValue) error
	UpdateColumns(ctx context.Context, id uint, userID uuid.UUID, columns map[string]interface{}) error
	DeleteValues(ctx context.Context, recordID uint) error
	Delete(ctx context.Context, id uint, userID uuid.UUID) (int64, error)
	FindByID(ctx context.Context, id uint, userID uuid.UUID) (*model.Record, error)
	List(ctx context.Context, userID uuid.UUID, filter RecordFilter) ([]model.Record, error)
	ListInWindow(ctx context.Context, userID uuid.UUID, categoryID uint, start, end string) ([]model.Record, error)
	ListInWindowExcluding(ctx context.Context, userID uuid.UUID, start, end string, categoryIDs []uint) ([]model.Record, error)
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo RecordRepository) error) error
}

type recordRepository struct {
	db *gorm.DB
}

// NewRecordRepository creates a new record repository.
func NewRecordRepository(db *gorm.DB) RecordRepository {
	return &recordRepository{db: db}
}

// Create creates a new record row.
func (r *recordRepository) Create(ctx context.Context, record *model.Record) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// CreateValues inserts the field value rows of a record.
func (r *recordRepository) CreateValues(ctx context.Context, values []model.RecordFieldValue) error {
	if len(values) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&values).Error
}

// UpdateColumns updates a subset of record columns, scoped by owner.
func (r *recordRepository) UpdateColumns(ctx context.Context, id uint, userID uuid.UUID, columns map[string]interface{}) error {
	if len(columns) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Record{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(columns).Error
}

// DeleteValues removes all field value rows of a record.
func (r *recordRepository) DeleteValues(ctx context.Context, recordID uint) error {
	return r.db.WithContext(ctx).
		Where("record_id = ?", recordID).
		Delete(&model.RecordFieldValue{}).Error
}

// Delete removes a record scoped by owner, reporting affected rows. Zero
// rows means the record does not resolve for this user.
func (r *recordRepository) Delete(ctx context.Context, id uint, userID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Record{})
	return res.RowsAffected, res.Error
}

// FindByID finds a record with its category and value rows, scoped by owner.
func (r *recordRepository) FindByID(ctx context.Context, id uint, userID uuid.UUID) (*model.Record, error) {
	var record model.Record
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Values").
		Where("id = ? AND user_id = ?", id, userID).
		First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// List returns the user's records newest first with category and values loaded.
func (r *recordRepository) List(ctx context.Context, userID uuid.UUID, filter RecordFilter) ([]model.Record, error) {
	q := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Values").
		Where("user_id = ?", userID).
		Order("record_date DESC").
		Order("record_time DESC").
		Order("id DESC")
	if filter.StartDate != "" {
		q = q.Where("record_date >= ?", filter.StartDate)
	}
	if filter.EndDate != "" {
		q = q.Where("record_date <= ?", filter.EndDate)
	}
	if filter.CategoryID != 0 {
		q = q.Where("category_id = ?", filter.CategoryID)
	}

	var records []model.Record
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ListInWindow returns one category's records inside an inclusive date
// window, oldest first, with value rows loaded.
func (r *recordRepository) ListInWindow(ctx context.Context, userID uuid.UUID, categoryID uint, start, end string) ([]model.Record, error) {
	var records []model.Record
	if err := r.db.WithContext(ctx).
		Preload("Values").
		Where("user_id = ? AND category_id = ?", userID, categoryID).
		Where("record_date >= ? AND record_date <= ?", start, end).
		Order("record_date ASC").
		Order("record_time ASC").
		Order("id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ListInWindowExcluding returns in-window records whose category is not in
// the given set, with category and values loaded. Used to pick up records
// whose category no longer resolves.
func (r *recordRepository) ListInWindowExcluding(ctx context.Context, userID uuid.UUID, start, end string, categoryIDs []uint) ([]model.Record, error) {
	q := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Values").
		Where("user_id = ?", userID).
		Where("record_date >= ? AND record_date <= ?", start, end).
		Order("record_date ASC").
		Order("record_time ASC").
		Order("id ASC")
	if len(categoryIDs) > 0 {
		q = q.Where("category_id NOT IN ?", categoryIDs)
	}

	var records []model.Record
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// WithTransaction executes a function within a database transaction.
func (r *recordRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo RecordRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &recordRepository{db: tx}
		return fn(ctx, txRepo)
	})
}
