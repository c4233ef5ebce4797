package datafield

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"videofield/internal/pkg/dberr"
)

// Repository is the record-storage surface used by field types.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateDatabase(ctx context.Context, d *Database) error
	GetDatabase(ctx context.Context, id int64) (*Database, error)

	CreateField(ctx context.Context, f *Field) error
	GetField(ctx context.Context, id int64) (*Field, error)

	CreateRecord(ctx context.Context, r *Record) error
	GetRecord(ctx context.Context, id int64) (*Record, error)
	TouchRecord(ctx context.Context, id int64) error

	GetContent(ctx context.Context, fieldID, recordID int64) (*Content, error)
	GetContentByID(ctx context.Context, id int64) (*Content, error)
	FindOrCreateContent(ctx context.Context, fieldID, recordID int64) (*Content, error)
	UpdateContent(ctx context.Context, c *Content) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) CreateDatabase(ctx context.Context, d *Database) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *repository) GetDatabase(ctx context.Context, id int64) (*Database, error) {
	var d Database
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&d).Error
	if dberr.IsNotFound(err) {
		return nil, ErrDatabaseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repository) CreateField(ctx context.Context, f *Field) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *repository) GetField(ctx context.Context, id int64) (*Field, error) {
	var f Field
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&f).Error
	if dberr.IsNotFound(err) {
		return nil, ErrFieldNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *repository) CreateRecord(ctx context.Context, rec *Record) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *repository) GetRecord(ctx context.Context, id int64) (*Record, error) {
	var rec Record
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if dberr.IsNotFound(err) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *repository) TouchRecord(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&Record{}).Where("id = ?", id).
		Update("updated_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}

func (r *repository) GetContent(ctx context.Context, fieldID, recordID int64) (*Content, error) {
	var c Content
	err := r.db.WithContext(ctx).
		Where("field_id = ? AND record_id = ?", fieldID, recordID).
		First(&c).Error
	if dberr.IsNotFound(err) {
		return nil, ErrContentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) GetContentByID(ctx context.Context, id int64) (*Content, error) {
	var c Content
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if dberr.IsNotFound(err) {
		return nil, ErrContentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindOrCreateContent returns the content row for (field, record), inserting
// an empty one when none exists. A concurrent insert that wins the unique
// index race is re-read instead of failing.
func (r *repository) FindOrCreateContent(ctx context.Context, fieldID, recordID int64) (*Content, error) {
	c, err := r.GetContent(ctx, fieldID, recordID)
	if err == nil {
		return c, nil
	}
	if err != ErrContentNotFound {
		return nil, err
	}

	c = &Content{FieldID: fieldID, RecordID: recordID}
	// nested Transaction is a savepoint when already inside one, so a lost
	// race does not abort the enclosing postgres transaction
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(c).Error
	})
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return r.GetContent(ctx, fieldID, recordID)
		}
		return nil, fmt.Errorf("insert content: %w", err)
	}
	return c, nil
}

func (r *repository) UpdateContent(ctx context.Context, c *Content) error {
	return r.db.WithContext(ctx).Model(&Content{}).Where("id = ?", c.ID).
		Updates(map[string]any{"content": c.Content, "content1": c.Content1}).Error
}
