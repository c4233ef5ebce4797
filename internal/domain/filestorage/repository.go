package filestorage

import (
	"context"
	"time"

	"gorm.io/gorm"

	"videofield/internal/pkg/dberr"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Transaction(ctx context.Context, fn func(repo Repository) error) error
	Create(ctx context.Context, f *StoredFile) error
	Update(ctx context.Context, f *StoredFile) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, key FileKey) (*StoredFile, error)
	ListArea(ctx context.Context, area AreaKey) ([]*StoredFile, error)
	DeleteArea(ctx context.Context, area AreaKey) (int64, error)
	ItemExists(ctx context.Context, component, fileArea string, itemID int64) (bool, error)
	ListDraftsCreatedBefore(ctx context.Context, before time.Time) ([]*StoredFile, error)
	CountByHash(ctx context.Context, hash string) (int64, error)
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

// Transaction runs fn in a transaction, or a savepoint when r is already
// bound to one.
func (r *repository) Transaction(ctx context.Context, fn func(repo Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&repository{db: tx})
	})
}

func (r *repository) Create(ctx context.Context, f *StoredFile) error {
	err := r.db.WithContext(ctx).Create(f).Error
	if dberr.IsUniqueViolation(err) {
		return ErrFileExists
	}
	return err
}

func (r *repository) Update(ctx context.Context, f *StoredFile) error {
	return r.db.WithContext(ctx).Save(f).Error
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&StoredFile{}).Error
}

func (r *repository) Get(ctx context.Context, key FileKey) (*StoredFile, error) {
	var f StoredFile
	err := r.areaScope(ctx, key.AreaKey).
		Where("file_path = ? AND file_name = ?", key.FilePath, key.FileName).
		First(&f).Error
	if dberr.IsNotFound(err) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// ListArea returns the files of an area ordered by item id, path and name.
func (r *repository) ListArea(ctx context.Context, area AreaKey) ([]*StoredFile, error) {
	var files []*StoredFile
	err := r.areaScope(ctx, area).
		Order("item_id, file_path, file_name").
		Find(&files).Error
	return files, err
}

func (r *repository) DeleteArea(ctx context.Context, area AreaKey) (int64, error) {
	res := r.areaScope(ctx, area).Delete(&StoredFile{})
	return res.RowsAffected, res.Error
}

func (r *repository) ItemExists(ctx context.Context, component, fileArea string, itemID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&StoredFile{}).
		Where("component = ? AND file_area = ? AND item_id = ?", component, fileArea, itemID).
		Count(&n).Error
	return n > 0, err
}

func (r *repository) ListDraftsCreatedBefore(ctx context.Context, before time.Time) ([]*StoredFile, error) {
	var files []*StoredFile
	err := r.db.WithContext(ctx).
		Where("component = ? AND file_area = ? AND created_at < ?", DraftComponent, DraftFileArea, before).
		Order("id").
		Find(&files).Error
	return files, err
}

func (r *repository) CountByHash(ctx context.Context, hash string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&StoredFile{}).Where("content_hash = ?", hash).Count(&n).Error
	return n, err
}

func (r *repository) areaScope(ctx context.Context, area AreaKey) *gorm.DB {
	return r.db.WithContext(ctx).
		Where("context_id = ? AND component = ? AND file_area = ? AND item_id = ?",
			area.ContextID, area.Component, area.FileArea, area.ItemID)
}
