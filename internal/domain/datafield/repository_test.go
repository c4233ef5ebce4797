package datafield_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"videofield/internal/database"
	"videofield/internal/domain/datafield"
	"videofield/internal/pkg/dberr"
)

func newRepo(t *testing.T) (datafield.Repository, *gorm.DB) {
	t.Helper()
	db, err := database.OpenMemory(uuid.NewString())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return datafield.NewRepository(db), db
}

func seed(t *testing.T, repo datafield.Repository) (*datafield.Field, *datafield.Record) {
	t.Helper()
	ctx := context.Background()
	data := &datafield.Database{ContextID: 1, Name: "db"}
	require.NoError(t, repo.CreateDatabase(ctx, data))
	field := &datafield.Field{DataID: data.ID, Type: datafield.TypeVideoFile, Name: "Video"}
	require.NoError(t, repo.CreateField(ctx, field))
	rec := &datafield.Record{DataID: data.ID, UserID: 2}
	require.NoError(t, repo.CreateRecord(ctx, rec))
	return field, rec
}

func TestNotFound(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	_, err := repo.GetDatabase(ctx, 1)
	assert.ErrorIs(t, err, datafield.ErrDatabaseNotFound)
	_, err = repo.GetField(ctx, 1)
	assert.ErrorIs(t, err, datafield.ErrFieldNotFound)
	_, err = repo.GetRecord(ctx, 1)
	assert.ErrorIs(t, err, datafield.ErrRecordNotFound)
	_, err = repo.GetContent(ctx, 1, 1)
	assert.ErrorIs(t, err, datafield.ErrContentNotFound)
	_, err = repo.GetContentByID(ctx, 1)
	assert.ErrorIs(t, err, datafield.ErrContentNotFound)
}

func TestFindOrCreateContent_ReturnsSameRow(t *testing.T) {
	repo, db := newRepo(t)
	field, rec := seed(t, repo)
	ctx := context.Background()

	first, err := repo.FindOrCreateContent(ctx, field.ID, rec.ID)
	require.NoError(t, err)
	assert.Nil(t, first.Content)

	second, err := repo.FindOrCreateContent(ctx, field.ID, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var n int64
	require.NoError(t, db.Model(&datafield.Content{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestContentUniquePerFieldAndRecord(t *testing.T) {
	repo, db := newRepo(t)
	field, rec := seed(t, repo)

	require.NoError(t, db.Create(&datafield.Content{FieldID: field.ID, RecordID: rec.ID}).Error)
	err := db.Create(&datafield.Content{FieldID: field.ID, RecordID: rec.ID}).Error
	assert.True(t, dberr.IsUniqueViolation(err), "got %v", err)
}

func TestFindOrCreateContent_InsideTransaction(t *testing.T) {
	repo, db := newRepo(t)
	field, rec := seed(t, repo)
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		c, err := repo.WithTx(tx).FindOrCreateContent(ctx, field.ID, rec.ID)
		if err != nil {
			return err
		}
		name := "clip.mp4"
		c.Content = &name
		return repo.WithTx(tx).UpdateContent(ctx, c)
	})
	require.NoError(t, err)

	c, err := repo.GetContent(ctx, field.ID, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "clip.mp4", c.FileName())
}

func TestUpdateContent_ClearsName(t *testing.T) {
	repo, _ := newRepo(t)
	field, rec := seed(t, repo)
	ctx := context.Background()

	c, err := repo.FindOrCreateContent(ctx, field.ID, rec.ID)
	require.NoError(t, err)
	name, display := "clip.mp4", "Intro"
	c.Content, c.Content1 = &name, &display
	require.NoError(t, repo.UpdateContent(ctx, c))

	got, err := repo.GetContentByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Intro", got.DisplayName())

	got.Content, got.Content1 = nil, nil
	require.NoError(t, repo.UpdateContent(ctx, got))
	got, err = repo.GetContentByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Content)
	assert.Empty(t, got.DisplayName())
}

func TestTouchRecord(t *testing.T) {
	repo, _ := newRepo(t)
	_, rec := seed(t, repo)
	assert.NoError(t, repo.TouchRecord(context.Background(), rec.ID))
}

func TestFieldFormName(t *testing.T) {
	assert.Equal(t, "field_12_file", (&datafield.Field{ID: 12}).FormName())
}
