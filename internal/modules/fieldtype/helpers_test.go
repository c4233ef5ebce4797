package fieldtype_test

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"videofield/internal/config"
	"videofield/internal/database"
	"videofield/internal/domain/datafield"
	"videofield/internal/domain/filestorage"
	"videofield/internal/modules/fieldtype"
)

const (
	testBaseURL   = "http://lms.test"
	testContextID = int64(42)
	testUserID    = int64(5)
)

type testEnv struct {
	db      *gorm.DB
	records datafield.Repository
	files   *filestorage.Service
	svc     *fieldtype.Service
	data    *datafield.Database
	video   *datafield.Field
	file    *datafield.Field
}

func newTestEnv(t *testing.T, log *zap.Logger) *testEnv {
	t.Helper()
	if log == nil {
		log = zap.NewNop()
	}

	db, err := database.OpenMemory(uuid.NewString())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	blobs, err := filestorage.NewLocalBlobStore(t.TempDir())
	require.NoError(t, err)

	records := datafield.NewRepository(db)
	files := filestorage.NewService(filestorage.NewRepository(db), blobs, testBaseURL, log,
		filestorage.RepositoryGoogleDocs, "dropbox")

	deps := fieldtype.Deps{
		DB:      db,
		Records: records,
		Files:   files,
		Log:     log,
		Settings: fieldtype.Settings{
			VideoAcceptedTypes: config.ParseTypeList(config.DefaultVideoTypes),
			DefaultMaxBytes:    1 << 20,
			PublicBaseURL:      testBaseURL,
		},
	}

	ctx := context.Background()
	data := &datafield.Database{ContextID: testContextID, Name: "Lectures"}
	require.NoError(t, records.CreateDatabase(ctx, data))
	video := &datafield.Field{DataID: data.ID, Type: datafield.TypeVideoFile, Name: "Recording", Description: "Lecture recording", Required: true}
	require.NoError(t, records.CreateField(ctx, video))
	file := &datafield.Field{DataID: data.ID, Type: datafield.TypeFile, Name: "Slides"}
	require.NoError(t, records.CreateField(ctx, file))

	return &testEnv{
		db:      db,
		records: records,
		files:   files,
		svc:     fieldtype.NewService(fieldtype.NewRegistry(), deps),
		data:    data,
		video:   video,
		file:    file,
	}
}

func (e *testEnv) newRecord(t *testing.T) *datafield.Record {
	t.Helper()
	rec, err := e.svc.CreateRecord(context.Background(), e.data.ID, testUserID)
	require.NoError(t, err)
	return rec
}

// submitUpload uploads name into a fresh draft and submits it for the record.
func (e *testEnv) submitUpload(t *testing.T, field *datafield.Field, rec *datafield.Record, name, body string) *datafield.Content {
	t.Helper()
	ctx := context.Background()
	draftID, err := e.files.UnusedDraftItemID(ctx)
	require.NoError(t, err)

	_, err = e.svc.UploadDraftFile(ctx, field.ID, testUserID, draftID, name, strings.NewReader(body))
	require.NoError(t, err)

	content, msg, err := e.svc.Submit(ctx, field.ID, testUserID, rec.ID, fileValue(field, draftID), "")
	require.NoError(t, err)
	require.Empty(t, msg)
	return content
}

func fileValue(field *datafield.Field, draftID int64) map[string]fieldtype.SubmittedValue {
	return map[string]fieldtype.SubmittedValue{
		"file": {FieldID: field.ID, Value: strconv.FormatInt(draftID, 10)},
	}
}

var hiddenInput = regexp.MustCompile(`name="field_\d+_file" value="(\d+)"`)

func draftIDFromForm(t *testing.T, html string) int64 {
	t.Helper()
	m := hiddenInput.FindStringSubmatch(html)
	require.Len(t, m, 2, "hidden draft input missing in %s", html)
	id, err := strconv.ParseInt(m[1], 10, 64)
	require.NoError(t, err)
	return id
}
