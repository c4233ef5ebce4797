package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"videofield/internal/config"
	"videofield/internal/database"
	"videofield/internal/domain/datafield"
	"videofield/internal/domain/filestorage"
	"videofield/internal/logger"
	"videofield/internal/modules/fieldtype"
)

// App holds the process-wide services every command starts from.
type App struct {
	Config  *config.Config
	Log     *zap.Logger
	DB      *gorm.DB
	Records datafield.Repository
	Files   *filestorage.Service
}

// New loads configuration, then opens and migrates the database and the
// configured blob store.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Development: !cfg.IsProduction() && cfg.LogFormat == "console",
	})
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return Open(ctx, cfg, log)
}

// Open builds the app from an already loaded config and logger.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	blobs, err := NewBlobStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	log.Info("blob store ready",
		zap.String("driver", cfg.Storage.Driver),
		zap.String("dir", cfg.Storage.Dir),
		zap.String("bucket", cfg.Storage.MinioBucket))

	files := filestorage.NewService(filestorage.NewRepository(db), blobs, cfg.PublicBaseURL, log,
		filestorage.RepositoryGoogleDocs)

	return &App{
		Config:  cfg,
		Log:     log,
		DB:      db,
		Records: datafield.NewRepository(db),
		Files:   files,
	}, nil
}

// NewBlobStore opens the blob backend selected by STORAGE_DRIVER.
func NewBlobStore(ctx context.Context, cfg config.StorageConfig) (filestorage.BlobStore, error) {
	switch cfg.Driver {
	case "minio":
		store, err := filestorage.NewMinioBlobStore(ctx, filestorage.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("open minio store: %w", err)
		}
		return store, nil
	default:
		store, err := filestorage.NewLocalBlobStore(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("open local store: %w", err)
		}
		return store, nil
	}
}

// FieldService builds the field-type service over the app's repositories.
func (a *App) FieldService() *fieldtype.Service {
	return fieldtype.NewService(fieldtype.NewRegistry(), fieldtype.Deps{
		DB:      a.DB,
		Records: a.Records,
		Files:   a.Files,
		Log:     a.Log,
		Settings: fieldtype.Settings{
			VideoAcceptedTypes: a.Config.VideoAcceptedTypes,
			DefaultMaxBytes:    a.Config.DefaultMaxBytes,
			PublicBaseURL:      a.Config.PublicBaseURL,
		},
	})
}

// Close releases the database pool and flushes the logger.
func (a *App) Close() {
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.Log.Sync()
}
