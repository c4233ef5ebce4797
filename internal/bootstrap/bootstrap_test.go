package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"videofield/internal/config"
)

func TestOpen_LogsStorageThroughZap(t *testing.T) {
	dir := t.TempDir()
	core, logs := observer.New(zapcore.InfoLevel)
	cfg := &config.Config{
		DatabaseURL:     filepath.Join(dir, "app.db"),
		PublicBaseURL:   "http://lms.test",
		DefaultMaxBytes: 1024,
		Storage:         config.StorageConfig{Driver: "local", Dir: filepath.Join(dir, "blobs")},
	}

	app, err := Open(context.Background(), cfg, zap.New(core))
	require.NoError(t, err)
	t.Cleanup(app.Close)

	entries := logs.FilterMessage("blob store ready").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "local", fields["driver"])
	assert.Equal(t, cfg.Storage.Dir, fields["dir"])

	assert.NotNil(t, app.FieldService())
}
