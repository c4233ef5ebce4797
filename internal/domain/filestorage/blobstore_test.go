package filestorage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helloHash = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"

func TestLocalBlobStore_PutOpenDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalBlobStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	info, err := s.Put(ctx, strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, helloHash, info.Hash)
	assert.Equal(t, int64(5), info.Size)
	assert.FileExists(t, filepath.Join(dir, "2c", "f2", helloHash))

	again, err := s.Put(ctx, strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, info, again)

	tmp, err := os.ReadDir(filepath.Join(dir, "temp"))
	require.NoError(t, err)
	assert.Empty(t, tmp, "temp files are cleaned up")

	rc, err := s.Open(ctx, info.Hash)
	require.NoError(t, err)
	b, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))

	require.NoError(t, s.Delete(ctx, info.Hash))
	require.NoError(t, s.Delete(ctx, info.Hash), "deleting twice is fine")

	_, err = s.Open(ctx, info.Hash)
	assert.ErrorIs(t, err, ErrBlobNotFound)
}

func TestBlobKey(t *testing.T) {
	assert.Equal(t, "2c/f2/"+helloHash, blobKey(helloHash))
	assert.Equal(t, "abc", blobKey("abc"))
}
