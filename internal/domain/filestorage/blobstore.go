package filestorage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// BlobInfo describes bytes written to a blob store.
type BlobInfo struct {
	Hash string
	Size int64
}

// BlobStore keeps file bytes addressed by their sha256 hash. Writing the
// same bytes twice stores them once.
type BlobStore interface {
	Put(ctx context.Context, r io.Reader) (BlobInfo, error)
	Open(ctx context.Context, hash string) (io.ReadCloser, error)
	Delete(ctx context.Context, hash string) error
}

// LocalBlobStore keeps blobs under dir/ab/cd/<hash>.
type LocalBlobStore struct {
	dir string
}

func NewLocalBlobStore(dir string) (*LocalBlobStore, error) {
	if err := os.MkdirAll(filepath.Join(dir, "temp"), 0o750); err != nil {
		return nil, fmt.Errorf("create storage dir %s: %w", dir, err)
	}
	return &LocalBlobStore{dir: dir}, nil
}

// Put streams r into a temp file while hashing it, then renames the temp
// file into its content-addressed location.
func (s *LocalBlobStore) Put(ctx context.Context, r io.Reader) (BlobInfo, error) {
	tmpPath := filepath.Join(s.dir, "temp", uuid.NewString()+".tmp")
	f, err := os.Create(tmpPath)
	if err != nil {
		return BlobInfo{}, fmt.Errorf("create temp file: %w", err)
	}

	hasher := sha256.New()
	size, err := io.Copy(f, io.TeeReader(r, hasher))
	if err != nil {
		f.Close()
		os.Remove(tmpPath)
		return BlobInfo{}, fmt.Errorf("write blob: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return BlobInfo{}, fmt.Errorf("fsync blob: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return BlobInfo{}, fmt.Errorf("close blob: %w", err)
	}

	info := BlobInfo{Hash: hex.EncodeToString(hasher.Sum(nil)), Size: size}
	dst := s.path(info.Hash)
	if _, err := os.Stat(dst); err == nil {
		os.Remove(tmpPath)
		return info, nil
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		os.Remove(tmpPath)
		return BlobInfo{}, fmt.Errorf("create blob dir: %w", err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		os.Remove(tmpPath)
		return BlobInfo{}, fmt.Errorf("rename blob: %w", err)
	}
	return info, nil
}

func (s *LocalBlobStore) Open(ctx context.Context, hash string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(hash))
	if os.IsNotExist(err) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open blob %s: %w", hash, err)
	}
	return f, nil
}

// Delete removes a blob. Missing blobs are not an error.
func (s *LocalBlobStore) Delete(ctx context.Context, hash string) error {
	err := os.Remove(s.path(hash))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob %s: %w", hash, err)
	}
	return nil
}

func (s *LocalBlobStore) path(hash string) string {
	return filepath.Join(s.dir, blobKey(hash))
}

// blobKey spreads blobs over two directory levels by hash prefix.
func blobKey(hash string) string {
	if len(hash) < 4 {
		return hash
	}
	return hash[:2] + "/" + hash[2:4] + "/" + hash
}
