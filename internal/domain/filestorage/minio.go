package filestorage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinioBlobStore keeps blobs as objects of one bucket, keyed like the local
// store.
type MinioBlobStore struct {
	client *minio.Client
	bucket string
}

// NewMinioBlobStore connects to the endpoint and creates the bucket if it
// does not exist yet.
func NewMinioBlobStore(ctx context.Context, cfg MinioConfig) (*MinioBlobStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &MinioBlobStore{client: client, bucket: cfg.Bucket}, nil
}

// Put spools r to a temp file to learn its hash and size, then uploads it
// unless an object with that hash already exists.
func (s *MinioBlobStore) Put(ctx context.Context, r io.Reader) (BlobInfo, error) {
	tmp, err := os.CreateTemp("", "videofield-blob-*")
	if err != nil {
		return BlobInfo{}, fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	hasher := sha256.New()
	size, err := io.Copy(tmp, io.TeeReader(r, hasher))
	if err != nil {
		return BlobInfo{}, fmt.Errorf("spool blob: %w", err)
	}
	info := BlobInfo{Hash: hex.EncodeToString(hasher.Sum(nil)), Size: size}

	key := blobKey(info.Hash)
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err == nil {
		return info, nil
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return BlobInfo{}, fmt.Errorf("rewind blob: %w", err)
	}
	_, err = s.client.PutObject(ctx, s.bucket, key, tmp, size, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return BlobInfo{}, fmt.Errorf("upload blob to minio: %w", err)
	}
	return info, nil
}

func (s *MinioBlobStore) Open(ctx context.Context, hash string) (io.ReadCloser, error) {
	key := blobKey(hash)
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("stat blob %s: %w", hash, err)
	}
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get blob %s: %w", hash, err)
	}
	return obj, nil
}

func (s *MinioBlobStore) Delete(ctx context.Context, hash string) error {
	err := s.client.RemoveObject(ctx, s.bucket, blobKey(hash), minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("delete blob %s: %w", hash, err)
	}
	return nil
}
