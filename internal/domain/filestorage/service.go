package filestorage

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	maxDraftItemID   = 999999999
	draftIDAttempts  = 10
	sniffHeaderBytes = 3072
)

// Service is the file subsystem: permanent areas, user draft areas and the
// blob store behind them.
type Service struct {
	repo         Repository
	blobs        BlobStore
	baseURL      string
	repositories map[string]bool
	log          *zap.Logger
}

// NewService builds the file service. externalRepositories lists the
// repository types that may be linked into drafts.
func NewService(repo Repository, blobs BlobStore, baseURL string, log *zap.Logger, externalRepositories ...string) *Service {
	repos := make(map[string]bool, len(externalRepositories))
	for _, r := range externalRepositories {
		repos[r] = true
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, blobs: blobs, baseURL: baseURL, repositories: repos, log: log}
}

// WithTx returns a copy of the service whose metadata operations run in tx.
func (s *Service) WithTx(tx *gorm.DB) *Service {
	cp := *s
	cp.repo = s.repo.WithTx(tx)
	return &cp
}

// URL is the public URL of a stored file.
func (s *Service) URL(f *StoredFile) string {
	return PluginFileURL(s.baseURL, f)
}

// SupportsRepository reports whether repoType can be linked into drafts.
func (s *Service) SupportsRepository(repoType string) bool {
	return s.repositories[repoType]
}

// UnusedDraftItemID allocates a draft item id no draft file uses yet.
func (s *Service) UnusedDraftItemID(ctx context.Context) (int64, error) {
	for i := 0; i < draftIDAttempts; i++ {
		id := rand.Int63n(maxDraftItemID) + 1
		used, err := s.repo.ItemExists(ctx, DraftComponent, DraftFileArea, id)
		if err != nil {
			return 0, fmt.Errorf("check draft item id: %w", err)
		}
		if !used {
			return id, nil
		}
	}
	return 0, errors.New("could not allocate an unused draft item id")
}

// PrepareDraftArea returns the draft item id to edit area with. A zero
// draftItemID allocates a new draft and copies the area files into it; a
// non-zero one is an already prepared draft and is returned unchanged.
func (s *Service) PrepareDraftArea(ctx context.Context, userID, draftItemID int64, area AreaKey) (int64, error) {
	if draftItemID != 0 {
		return draftItemID, nil
	}

	id, err := s.UnusedDraftItemID(ctx)
	if err != nil {
		return 0, err
	}

	files, err := s.repo.ListArea(ctx, area)
	if err != nil {
		return 0, fmt.Errorf("list area files: %w", err)
	}
	draft := DraftArea(userID, id)
	for _, f := range files {
		cp := f.copyTo(draft)
		if err := s.repo.Create(ctx, cp); err != nil {
			return 0, fmt.Errorf("copy %s into draft: %w", f.FileName, err)
		}
	}
	return id, nil
}

// SaveDraftAreaFiles makes area hold exactly the files of the user's draft:
// new draft files are added, changed ones are updated in place and files
// missing from the draft are removed. It returns the content hashes the area
// stopped referencing; callers pass them to ReleaseBlobs once the change is
// committed.
func (s *Service) SaveDraftAreaFiles(ctx context.Context, userID, draftItemID int64, area AreaKey) ([]string, error) {
	draftFiles, err := s.repo.ListArea(ctx, DraftArea(userID, draftItemID))
	if err != nil {
		return nil, fmt.Errorf("list draft files: %w", err)
	}
	current, err := s.repo.ListArea(ctx, area)
	if err != nil {
		return nil, fmt.Errorf("list area files: %w", err)
	}

	existing := make(map[string]*StoredFile, len(current))
	for _, f := range current {
		existing[f.FilePath+f.FileName] = f
	}

	var released []string
	for _, d := range draftFiles {
		key := d.FilePath + d.FileName
		if cur, ok := existing[key]; ok {
			delete(existing, key)
			if cur.sameContent(d) {
				continue
			}
			if cur.ContentHash != "" && cur.ContentHash != d.ContentHash {
				released = append(released, cur.ContentHash)
			}
			cur.ContentHash = d.ContentHash
			cur.MimeType = d.MimeType
			cur.FileSize = d.FileSize
			cur.UserID = d.UserID
			cur.RepositoryType = d.RepositoryType
			cur.Reference = d.Reference
			if err := s.repo.Update(ctx, cur); err != nil {
				return nil, fmt.Errorf("update %s: %w", cur.FileName, err)
			}
			continue
		}
		if err := s.repo.Create(ctx, d.copyTo(area)); err != nil {
			return nil, fmt.Errorf("save %s: %w", d.FileName, err)
		}
	}

	for _, stale := range existing {
		if err := s.repo.Delete(ctx, stale.ID); err != nil {
			return nil, fmt.Errorf("delete %s: %w", stale.FileName, err)
		}
		if stale.ContentHash != "" {
			released = append(released, stale.ContentHash)
		}
	}
	return released, nil
}

// ReleaseBlobs deletes the blobs of hashes that no file row references any
// more. Failures are logged, the rows are already consistent.
func (s *Service) ReleaseBlobs(ctx context.Context, hashes ...string) {
	seen := make(map[string]struct{}, len(hashes))
	for _, h := range hashes {
		if _, ok := seen[h]; ok || h == "" {
			continue
		}
		seen[h] = struct{}{}
		s.releaseBlob(ctx, h)
	}
}

// GetAreaFiles lists an area ordered by item id, file path and file name.
func (s *Service) GetAreaFiles(ctx context.Context, area AreaKey) ([]*StoredFile, error) {
	return s.repo.ListArea(ctx, area)
}

func (s *Service) GetFile(ctx context.Context, key FileKey) (*StoredFile, error) {
	return s.repo.Get(ctx, key)
}

// ListDraftFiles lists the files of a user's draft.
func (s *Service) ListDraftFiles(ctx context.Context, userID, draftItemID int64) ([]*StoredFile, error) {
	return s.repo.ListArea(ctx, DraftArea(userID, draftItemID))
}

// CreateFileFromBytes writes content straight into permanent storage at key.
func (s *Service) CreateFileFromBytes(ctx context.Context, key FileKey, userID int64, content []byte) (*StoredFile, error) {
	name := NormalizeFileName(key.FileName)
	if name == "" {
		return nil, ErrInvalidFileName
	}
	if key.FilePath == "" {
		key.FilePath = "/"
	}

	head := content
	if len(head) > sniffHeaderBytes {
		head = head[:sniffHeaderBytes]
	}

	info, err := s.blobs.Put(ctx, bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	f := &StoredFile{
		ContextID:   key.ContextID,
		Component:   key.Component,
		FileArea:    key.FileArea,
		ItemID:      key.ItemID,
		FilePath:    key.FilePath,
		FileName:    name,
		ContentHash: info.Hash,
		MimeType:    DetectMimeType(name, head),
		FileSize:    info.Size,
		UserID:      userID,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		s.releaseBlob(ctx, info.Hash)
		return nil, err
	}
	return f, nil
}

// AddDraftFile stores an uploaded file in the user's draft, enforcing the
// widget constraints. With MaxFiles 1 the upload replaces the draft content.
func (s *Service) AddDraftFile(ctx context.Context, userID, draftItemID int64, filename string, r io.Reader, opts UploadOptions) (*StoredFile, error) {
	name := NormalizeFileName(filename)
	if name == "" {
		return nil, ErrInvalidFileName
	}
	if !opts.Accepts(name) {
		return nil, ErrInvalidFileType
	}

	br := bufio.NewReaderSize(r, sniffHeaderBytes)
	head, err := br.Peek(sniffHeaderBytes)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(head) == 0 {
		return nil, ErrEmptyFile
	}

	var src io.Reader = br
	if opts.MaxBytes > 0 {
		src = io.LimitReader(br, opts.MaxBytes+1)
	}
	info, err := s.blobs.Put(ctx, src)
	if err != nil {
		return nil, err
	}
	if opts.MaxBytes > 0 && info.Size > opts.MaxBytes {
		s.releaseBlob(ctx, info.Hash)
		return nil, ErrFileTooLarge
	}

	f := &StoredFile{
		FilePath:    "/",
		FileName:    name,
		ContentHash: info.Hash,
		MimeType:    DetectMimeType(name, head),
		FileSize:    info.Size,
		UserID:      userID,
	}
	if err := s.placeInDraft(ctx, userID, draftItemID, f, opts); err != nil {
		s.releaseBlob(ctx, info.Hash)
		return nil, err
	}
	return f, nil
}

// LinkExternalFile adds a reference to a file held by an external
// repository to the user's draft.
func (s *Service) LinkExternalFile(ctx context.Context, userID, draftItemID int64, filename, repoType, reference string, opts UploadOptions) (*StoredFile, error) {
	if !s.SupportsRepository(repoType) {
		return nil, ErrUnknownRepository
	}
	ref, err := ParseReference(reference)
	if err != nil || ref.ID == "" {
		return nil, ErrInvalidReference
	}
	name := NormalizeFileName(filename)
	if name == "" {
		return nil, ErrInvalidFileName
	}
	if !opts.Accepts(name) {
		return nil, ErrInvalidFileType
	}

	f := &StoredFile{
		FilePath:       "/",
		FileName:       name,
		MimeType:       DetectMimeType(name, nil),
		UserID:         userID,
		RepositoryType: repoType,
		Reference:      reference,
	}
	if err := s.placeInDraft(ctx, userID, draftItemID, f, opts); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Service) placeInDraft(ctx context.Context, userID, draftItemID int64, f *StoredFile, opts UploadOptions) error {
	draft := DraftArea(userID, draftItemID)
	f.ContextID = draft.ContextID
	f.Component = draft.Component
	f.FileArea = draft.FileArea
	f.ItemID = draft.ItemID

	files, err := s.repo.ListArea(ctx, draft)
	if err != nil {
		return fmt.Errorf("list draft files: %w", err)
	}

	if opts.MaxFiles == 1 {
		err := s.repo.Transaction(ctx, func(repo Repository) error {
			if _, err := repo.DeleteArea(ctx, draft); err != nil {
				return fmt.Errorf("clear draft: %w", err)
			}
			return repo.Create(ctx, f)
		})
		if err != nil {
			return err
		}
		for _, replaced := range files {
			if replaced.ContentHash != f.ContentHash {
				s.ReleaseBlobs(ctx, replaced.ContentHash)
			}
		}
		return nil
	}

	for _, existing := range files {
		if existing.FilePath == f.FilePath && existing.FileName == f.FileName {
			f.ID = existing.ID
			f.CreatedAt = existing.CreatedAt
			return s.repo.Update(ctx, f)
		}
	}
	if opts.MaxFiles > 0 && len(files) >= opts.MaxFiles {
		return ErrTooManyFiles
	}
	return s.repo.Create(ctx, f)
}

// RemoveDraftFile deletes one file from the user's draft.
func (s *Service) RemoveDraftFile(ctx context.Context, userID, draftItemID int64, filePath, fileName string) error {
	f, err := s.repo.Get(ctx, FileKey{AreaKey: DraftArea(userID, draftItemID), FilePath: filePath, FileName: fileName})
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, f.ID); err != nil {
		return fmt.Errorf("delete draft file: %w", err)
	}
	if f.ContentHash != "" {
		s.releaseBlob(ctx, f.ContentHash)
	}
	return nil
}

// Open returns a reader over the bytes of a local file.
func (s *Service) Open(ctx context.Context, f *StoredFile) (io.ReadCloser, error) {
	if f.IsExternal() {
		return nil, ErrExternalFile
	}
	return s.blobs.Open(ctx, f.ContentHash)
}

// DeleteDraftsOlderThan removes draft files created before cutoff and the
// blobs no other file references.
func (s *Service) DeleteDraftsOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	files, err := s.repo.ListDraftsCreatedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list old drafts: %w", err)
	}

	hashes := make(map[string]struct{})
	for _, f := range files {
		if err := s.repo.Delete(ctx, f.ID); err != nil {
			return 0, fmt.Errorf("delete draft file %d: %w", f.ID, err)
		}
		if f.ContentHash != "" {
			hashes[f.ContentHash] = struct{}{}
		}
	}
	for h := range hashes {
		s.releaseBlob(ctx, h)
	}
	return len(files), nil
}

// releaseBlob deletes a blob once no file row references it.
func (s *Service) releaseBlob(ctx context.Context, hash string) {
	n, err := s.repo.CountByHash(ctx, hash)
	if err != nil {
		s.log.Warn("count blob references", zap.String("hash", hash), zap.Error(err))
		return
	}
	if n > 0 {
		return
	}
	if err := s.blobs.Delete(ctx, hash); err != nil {
		s.log.Warn("delete unreferenced blob", zap.String("hash", hash), zap.Error(err))
	}
}
