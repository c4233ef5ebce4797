package fieldtype

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/url"

	"videofield/internal/domain/datafield"
	"videofield/internal/domain/filestorage"
)

// Service resolves field definitions into field types and runs the record
// module operations against them.
type Service struct {
	registry *Registry
	deps     Deps
}

func NewService(registry *Registry, deps Deps) *Service {
	return &Service{registry: registry, deps: deps}
}

// Field loads a field definition with its database and builds its type.
func (s *Service) Field(ctx context.Context, fieldID int64) (Field, error) {
	def, err := s.deps.Records.GetField(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	data, err := s.deps.Records.GetDatabase(ctx, def.DataID)
	if err != nil {
		return nil, fmt.Errorf("load database %d: %w", def.DataID, err)
	}
	return s.registry.New(def, data, s.deps)
}

func (s *Service) CreateRecord(ctx context.Context, dataID, userID int64) (*datafield.Record, error) {
	if _, err := s.deps.Records.GetDatabase(ctx, dataID); err != nil {
		return nil, err
	}
	rec := &datafield.Record{DataID: dataID, UserID: userID}
	if err := s.deps.Records.CreateRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}
	return rec, nil
}

func (s *Service) Form(ctx context.Context, fieldID, userID, recordID int64, formData url.Values) (template.HTML, error) {
	f, err := s.Field(ctx, fieldID)
	if err != nil {
		return "", err
	}
	if recordID != 0 {
		if err := s.checkRecord(ctx, f, recordID); err != nil {
			return "", err
		}
	}
	return f.DisplayAddField(ctx, userID, recordID, formData)
}

func (s *Service) Browse(ctx context.Context, fieldID, recordID int64, preview bool) (template.HTML, error) {
	f, err := s.Field(ctx, fieldID)
	if err != nil {
		return "", err
	}
	return f.DisplayBrowseField(ctx, recordID, preview)
}

// Submit validates a submission and stores it. A non-empty message is a
// validation failure for the user; nothing is stored then.
func (s *Service) Submit(ctx context.Context, fieldID, userID, recordID int64, values map[string]SubmittedValue, name string) (*datafield.Content, string, error) {
	f, err := s.Field(ctx, fieldID)
	if err != nil {
		return nil, "", err
	}
	if err := s.checkRecord(ctx, f, recordID); err != nil {
		return nil, "", err
	}

	if msg := f.Validate(values); msg != "" {
		return nil, msg, nil
	}

	var draftID int64
	if v, ok := values["file"]; ok {
		draftID, _ = parseDraftID(v.Value)
	}
	if err := f.UpdateContent(ctx, userID, recordID, draftID, name); err != nil {
		return nil, "", fmt.Errorf("update content: %w", err)
	}
	if err := s.deps.Records.TouchRecord(ctx, recordID); err != nil {
		return nil, "", fmt.Errorf("touch record: %w", err)
	}

	content, err := s.deps.Records.GetContent(ctx, fieldID, recordID)
	if err != nil {
		return nil, "", err
	}
	return content, "", nil
}

// Import stores bulk-imported bytes for an existing content value. The read
// is bounded by the field's upload size limit.
func (s *Service) Import(ctx context.Context, fieldID, contentID int64, r io.Reader, filename string) error {
	f, err := s.Field(ctx, fieldID)
	if err != nil {
		return err
	}
	if !f.FileImportSupported() {
		return ErrImportUnsupported
	}
	c, err := s.deps.Records.GetContentByID(ctx, contentID)
	if err != nil {
		return err
	}
	if c.FieldID != fieldID {
		return ErrContentMismatch
	}

	maxBytes := f.UploadOptions().MaxBytes
	if maxBytes > 0 {
		r = io.LimitReader(r, maxBytes+1)
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read import: %w", err)
	}
	if maxBytes > 0 && int64(len(content)) > maxBytes {
		return filestorage.ErrFileTooLarge
	}
	return f.ImportFileValue(ctx, contentID, content, filename)
}

// UploadDraftFile adds an upload to a draft under the field's constraints.
func (s *Service) UploadDraftFile(ctx context.Context, fieldID, userID, draftItemID int64, filename string, r io.Reader) (*filestorage.StoredFile, error) {
	f, err := s.Field(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	return s.deps.Files.AddDraftFile(ctx, userID, draftItemID, filename, r, f.UploadOptions())
}

// LinkDraftFile adds an external repository file to a draft.
func (s *Service) LinkDraftFile(ctx context.Context, fieldID, userID, draftItemID int64, req LinkRequest) (*filestorage.StoredFile, error) {
	f, err := s.Field(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	return s.deps.Files.LinkExternalFile(ctx, userID, draftItemID, req.FileName, req.Repository, req.Reference, f.UploadOptions())
}

func (s *Service) checkRecord(ctx context.Context, f Field, recordID int64) error {
	rec, err := s.deps.Records.GetRecord(ctx, recordID)
	if err != nil {
		return err
	}
	if rec.DataID != f.Definition().DataID {
		return ErrRecordMismatch
	}
	return nil
}

// IsNotFound reports whether err means a missing database, field, record
// or content.
func IsNotFound(err error) bool {
	return errors.Is(err, datafield.ErrDatabaseNotFound) ||
		errors.Is(err, datafield.ErrFieldNotFound) ||
		errors.Is(err, datafield.ErrRecordNotFound) ||
		errors.Is(err, datafield.ErrContentNotFound)
}
