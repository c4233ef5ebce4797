package fieldtype

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"videofield/internal/domain/datafield"
	"videofield/internal/domain/filestorage"
)

// Widget return types: uploaded files and links to external repositories.
const (
	returnTypeInternal       = "internal"
	returnTypeControlledLink = "controlled_link"
)

// FileField is the "file" field type: one file per record, any type,
// rendered as an icon and a link.
type FileField struct {
	def      *datafield.Field
	data     *datafield.Database
	deps     Deps
	accepted []string
}

func NewFileField(def *datafield.Field, data *datafield.Database, deps Deps) *FileField {
	return &FileField{def: def, data: data, deps: deps, accepted: []string{"*"}}
}

func (f *FileField) Definition() *datafield.Field { return f.def }

// ContentArea is the permanent file area of one content value.
func (f *FileField) ContentArea(contentID int64) filestorage.AreaKey {
	return filestorage.AreaKey{
		ContextID: f.data.ContextID,
		Component: datafield.Component,
		FileArea:  datafield.ContentArea,
		ItemID:    contentID,
	}
}

func (f *FileField) UploadOptions() filestorage.UploadOptions {
	maxBytes := f.def.Param3
	if maxBytes <= 0 {
		maxBytes = f.deps.Settings.DefaultMaxBytes
	}
	return filestorage.UploadOptions{
		MaxBytes:      maxBytes,
		MaxFiles:      1,
		AcceptedTypes: f.accepted,
	}
}

func (f *FileField) DisplayAddField(ctx context.Context, userID, recordID int64, formData url.Values) (template.HTML, error) {
	itemID, err := f.draftItemID(ctx, userID, recordID, formData)
	if err != nil {
		return "", err
	}

	base := strings.TrimRight(f.deps.Settings.PublicBaseURL, "/")
	opts := f.UploadOptions()
	fieldBase := fmt.Sprintf("%s/api/v1/fields/%d/drafts/%d", base, f.def.ID, itemID)

	return render("add", addView{
		Description:  f.def.Description,
		Name:         f.def.Name,
		Required:     f.def.Required,
		RequiredIcon: iconView{Alt: "Required", Src: pixURL(base, "req")},
		InputName:    f.def.FormName(),
		ItemID:       itemID,
		Widget: widgetView{
			ItemID:        itemID,
			MaxBytes:      opts.MaxBytes,
			MaxFiles:      opts.MaxFiles,
			AcceptedTypes: strings.Join(opts.AcceptedTypes, ","),
			ReturnTypes:   returnTypeInternal + "," + returnTypeControlledLink,
			UploadURL:     fieldBase + "/files",
			LinkURL:       fieldBase + "/links",
			ListURL:       fmt.Sprintf("%s/api/v1/drafts/%d/files", base, itemID),
		},
	})
}

// draftItemID picks the draft the form edits: the one of a redisplayed
// submission, a draft prepared from the record's stored file, or a new one.
func (f *FileField) draftItemID(ctx context.Context, userID, recordID int64, formData url.Values) (int64, error) {
	if formData != nil {
		id, _ := strconv.ParseInt(formData.Get(f.def.FormName()), 10, 64)
		return id, nil
	}
	if recordID != 0 {
		content, err := f.deps.Records.FindOrCreateContent(ctx, f.def.ID, recordID)
		if err != nil {
			return 0, fmt.Errorf("find content: %w", err)
		}
		return f.deps.Files.PrepareDraftArea(ctx, userID, 0, f.ContentArea(content.ID))
	}
	return f.deps.Files.UnusedDraftItemID(ctx)
}

func (f *FileField) DisplayBrowseField(ctx context.Context, recordID int64, preview bool) (template.HTML, error) {
	content, file, fileURL, err := f.browseFile(ctx, recordID, preview)
	if err != nil || file == nil {
		return "", err
	}
	name := content.DisplayName()
	if preview {
		name = content.FileName()
	}
	return render("link", linkView{
		Icon: fileIcon(f.deps.Settings.PublicBaseURL, file),
		URL:  fileURL,
		Name: name,
	})
}

// browseFile loads what the browse view shows. A nil file with a nil error
// means there is nothing to render.
func (f *FileField) browseFile(ctx context.Context, recordID int64, preview bool) (*datafield.Content, *filestorage.StoredFile, string, error) {
	content, err := f.deps.Records.GetContent(ctx, f.def.ID, recordID)
	if errors.Is(err, datafield.ErrContentNotFound) {
		return nil, nil, "", nil
	}
	if err != nil {
		return nil, nil, "", err
	}
	if content.FileName() == "" {
		return nil, nil, "", nil
	}

	if preview {
		return content, &filestorage.StoredFile{FileName: content.FileName(), MimeType: "text/csv"}, "", nil
	}

	file, err := f.deps.Files.GetFile(ctx, filestorage.FileKey{
		AreaKey:  f.ContentArea(content.ID),
		FilePath: "/",
		FileName: content.FileName(),
	})
	if err != nil {
		if !errors.Is(err, filestorage.ErrFileNotFound) {
			f.deps.Log.Warn("resolve browse file",
				zap.Int64("field_id", f.def.ID),
				zap.Int64("record_id", recordID),
				zap.Error(err))
		}
		return nil, nil, "", nil
	}
	return content, file, f.deps.Files.URL(file), nil
}

func (f *FileField) Validate(map[string]SubmittedValue) string { return "" }

// UpdateContent saves the draft into the content's file area and stores the
// resulting file name. Blobs the area no longer uses are released after the
// transaction commits.
func (f *FileField) UpdateContent(ctx context.Context, userID, recordID, draftItemID int64, _ string) error {
	var released []string
	err := f.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		records := f.deps.Records.WithTx(tx)
		files := f.deps.Files.WithTx(tx)

		content, err := records.FindOrCreateContent(ctx, f.def.ID, recordID)
		if err != nil {
			return fmt.Errorf("find content: %w", err)
		}

		area := f.ContentArea(content.ID)
		hashes, err := files.SaveDraftAreaFiles(ctx, userID, draftItemID, area)
		if err != nil {
			return fmt.Errorf("save draft: %w", err)
		}
		released = hashes

		stored, err := files.GetAreaFiles(ctx, area)
		if err != nil {
			return fmt.Errorf("list content files: %w", err)
		}

		content.Content = nil
		if len(stored) > 0 {
			name := stored[0].FileName
			content.Content = &name
		}
		if len(stored) > 1 {
			f.deps.Log.Warn("more than one file in field content area",
				zap.Int64("data_id", f.data.ID),
				zap.Int64("field_id", f.def.ID),
				zap.Int64("record_id", recordID),
				zap.Int64("content_id", content.ID),
				zap.Int("files", len(stored)))
		}
		return records.UpdateContent(ctx, content)
	})
	if err != nil {
		return err
	}
	f.deps.Files.ReleaseBlobs(ctx, released...)
	return nil
}

func (f *FileField) FileImportSupported() bool { return true }

// ImportFileValue stores imported bytes directly in the content's area.
// The content row itself is left to the importer.
func (f *FileField) ImportFileValue(ctx context.Context, contentID int64, content []byte, filename string) error {
	_, err := f.deps.Files.CreateFileFromBytes(ctx, filestorage.FileKey{
		AreaKey:  f.ContentArea(contentID),
		FilePath: "/",
		FileName: filename,
	}, 0, content)
	return err
}
