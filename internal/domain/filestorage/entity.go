package filestorage

import (
	"encoding/json"
	"time"
)

// Draft areas live in the uploading user's context under this component.
const (
	DraftComponent = "user"
	DraftFileArea  = "draft"
)

// RepositoryGoogleDocs identifies files linked from Google Drive.
const RepositoryGoogleDocs = "googledocs"

// StoredFile is the metadata row of one file. Local files point at a blob by
// content hash; external files carry a repository type and an opaque
// reference instead.
type StoredFile struct {
	ID             int64     `gorm:"column:id;primaryKey" json:"id"`
	ContextID      int64     `gorm:"column:context_id;not null;uniqueIndex:ux_files_path,priority:1" json:"context_id"`
	Component      string    `gorm:"column:component;size:100;not null;uniqueIndex:ux_files_path,priority:2" json:"component"`
	FileArea       string    `gorm:"column:file_area;size:50;not null;uniqueIndex:ux_files_path,priority:3" json:"file_area"`
	ItemID         int64     `gorm:"column:item_id;not null;uniqueIndex:ux_files_path,priority:4" json:"item_id"`
	FilePath       string    `gorm:"column:file_path;size:255;not null;uniqueIndex:ux_files_path,priority:5" json:"file_path"`
	FileName       string    `gorm:"column:file_name;size:255;not null;uniqueIndex:ux_files_path,priority:6" json:"file_name"`
	ContentHash    string    `gorm:"column:content_hash;size:64;index" json:"-"`
	MimeType       string    `gorm:"column:mime_type;size:100" json:"mime_type"`
	FileSize       int64     `gorm:"column:file_size" json:"file_size"`
	UserID         int64     `gorm:"column:user_id;index" json:"user_id"`
	RepositoryType string    `gorm:"column:repository_type;size:50" json:"repository_type,omitempty"`
	Reference      string    `gorm:"column:reference;type:text" json:"-"`
	CreatedAt      time.Time `gorm:"column:created_at;index" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (StoredFile) TableName() string { return "files" }

// IsExternal reports whether the file bytes live outside this storage.
func (f *StoredFile) IsExternal() bool {
	return f.RepositoryType != ""
}

func (f *StoredFile) Area() AreaKey {
	return AreaKey{ContextID: f.ContextID, Component: f.Component, FileArea: f.FileArea, ItemID: f.ItemID}
}

func (f *StoredFile) Key() FileKey {
	return FileKey{AreaKey: f.Area(), FilePath: f.FilePath, FileName: f.FileName}
}

// copyTo returns a new unsaved row with the same content placed in area.
func (f *StoredFile) copyTo(area AreaKey) *StoredFile {
	return &StoredFile{
		ContextID:      area.ContextID,
		Component:      area.Component,
		FileArea:       area.FileArea,
		ItemID:         area.ItemID,
		FilePath:       f.FilePath,
		FileName:       f.FileName,
		ContentHash:    f.ContentHash,
		MimeType:       f.MimeType,
		FileSize:       f.FileSize,
		UserID:         f.UserID,
		RepositoryType: f.RepositoryType,
		Reference:      f.Reference,
	}
}

func (f *StoredFile) sameContent(o *StoredFile) bool {
	return f.ContentHash == o.ContentHash &&
		f.RepositoryType == o.RepositoryType &&
		f.Reference == o.Reference &&
		f.MimeType == o.MimeType
}

// AreaKey identifies a file area: every file of one item of one component.
type AreaKey struct {
	ContextID int64
	Component string
	FileArea  string
	ItemID    int64
}

// FileKey identifies one file inside an area.
type FileKey struct {
	AreaKey
	FilePath string
	FileName string
}

// DraftArea is the user-scoped holding area for a draft item id.
func DraftArea(userID, draftItemID int64) AreaKey {
	return AreaKey{ContextID: userID, Component: DraftComponent, FileArea: DraftFileArea, ItemID: draftItemID}
}

// ExternalReference is the reference payload of Google Drive links.
type ExternalReference struct {
	ID string `json:"id"`
}

// ParseReference decodes the JSON reference of an external file.
func ParseReference(raw string) (*ExternalReference, error) {
	var ref ExternalReference
	if err := json.Unmarshal([]byte(raw), &ref); err != nil {
		return nil, err
	}
	return &ref, nil
}

// UploadOptions are the constraints the upload widget enforces on a draft.
type UploadOptions struct {
	MaxBytes      int64
	MaxFiles      int
	AcceptedTypes []string
}
