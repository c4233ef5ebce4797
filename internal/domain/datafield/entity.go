package datafield

import (
	"strconv"
	"time"
)

// Field type names understood by the field registry.
const (
	TypeFile      = "file"
	TypeVideoFile = "videofile"
)

// File storage coordinates of field content.
const (
	Component   = "mod_data"
	ContentArea = "content"
)

// Database is one instance of the generic-record module. Its context id
// scopes every stored file that belongs to its records.
type Database struct {
	ID        int64     `gorm:"column:id;primaryKey" json:"id"`
	ContextID int64     `gorm:"column:context_id;not null;index" json:"context_id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Database) TableName() string { return "data" }

// Field is a field definition of a database.
type Field struct {
	ID          int64  `gorm:"column:id;primaryKey" json:"id"`
	DataID      int64  `gorm:"column:data_id;not null;index" json:"data_id"`
	Type        string `gorm:"column:type;size:32;not null" json:"type"`
	Name        string `gorm:"column:name;not null" json:"name"`
	Description string `gorm:"column:description" json:"description"`
	Required    bool   `gorm:"column:required;not null;default:false" json:"required"`
	// Param3 holds the maximum upload size in bytes for file fields. Zero
	// means the site default.
	Param3 int64 `gorm:"column:param3;not null;default:0" json:"param3"`
}

func (Field) TableName() string { return "data_fields" }

// FormName is the name of the hidden input that carries the draft item id.
func (f *Field) FormName() string {
	return "field_" + strconv.FormatInt(f.ID, 10) + "_file"
}

// Record is one user-submitted entry.
type Record struct {
	ID        int64     `gorm:"column:id;primaryKey" json:"id"`
	DataID    int64     `gorm:"column:data_id;not null;index" json:"data_id"`
	UserID    int64     `gorm:"column:user_id;not null;index" json:"user_id"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Record) TableName() string { return "data_records" }

// Content is the value of one field for one record. File fields store the
// file name in Content and an optional display name in Content1.
type Content struct {
	ID       int64   `gorm:"column:id;primaryKey" json:"id"`
	FieldID  int64   `gorm:"column:field_id;not null;uniqueIndex:ux_data_content_field_record" json:"field_id"`
	RecordID int64   `gorm:"column:record_id;not null;uniqueIndex:ux_data_content_field_record" json:"record_id"`
	Content  *string `gorm:"column:content" json:"content"`
	Content1 *string `gorm:"column:content1" json:"content1"`
}

func (Content) TableName() string { return "data_content" }

// FileName returns the stored file name or "" when none is set.
func (c *Content) FileName() string {
	if c == nil || c.Content == nil {
		return ""
	}
	return *c.Content
}

// DisplayName prefers the alternate display name over the stored file name.
func (c *Content) DisplayName() string {
	if c != nil && c.Content1 != nil && *c.Content1 != "" {
		return *c.Content1
	}
	return c.FileName()
}
