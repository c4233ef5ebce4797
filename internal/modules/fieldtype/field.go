package fieldtype

import (
	"context"
	"errors"
	"html/template"
	"net/url"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"videofield/internal/domain/datafield"
	"videofield/internal/domain/filestorage"
)

var ErrUnsupportedFieldType = errors.New("unsupported field type")

// SubmittedValue is one sub-value of a submitted field, e.g. the "file"
// entry carrying the draft item id.
type SubmittedValue struct {
	FieldID int64
	Value   string
}

// Field is the contract every field type implements for the record module.
type Field interface {
	Definition() *datafield.Field

	// DisplayAddField renders the add/edit form markup. formData holds the
	// previous submission when the form is redisplayed.
	DisplayAddField(ctx context.Context, userID, recordID int64, formData url.Values) (template.HTML, error)
	// DisplayBrowseField renders the value for list and single views. It
	// returns "" when the record has nothing to show.
	DisplayBrowseField(ctx context.Context, recordID int64, preview bool) (template.HTML, error)
	// Validate returns a message for the user, or "" when values are fine.
	Validate(values map[string]SubmittedValue) string
	// UpdateContent stores the submitted draft as the record's value.
	// name is an optional display name some field types ignore.
	UpdateContent(ctx context.Context, userID, recordID, draftItemID int64, name string) error

	FileImportSupported() bool
	ImportFileValue(ctx context.Context, contentID int64, content []byte, filename string) error

	// UploadOptions are the constraints of the field's upload widget.
	UploadOptions() filestorage.UploadOptions
}

// Settings are site-wide defaults shared by every field instance.
type Settings struct {
	VideoAcceptedTypes []string
	DefaultMaxBytes    int64
	PublicBaseURL      string
}

// Deps are the host services field types delegate to.
type Deps struct {
	DB       *gorm.DB
	Records  datafield.Repository
	Files    *filestorage.Service
	Log      *zap.Logger
	Settings Settings
}

type Constructor func(def *datafield.Field, data *datafield.Database, deps Deps) Field

// Registry maps field type names to their constructors.
type Registry struct {
	types map[string]Constructor
}

// NewRegistry returns a registry with the file and videofile types.
func NewRegistry() *Registry {
	r := &Registry{types: make(map[string]Constructor)}
	r.Register(datafield.TypeFile, func(def *datafield.Field, data *datafield.Database, deps Deps) Field {
		return NewFileField(def, data, deps)
	})
	r.Register(datafield.TypeVideoFile, func(def *datafield.Field, data *datafield.Database, deps Deps) Field {
		return NewVideoField(def, data, deps)
	})
	return r
}

func (r *Registry) Register(typeName string, ctor Constructor) {
	r.types[typeName] = ctor
}

// New builds the field type implementation for a field definition.
func (r *Registry) New(def *datafield.Field, data *datafield.Database, deps Deps) (Field, error) {
	ctor, ok := r.types[def.Type]
	if !ok {
		return nil, ErrUnsupportedFieldType
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	return ctor(def, data, deps), nil
}
