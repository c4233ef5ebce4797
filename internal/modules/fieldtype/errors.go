package fieldtype

import "errors"

var (
	ErrRecordMismatch    = errors.New("record does not belong to the field's database")
	ErrContentMismatch   = errors.New("content does not belong to the field")
	ErrImportUnsupported = errors.New("field type does not support file import")
)
