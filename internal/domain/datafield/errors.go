package datafield

import "errors"

var (
	ErrDatabaseNotFound = errors.New("database not found")
	ErrFieldNotFound    = errors.New("field not found")
	ErrRecordNotFound   = errors.New("record not found")
	ErrContentNotFound  = errors.New("content not found")
)
