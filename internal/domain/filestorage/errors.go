package filestorage

import "errors"

var (
	ErrFileNotFound      = errors.New("file not found")
	ErrFileExists        = errors.New("file already exists")
	ErrFileTooLarge      = errors.New("file exceeds maximum allowed size")
	ErrInvalidFileType   = errors.New("file type is not allowed")
	ErrInvalidFileName   = errors.New("invalid file name")
	ErrTooManyFiles      = errors.New("maximum number of files reached")
	ErrEmptyFile         = errors.New("file is empty")
	ErrUnknownRepository = errors.New("unknown external repository")
	ErrInvalidReference  = errors.New("invalid external file reference")
	ErrExternalFile      = errors.New("file content is stored externally")
	ErrBlobNotFound      = errors.New("blob not found")
)
