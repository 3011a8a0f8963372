package domain

import "errors"

var (
	ErrNotFound             = errors.New("resource not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrDuplicateEmail       = errors.New("email already registered")
	ErrUnsupportedFileType  = errors.New("unsupported file type")
	ErrFileTooLarge         = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed         = errors.New("file upload to storage failed")
	ErrEmptyFile            = errors.New("file is empty")
	ErrInvalidTextEncoding  = errors.New("file is not valid UTF-8 text")
	ErrQueueSaturated       = errors.New("processing queue is full")
	ErrDocumentNotProcessed = errors.New("document has not been processed yet")
)
