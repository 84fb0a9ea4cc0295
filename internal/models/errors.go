package models

import "errors"

// Sentinel errors handlers branch on
var (
	ErrNotFound           = errors.New("not found")
	ErrSlugTaken          = errors.New("slug already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrImportFailed       = errors.New("import failed")
)
