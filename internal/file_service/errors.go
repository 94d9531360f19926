package file_service

import "errors"

var (
	// Handle validation errors
	ErrInvalidHandle = errors.New("file handle out of range")
	ErrFileNotOpen   = errors.New("file is not open")

	// Argument validation errors
	ErrEmptyPath      = errors.New("path is empty")
	ErrPathTooLong    = errors.New("path exceeds maximum length")
	ErrSeekOutOfRange = errors.New("seek target beyond end of file")
	ErrFileTooLarge   = errors.New("write would exceed maximum object size")

	// Table errors
	ErrFileTableFull = errors.New("no free slot in file table")
	ErrBadTableImage = errors.New("persisted file table image has wrong size")
)
