package object_store

import "errors"

var (
	// Protocol errors
	ErrRequestFailed      = errors.New("object store reported failure")
	ErrUnexpectedResponse = errors.New("response op does not match request op")
	ErrObjectTooLarge     = errors.New("object exceeds maximum object size")
)
