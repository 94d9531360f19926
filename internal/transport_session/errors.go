package transport_session

import "errors"

var (
	// Connection errors
	ErrConnectionFailed = errors.New("failed to connect to object store")

	// Exchange errors
	ErrRequestPackFailed   = errors.New("failed to pack request word")
	ErrRequestSendFailed   = errors.New("failed to send request")
	ErrPayloadSendFailed   = errors.New("failed to send request payload")
	ErrResponseReadFailed  = errors.New("failed to read response word")
	ErrPayloadReadFailed   = errors.New("failed to read response payload")
	ErrPayloadSizeMismatch = errors.New("payload size does not match request length")
)
