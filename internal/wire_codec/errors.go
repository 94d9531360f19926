package wire_codec

import "errors"

var (
	// Field width errors
	ErrOpOutOfRange     = errors.New("op code exceeds 4-bit field")
	ErrLengthOutOfRange = errors.New("payload length exceeds 24-bit field")
	ErrFlagsOutOfRange  = errors.New("flags exceed 3-bit field")
	ErrResultOutOfRange = errors.New("result exceeds 1-bit field")
)
