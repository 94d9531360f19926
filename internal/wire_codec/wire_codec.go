package wire_codec

import "encoding/binary"

// OpCode is the 4-bit operation code carried in every request and
// response word. The numeric values are part of the client/store
// contract and must match the server.
type OpCode uint8

const (
	OpInit OpCode = iota
	OpFormat
	OpCreate
	OpRead
	OpUpdate
	OpDelete
	OpClose
)

func (op OpCode) String() string {
	switch op {
	case OpInit:
		return "INIT"
	case OpFormat:
		return "FORMAT"
	case OpCreate:
		return "CREATE"
	case OpRead:
		return "READ"
	case OpUpdate:
		return "UPDATE"
	case OpDelete:
		return "DELETE"
	case OpClose:
		return "CLOSE"
	default:
		return "UNKNOWN"
	}
}

const (
	// WordSize is the size of one request or response frame on the wire.
	WordSize = 8

	// MaxLength is the largest payload length the 24-bit length field
	// can carry.
	MaxLength = 1<<24 - 1

	// MaxObjectSize is the largest object the store accepts. It must fit
	// the 24-bit length field.
	MaxObjectSize = 1 << 20

	maxOp     = 1<<4 - 1
	maxFlags  = 1<<3 - 1
	maxResult = 1
)

const (
	NullFlag     uint8 = 0
	PriorityFlag uint8 = 1

	ResultSuccess uint8 = 0
	ResultFailure uint8 = 1

	// NoObject is the object id of a file that has never been written.
	NoObject uint32 = 0

	// PriorityObjectID is the reserved object holding the file table.
	// Ordinary files never use id 0; the store assigns their ids on
	// CREATE.
	PriorityObjectID uint32 = 0
)

// Message is the decoded form of one 64-bit protocol word.
//
// Bit layout (network byte order on the wire):
//
//	63-32  object id   (32 bits)
//	31-28  op code     (4 bits)
//	27-4   length      (24 bits)
//	3-1    flags       (3 bits)
//	0      result      (1 bit, 0=success 1=failure)
type Message struct {
	ObjectID uint32
	Op       OpCode
	Length   uint32
	Flags    uint8
	Result   uint8
}

// Pack assembles the message into a single word. Fields are validated
// against their bit widths; nothing is silently truncated.
func (m Message) Pack() (uint64, error) {
	if m.Op > maxOp {
		return 0, ErrOpOutOfRange
	}
	if m.Length > MaxLength {
		return 0, ErrLengthOutOfRange
	}
	if m.Flags > maxFlags {
		return 0, ErrFlagsOutOfRange
	}
	if m.Result > maxResult {
		return 0, ErrResultOutOfRange
	}

	word := uint64(m.ObjectID) << 32
	word |= uint64(m.Op) << 28
	word |= uint64(m.Length) << 4
	word |= uint64(m.Flags) << 1
	word |= uint64(m.Result)
	return word, nil
}

// Unpack extracts the five fields from a word. It is total: every
// 64-bit value decodes to some message.
func Unpack(word uint64) Message {
	return Message{
		ObjectID: uint32(word >> 32),
		Op:       OpCode(word >> 28 & maxOp),
		Length:   uint32(word >> 4 & MaxLength),
		Flags:    uint8(word >> 1 & maxFlags),
		Result:   uint8(word & maxResult),
	}
}

// EncodeWord serializes a packed word into its big-endian wire frame.
func EncodeWord(word uint64) []byte {
	frame := make([]byte, WordSize)
	binary.BigEndian.PutUint64(frame, word)
	return frame
}

// DecodeWord reads a packed word back out of a wire frame.
func DecodeWord(frame []byte) uint64 {
	return binary.BigEndian.Uint64(frame)
}
