package crud

import (
	"bytes"
	"encoding/binary"

	"github.com/AnishMulay/crudfs/internal/file_service"
)

const (
	// MaxTotalFiles is the fixed capacity of the file table.
	MaxTotalFiles = 1024

	// MaxPathLength is the size of the filename field in a persisted
	// record, including the terminating zero byte.
	MaxPathLength = 128

	// recordSize is the on-store size of one table record: the filename
	// field, three big-endian uint32s (object id, position, length), the
	// open byte, and three bytes of padding.
	recordSize = MaxPathLength + 4 + 4 + 4 + 1 + 3

	// TableImageSize is the exact byte size of the priority object. The
	// record layout and byte order are a bit-exact contract shared with
	// every other implementation that mounts the same store.
	TableImageSize = recordSize * MaxTotalFiles
)

type fileEntry struct {
	filename string
	objectID uint32
	position uint32
	length   uint32
	open     bool
}

func encodeTable(table *[MaxTotalFiles]fileEntry) []byte {
	image := make([]byte, TableImageSize)
	for i := range table {
		off := i * recordSize
		copy(image[off:off+MaxPathLength], table[i].filename)
		binary.BigEndian.PutUint32(image[off+MaxPathLength:], table[i].objectID)
		binary.BigEndian.PutUint32(image[off+MaxPathLength+4:], table[i].position)
		binary.BigEndian.PutUint32(image[off+MaxPathLength+8:], table[i].length)
		if table[i].open {
			image[off+MaxPathLength+12] = 1
		}
	}
	return image
}

func decodeTable(image []byte, table *[MaxTotalFiles]fileEntry) error {
	if len(image) != TableImageSize {
		return file_service.ErrBadTableImage
	}

	for i := range table {
		off := i * recordSize
		name := image[off : off+MaxPathLength]
		if idx := bytes.IndexByte(name, 0); idx >= 0 {
			name = name[:idx]
		}
		table[i] = fileEntry{
			filename: string(name),
			objectID: binary.BigEndian.Uint32(image[off+MaxPathLength:]),
			position: binary.BigEndian.Uint32(image[off+MaxPathLength+4:]),
			length:   binary.BigEndian.Uint32(image[off+MaxPathLength+8:]),
			open:     image[off+MaxPathLength+12] != 0,
		}
	}
	return nil
}
