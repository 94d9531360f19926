package crud

import (
	"errors"
	"testing"

	"github.com/AnishMulay/crudfs/internal/file_service"
)

func TestTableImageRoundTrip(t *testing.T) {
	var table [MaxTotalFiles]fileEntry
	table[0] = fileEntry{filename: "a.txt", objectID: 17, position: 3, length: 9, open: true}
	table[5] = fileEntry{filename: "deep/path/b.bin", objectID: 42, position: 0, length: 1024, open: false}
	table[MaxTotalFiles-1] = fileEntry{filename: "last-slot", objectID: 7, length: 1}

	image := encodeTable(&table)
	if len(image) != TableImageSize {
		t.Fatalf("encodeTable() image size = %d, want %d", len(image), TableImageSize)
	}

	var decoded [MaxTotalFiles]fileEntry
	if err := decodeTable(image, &decoded); err != nil {
		t.Fatalf("decodeTable() error = %v", err)
	}
	if decoded != table {
		t.Errorf("decoded table differs from original")
	}
}

func TestTableImageRecordLayout(t *testing.T) {
	var table [MaxTotalFiles]fileEntry
	table[1] = fileEntry{filename: "x", objectID: 0x01020304, position: 0x0A0B0C0D, length: 0x11223344, open: true}

	image := encodeTable(&table)
	off := 1 * recordSize

	if image[off] != 'x' || image[off+1] != 0 {
		t.Errorf("filename field not zero-terminated at record start")
	}

	// Big-endian fields in fixed positions, the cross-implementation
	// contract for the priority object.
	wantObjectID := []byte{0x01, 0x02, 0x03, 0x04}
	for i, b := range wantObjectID {
		if image[off+MaxPathLength+i] != b {
			t.Fatalf("objectID byte %d = %#x, want %#x", i, image[off+MaxPathLength+i], b)
		}
	}
	if image[off+MaxPathLength+12] != 1 {
		t.Errorf("open byte = %d, want 1", image[off+MaxPathLength+12])
	}
}

func TestDecodeTableRejectsWrongSize(t *testing.T) {
	var table [MaxTotalFiles]fileEntry

	err := decodeTable(make([]byte, TableImageSize-1), &table)
	if !errors.Is(err, file_service.ErrBadTableImage) {
		t.Errorf("decodeTable() error = %v, want %v", err, file_service.ErrBadTableImage)
	}
}
