package file_service

import "context"

// EntryInfo is a read-only snapshot of one file-table slot, for tooling
// and diagnostics.
type EntryInfo struct {
	Handle   int
	Path     string
	ObjectID uint32
	Length   uint32
	Position uint32
	Open     bool
}

// FileService is a POSIX-like file surface backed by a remote object
// store. Handles are slot indices into a fixed-capacity file table; a
// closed slot with a non-empty name still exists and is reused by a
// later Open of the same path.
type FileService interface {
	// Format re-initializes the store, wiping all objects, and writes a
	// fresh empty file table as the priority object.
	Format(ctx context.Context) error

	// Mount replaces the in-memory file table with the one persisted in
	// the priority object.
	Mount(ctx context.Context) error

	// Unmount persists the in-memory file table to the priority object
	// and closes the store session.
	Unmount(ctx context.Context) error

	// Open returns a handle for path, reusing an existing slot (the
	// cursor rewinds to 0) or claiming the first free one.
	Open(ctx context.Context, path string) (int, error)

	// Close marks the handle closed. The backing object is untouched;
	// object lifetime is independent of open/close.
	Close(fd int) error

	// Seek moves the cursor to loc, which must satisfy 0 <= loc <= length.
	Seek(fd int, loc uint32) error

	// Read returns up to n bytes starting at the cursor and advances it
	// by the number of bytes returned. A short result at end of content
	// is the defined behavior, not an error.
	Read(ctx context.Context, fd int, n int) ([]byte, error)

	// Write stores len(data) bytes at the cursor, growing the file if
	// the write extends past the current length. There is no short
	// write: either all bytes are accepted or an error is returned.
	Write(ctx context.Context, fd int, data []byte) (int, error)
}
