package crud

import (
	"context"

	"github.com/AnishMulay/crudfs/internal/file_service"
	"github.com/AnishMulay/crudfs/internal/log_service"
	"github.com/AnishMulay/crudfs/internal/object_store"
	"github.com/AnishMulay/crudfs/internal/wire_codec"
)

// CRUDFileService emulates file semantics on top of whole-object
// create/read/update/delete. All state lives in one fixed-capacity file
// table owned by this value; the table and the underlying session are
// not synchronized, so concurrent callers must serialize access.
type CRUDFileService struct {
	os object_store.ObjectStore
	ls log_service.LogService

	table       [MaxTotalFiles]fileEntry
	initialized bool
}

func NewCRUDFileService(os object_store.ObjectStore, ls log_service.LogService) *CRUDFileService {
	return &CRUDFileService{
		os: os,
		ls: ls,
	}
}

func (fs *CRUDFileService) ensureInitialized(ctx context.Context) error {
	if fs.initialized {
		return nil
	}
	if err := fs.os.Init(ctx); err != nil {
		return err
	}
	fs.initialized = true
	return nil
}

func (fs *CRUDFileService) resetTable() {
	for i := range fs.table {
		fs.table[i] = fileEntry{objectID: wire_codec.NoObject}
	}
}

func (fs *CRUDFileService) Format(ctx context.Context) error {
	fs.ls.Info(log_service.LogEvent{Message: "Formatting file system"})

	if err := fs.ensureInitialized(ctx); err != nil {
		return err
	}
	if err := fs.os.Format(ctx); err != nil {
		return err
	}

	fs.resetTable()

	// FORMAT wiped the priority object along with everything else, so
	// the empty table is created fresh rather than updated.
	if _, _, err := fs.os.Create(ctx, encodeTable(&fs.table), wire_codec.PriorityFlag); err != nil {
		return err
	}

	fs.ls.Info(log_service.LogEvent{Message: "Format complete"})
	return nil
}

func (fs *CRUDFileService) Mount(ctx context.Context) error {
	fs.ls.Info(log_service.LogEvent{Message: "Mounting file system"})

	if err := fs.ensureInitialized(ctx); err != nil {
		return err
	}

	image, err := fs.os.Read(ctx, wire_codec.PriorityObjectID, TableImageSize, wire_codec.PriorityFlag)
	if err != nil {
		return err
	}
	if err := decodeTable(image, &fs.table); err != nil {
		fs.ls.Error(log_service.LogEvent{
			Message:  "Priority object does not hold a valid table image",
			Metadata: map[string]any{"size": len(image)},
		})
		return err
	}

	fs.ls.Info(log_service.LogEvent{Message: "Mount complete"})
	return nil
}

func (fs *CRUDFileService) Unmount(ctx context.Context) error {
	fs.ls.Info(log_service.LogEvent{Message: "Unmounting file system"})

	if err := fs.os.Update(ctx, wire_codec.PriorityObjectID, encodeTable(&fs.table), wire_codec.PriorityFlag); err != nil {
		return err
	}
	if err := fs.os.Close(ctx); err != nil {
		return err
	}

	fs.ls.Info(log_service.LogEvent{Message: "Unmount complete"})
	return nil
}

func (fs *CRUDFileService) Open(ctx context.Context, path string) (int, error) {
	if path == "" {
		return -1, file_service.ErrEmptyPath
	}
	if len(path) >= MaxPathLength {
		return -1, file_service.ErrPathTooLong
	}

	if err := fs.ensureInitialized(ctx); err != nil {
		return -1, err
	}

	// Reuse an existing slot, open or closed; re-opening rewinds.
	for i := range fs.table {
		if fs.table[i].filename == path {
			fs.table[i].open = true
			fs.table[i].position = 0

			fs.ls.Info(log_service.LogEvent{
				Message:  "Opened existing file",
				Metadata: map[string]any{"path": path, "fd": i, "length": fs.table[i].length},
			})
			return i, nil
		}
	}

	for i := range fs.table {
		if fs.table[i].filename == "" {
			fs.table[i] = fileEntry{
				filename: path,
				objectID: wire_codec.NoObject,
				open:     true,
			}

			fs.ls.Info(log_service.LogEvent{
				Message:  "Opened new file",
				Metadata: map[string]any{"path": path, "fd": i},
			})
			return i, nil
		}
	}

	fs.ls.Warn(log_service.LogEvent{
		Message:  "File table full",
		Metadata: map[string]any{"path": path},
	})
	return -1, file_service.ErrFileTableFull
}

func (fs *CRUDFileService) validateHandle(fd int) error {
	if fd < 0 || fd >= MaxTotalFiles {
		return file_service.ErrInvalidHandle
	}
	if !fs.table[fd].open {
		return file_service.ErrFileNotOpen
	}
	return nil
}

func (fs *CRUDFileService) Close(fd int) error {
	if err := fs.validateHandle(fd); err != nil {
		return err
	}

	fs.table[fd].open = false

	fs.ls.Info(log_service.LogEvent{
		Message:  "Closed file",
		Metadata: map[string]any{"path": fs.table[fd].filename, "fd": fd},
	})
	return nil
}

func (fs *CRUDFileService) Seek(fd int, loc uint32) error {
	if err := fs.validateHandle(fd); err != nil {
		return err
	}
	if loc > fs.table[fd].length {
		return file_service.ErrSeekOutOfRange
	}

	fs.table[fd].position = loc
	return nil
}

func (fs *CRUDFileService) Read(ctx context.Context, fd int, n int) ([]byte, error) {
	if err := fs.validateHandle(fd); err != nil {
		return nil, err
	}

	entry := &fs.table[fd]
	if entry.length == 0 || n < 1 {
		return nil, nil
	}

	// The store only does whole-object reads: fetch everything, slice
	// locally. The response's declared length is the object's actual
	// size and is adopted as the file length (store-of-record).
	data, err := fs.os.Read(ctx, entry.objectID, wire_codec.MaxObjectSize, wire_codec.NullFlag)
	if err != nil {
		return nil, err
	}
	entry.length = uint32(len(data))

	if entry.position >= entry.length {
		return nil, nil
	}

	count := entry.length - entry.position
	if uint32(n) < count {
		count = uint32(n)
	}

	out := make([]byte, count)
	copy(out, data[entry.position:entry.position+count])
	entry.position += count

	fs.ls.Debug(log_service.LogEvent{
		Message:  "Read from file",
		Metadata: map[string]any{"fd": fd, "requested": n, "returned": count, "position": entry.position},
	})
	return out, nil
}

func (fs *CRUDFileService) Write(ctx context.Context, fd int, data []byte) (int, error) {
	if err := fs.validateHandle(fd); err != nil {
		return -1, err
	}
	if len(data) == 0 {
		return 0, nil
	}

	entry := &fs.table[fd]
	count := uint32(len(data))
	if uint64(entry.position)+uint64(len(data)) > wire_codec.MaxObjectSize {
		return -1, file_service.ErrFileTooLarge
	}

	switch {
	// No backing object yet: the first write creates it.
	case entry.objectID == wire_codec.NoObject:
		objectID, length, err := fs.os.Create(ctx, data, wire_codec.NullFlag)
		if err != nil {
			return -1, err
		}
		entry.objectID = objectID
		entry.length = length
		entry.position = count

	// The write fits inside the current object: read-modify-update.
	case entry.position+count <= entry.length:
		content, err := fs.os.Read(ctx, entry.objectID, wire_codec.MaxObjectSize, wire_codec.NullFlag)
		if err != nil {
			return -1, err
		}
		copy(content[entry.position:], data)
		if err := fs.os.Update(ctx, entry.objectID, content, wire_codec.NullFlag); err != nil {
			return -1, err
		}
		entry.position += count

	// The write grows the object. Objects cannot be resized in place,
	// so the old one is read, deleted, and recreated at the new length.
	// A failure between DELETE and CREATE leaves this entry pointing at
	// a deleted object; callers recover by re-mounting, not by assuming
	// rollback.
	default:
		newLength := entry.position + count
		content := make([]byte, newLength)

		old, err := fs.os.Read(ctx, entry.objectID, wire_codec.MaxObjectSize, wire_codec.NullFlag)
		if err != nil {
			return -1, err
		}
		copy(content, old)
		copy(content[entry.position:], data)

		if err := fs.os.Delete(ctx, entry.objectID); err != nil {
			return -1, err
		}
		objectID, length, err := fs.os.Create(ctx, content, wire_codec.NullFlag)
		if err != nil {
			return -1, err
		}
		entry.objectID = objectID
		entry.length = length
		entry.position = newLength
	}

	fs.ls.Debug(log_service.LogEvent{
		Message:  "Wrote to file",
		Metadata: map[string]any{"fd": fd, "count": count, "position": entry.position, "length": entry.length},
	})
	return len(data), nil
}

// Entries returns a snapshot of the non-empty file-table slots.
func (fs *CRUDFileService) Entries() []file_service.EntryInfo {
	var entries []file_service.EntryInfo
	for i := range fs.table {
		if fs.table[i].filename == "" {
			continue
		}
		entries = append(entries, file_service.EntryInfo{
			Handle:   i,
			Path:     fs.table[i].filename,
			ObjectID: fs.table[i].objectID,
			Length:   fs.table[i].length,
			Position: fs.table[i].position,
			Open:     fs.table[i].open,
		})
	}
	return entries
}

var _ file_service.FileService = (*CRUDFileService)(nil)
