package object_store

import "context"

// ObjectStore is the typed surface over the store protocol. Objects are
// opaque byte blobs addressed by integer ids; the store supports only
// whole-object operations, never partial reads or updates.
//
// Init must succeed before any other operation. Format wipes every
// object on the server. Close ends the session; the underlying
// connection is gone afterwards.
type ObjectStore interface {
	Init(ctx context.Context) error
	Format(ctx context.Context) error

	// Create stores a new object and returns the id and length the
	// store assigned to it. The priority flag requests the reserved
	// file-table object (id 0).
	Create(ctx context.Context, data []byte, flags uint8) (objectID uint32, length uint32, err error)

	// Read fetches a whole object. The length argument is the caller's
	// buffer capacity; the store answers with the object's actual size,
	// which bounds the returned slice.
	Read(ctx context.Context, objectID uint32, length uint32, flags uint8) ([]byte, error)

	// Update replaces an existing object's content in full.
	Update(ctx context.Context, objectID uint32, data []byte, flags uint8) error

	Delete(ctx context.Context, objectID uint32) error
	Close(ctx context.Context) error
}
