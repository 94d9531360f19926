package crud

import (
	"context"

	"github.com/AnishMulay/crudfs/internal/log_service"
	"github.com/AnishMulay/crudfs/internal/object_store"
	"github.com/AnishMulay/crudfs/internal/transport_session"
	"github.com/AnishMulay/crudfs/internal/wire_codec"
)

// CRUDObjectStore turns each store verb into one exchange on the
// session: build the request word, send it, check the response.
type CRUDObjectStore struct {
	session transport_session.Session
	ls      log_service.LogService
}

func NewCRUDObjectStore(session transport_session.Session, ls log_service.LogService) *CRUDObjectStore {
	return &CRUDObjectStore{
		session: session,
		ls:      ls,
	}
}

// exchange runs one round trip and applies the checks every operation
// shares: the response must echo the request op, and a set result bit
// means the store rejected the request. On failure the other response
// fields are not meaningful.
func (os *CRUDObjectStore) exchange(ctx context.Context, request wire_codec.Message, payload []byte) (wire_codec.Message, []byte, error) {
	response, inbound, err := os.session.Exchange(ctx, request, payload)
	if err != nil {
		return wire_codec.Message{}, nil, err
	}

	if response.Op != request.Op {
		os.ls.Error(log_service.LogEvent{
			Message: "Unexpected response op",
			Metadata: map[string]any{
				"requestOp":  request.Op.String(),
				"responseOp": response.Op.String(),
			},
		})
		return wire_codec.Message{}, nil, object_store.ErrUnexpectedResponse
	}

	if response.Result != wire_codec.ResultSuccess {
		os.ls.Error(log_service.LogEvent{
			Message:  "Object store rejected request",
			Metadata: map[string]any{"op": request.Op.String(), "objectID": request.ObjectID},
		})
		return wire_codec.Message{}, nil, object_store.ErrRequestFailed
	}

	return response, inbound, nil
}

func (os *CRUDObjectStore) Init(ctx context.Context) error {
	os.ls.Info(log_service.LogEvent{Message: "Initializing object store"})

	_, _, err := os.exchange(ctx, wire_codec.Message{Op: wire_codec.OpInit}, nil)
	return err
}

func (os *CRUDObjectStore) Format(ctx context.Context) error {
	os.ls.Info(log_service.LogEvent{Message: "Formatting object store"})

	_, _, err := os.exchange(ctx, wire_codec.Message{Op: wire_codec.OpFormat}, nil)
	return err
}

func (os *CRUDObjectStore) Create(ctx context.Context, data []byte, flags uint8) (uint32, uint32, error) {
	if len(data) > wire_codec.MaxObjectSize {
		return 0, 0, object_store.ErrObjectTooLarge
	}

	os.ls.Debug(log_service.LogEvent{
		Message:  "Creating object",
		Metadata: map[string]any{"size": len(data), "flags": flags},
	})

	request := wire_codec.Message{
		Op:     wire_codec.OpCreate,
		Length: uint32(len(data)),
		Flags:  flags,
	}
	response, _, err := os.exchange(ctx, request, data)
	if err != nil {
		return 0, 0, err
	}

	os.ls.Debug(log_service.LogEvent{
		Message:  "Object created",
		Metadata: map[string]any{"objectID": response.ObjectID, "length": response.Length},
	})

	return response.ObjectID, response.Length, nil
}

func (os *CRUDObjectStore) Read(ctx context.Context, objectID uint32, length uint32, flags uint8) ([]byte, error) {
	os.ls.Debug(log_service.LogEvent{
		Message:  "Reading object",
		Metadata: map[string]any{"objectID": objectID, "length": length},
	})

	request := wire_codec.Message{
		ObjectID: objectID,
		Op:       wire_codec.OpRead,
		Length:   length,
		Flags:    flags,
	}
	_, inbound, err := os.exchange(ctx, request, nil)
	if err != nil {
		return nil, err
	}

	return inbound, nil
}

func (os *CRUDObjectStore) Update(ctx context.Context, objectID uint32, data []byte, flags uint8) error {
	if len(data) > wire_codec.MaxObjectSize {
		return object_store.ErrObjectTooLarge
	}

	os.ls.Debug(log_service.LogEvent{
		Message:  "Updating object",
		Metadata: map[string]any{"objectID": objectID, "size": len(data)},
	})

	request := wire_codec.Message{
		ObjectID: objectID,
		Op:       wire_codec.OpUpdate,
		Length:   uint32(len(data)),
		Flags:    flags,
	}
	_, _, err := os.exchange(ctx, request, data)
	return err
}

func (os *CRUDObjectStore) Delete(ctx context.Context, objectID uint32) error {
	os.ls.Debug(log_service.LogEvent{
		Message:  "Deleting object",
		Metadata: map[string]any{"objectID": objectID},
	})

	request := wire_codec.Message{
		ObjectID: objectID,
		Op:       wire_codec.OpDelete,
	}
	_, _, err := os.exchange(ctx, request, nil)
	return err
}

func (os *CRUDObjectStore) Close(ctx context.Context) error {
	os.ls.Info(log_service.LogEvent{Message: "Closing object store session"})

	_, _, err := os.exchange(ctx, wire_codec.Message{Op: wire_codec.OpClose}, nil)
	return err
}

var _ object_store.ObjectStore = (*CRUDObjectStore)(nil)
