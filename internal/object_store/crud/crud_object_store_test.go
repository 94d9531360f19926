package crud

import (
	"context"
	"testing"

	"github.com/AnishMulay/crudfs/internal/log_service"
	"github.com/AnishMulay/crudfs/internal/log_service/localdisc"
	"github.com/AnishMulay/crudfs/internal/object_store"
	"github.com/AnishMulay/crudfs/internal/transport_session"
	"github.com/AnishMulay/crudfs/internal/wire_codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSession records the last request and plays back a scripted
// response.
type fakeSession struct {
	lastRequest wire_codec.Message
	lastPayload []byte

	response wire_codec.Message
	inbound  []byte
	err      error
}

func (f *fakeSession) Exchange(ctx context.Context, request wire_codec.Message, payload []byte) (wire_codec.Message, []byte, error) {
	f.lastRequest = request
	f.lastPayload = payload
	if f.err != nil {
		return wire_codec.Message{}, nil, f.err
	}
	return f.response, f.inbound, nil
}

func (f *fakeSession) Connected() bool { return true }

var _ transport_session.Session = (*fakeSession)(nil)

func newTestStore(t *testing.T, session transport_session.Session) *CRUDObjectStore {
	t.Helper()
	ls := localdisc.NewLocalDiscLogService(t.TempDir(), "store-test", log_service.ErrorLevel)
	return NewCRUDObjectStore(session, ls)
}

func TestCreateBuildsRequestWord(t *testing.T) {
	session := &fakeSession{
		response: wire_codec.Message{ObjectID: 42, Op: wire_codec.OpCreate, Length: 5},
	}
	store := newTestStore(t, session)

	objectID, length, err := store.Create(context.Background(), []byte("hello"), wire_codec.NullFlag)
	require.NoError(t, err)

	assert.Equal(t, uint32(42), objectID)
	assert.Equal(t, uint32(5), length)
	assert.Equal(t, wire_codec.OpCreate, session.lastRequest.Op)
	assert.Equal(t, uint32(5), session.lastRequest.Length)
	assert.Equal(t, []byte("hello"), session.lastPayload)
}

func TestCreatePriorityObject(t *testing.T) {
	session := &fakeSession{
		response: wire_codec.Message{
			ObjectID: wire_codec.PriorityObjectID,
			Op:       wire_codec.OpCreate,
			Length:   4,
			Flags:    wire_codec.PriorityFlag,
		},
	}
	store := newTestStore(t, session)

	objectID, _, err := store.Create(context.Background(), []byte("meta"), wire_codec.PriorityFlag)
	require.NoError(t, err)

	assert.Equal(t, wire_codec.PriorityObjectID, objectID)
	assert.Equal(t, wire_codec.PriorityFlag, session.lastRequest.Flags)
}

func TestCreateRejectsOversizedObject(t *testing.T) {
	store := newTestStore(t, &fakeSession{})

	_, _, err := store.Create(context.Background(), make([]byte, wire_codec.MaxObjectSize+1), wire_codec.NullFlag)
	assert.ErrorIs(t, err, object_store.ErrObjectTooLarge)
}

func TestReadReturnsInboundPayload(t *testing.T) {
	session := &fakeSession{
		response: wire_codec.Message{ObjectID: 7, Op: wire_codec.OpRead, Length: 3},
		inbound:  []byte("abc"),
	}
	store := newTestStore(t, session)

	data, err := store.Read(context.Background(), 7, wire_codec.MaxObjectSize, wire_codec.NullFlag)
	require.NoError(t, err)

	assert.Equal(t, []byte("abc"), data)
	assert.Equal(t, wire_codec.OpRead, session.lastRequest.Op)
	assert.Equal(t, uint32(7), session.lastRequest.ObjectID)
	assert.Equal(t, uint32(wire_codec.MaxObjectSize), session.lastRequest.Length)
}

func TestResultBitFailure(t *testing.T) {
	session := &fakeSession{
		response: wire_codec.Message{Op: wire_codec.OpDelete, Result: wire_codec.ResultFailure},
	}
	store := newTestStore(t, session)

	err := store.Delete(context.Background(), 9)
	assert.ErrorIs(t, err, object_store.ErrRequestFailed)
}

func TestUnexpectedResponseOp(t *testing.T) {
	session := &fakeSession{
		response: wire_codec.Message{Op: wire_codec.OpRead},
	}
	store := newTestStore(t, session)

	err := store.Init(context.Background())
	assert.ErrorIs(t, err, object_store.ErrUnexpectedResponse)
}

func TestTransportErrorPropagatesUnchanged(t *testing.T) {
	session := &fakeSession{err: transport_session.ErrResponseReadFailed}
	store := newTestStore(t, session)

	err := store.Format(context.Background())
	assert.ErrorIs(t, err, transport_session.ErrResponseReadFailed)
}
