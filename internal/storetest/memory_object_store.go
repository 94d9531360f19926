package storetest

import (
	"context"

	"github.com/AnishMulay/crudfs/internal/object_store"
	"github.com/AnishMulay/crudfs/internal/wire_codec"
)

// MemoryObjectStore implements object_store.ObjectStore entirely in
// memory, for unit tests that do not need a socket. FailNext, when set,
// makes the next matching operation fail once with ErrRequestFailed.
type MemoryObjectStore struct {
	objects     map[uint32][]byte
	nextID      uint32
	initialized bool
	closed      bool

	FailNext map[wire_codec.OpCode]bool
}

func NewMemoryObjectStore() *MemoryObjectStore {
	return &MemoryObjectStore{
		objects:  make(map[uint32][]byte),
		nextID:   1,
		FailNext: make(map[wire_codec.OpCode]bool),
	}
}

func (m *MemoryObjectStore) failNext(op wire_codec.OpCode) bool {
	if m.FailNext[op] {
		m.FailNext[op] = false
		return true
	}
	return false
}

func (m *MemoryObjectStore) Init(ctx context.Context) error {
	if m.failNext(wire_codec.OpInit) {
		return object_store.ErrRequestFailed
	}
	m.initialized = true
	m.closed = false
	return nil
}

func (m *MemoryObjectStore) Format(ctx context.Context) error {
	if !m.initialized || m.failNext(wire_codec.OpFormat) {
		return object_store.ErrRequestFailed
	}
	m.objects = make(map[uint32][]byte)
	m.nextID = 1
	return nil
}

func (m *MemoryObjectStore) Create(ctx context.Context, data []byte, flags uint8) (uint32, uint32, error) {
	if !m.initialized || m.failNext(wire_codec.OpCreate) {
		return 0, 0, object_store.ErrRequestFailed
	}
	id := wire_codec.PriorityObjectID
	if flags != wire_codec.PriorityFlag {
		id = m.nextID
		m.nextID++
	}
	m.objects[id] = append([]byte(nil), data...)
	return id, uint32(len(data)), nil
}

func (m *MemoryObjectStore) Read(ctx context.Context, objectID uint32, length uint32, flags uint8) ([]byte, error) {
	data, ok := m.objects[objectID]
	if !m.initialized || !ok || m.failNext(wire_codec.OpRead) {
		return nil, object_store.ErrRequestFailed
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryObjectStore) Update(ctx context.Context, objectID uint32, data []byte, flags uint8) error {
	if _, ok := m.objects[objectID]; !m.initialized || !ok || m.failNext(wire_codec.OpUpdate) {
		return object_store.ErrRequestFailed
	}
	m.objects[objectID] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryObjectStore) Delete(ctx context.Context, objectID uint32) error {
	if _, ok := m.objects[objectID]; !m.initialized || !ok || m.failNext(wire_codec.OpDelete) {
		return object_store.ErrRequestFailed
	}
	delete(m.objects, objectID)
	return nil
}

func (m *MemoryObjectStore) Close(ctx context.Context) error {
	if m.failNext(wire_codec.OpClose) {
		return object_store.ErrRequestFailed
	}
	m.closed = true
	return nil
}

// Closed reports whether Close has been called since the last Init.
func (m *MemoryObjectStore) Closed() bool {
	return m.closed
}

// Object returns the stored content of an object, for assertions.
func (m *MemoryObjectStore) Object(objectID uint32) ([]byte, bool) {
	data, ok := m.objects[objectID]
	return data, ok
}

var _ object_store.ObjectStore = (*MemoryObjectStore)(nil)
