// Package storetest provides in-process object stores for tests and
// the soak harness: a TCP server speaking the real wire protocol and an
// in-memory ObjectStore that skips the network entirely.
package storetest

import (
	"io"
	"net"
	"sync"

	"github.com/AnishMulay/crudfs/internal/wire_codec"
	"github.com/pkg/errors"
)

// Server is a minimal object store behind a real TCP listener. It
// serves connections sequentially per socket, which matches the
// protocol's one-exchange-at-a-time model.
type Server struct {
	listener net.Listener

	mu          sync.Mutex
	objects     map[uint32][]byte
	nextID      uint32
	initialized bool
}

func NewServer() *Server {
	return &Server{
		objects: make(map[uint32][]byte),
		nextID:  1,
	}
}

// Start listens on an ephemeral localhost port and returns the address
// to dial.
func (s *Server) Start() (string, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", errors.Wrap(err, "storetest listen")
	}
	s.listener = listener

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go s.serve(conn)
		}
	}()

	return listener.Addr().String(), nil
}

func (s *Server) Stop() error {
	if s.listener == nil {
		return nil
	}
	return errors.Wrap(s.listener.Close(), "storetest close")
}

func (s *Server) serve(conn net.Conn) {
	defer conn.Close()

	frame := make([]byte, wire_codec.WordSize)
	for {
		if _, err := io.ReadFull(conn, frame); err != nil {
			return
		}
		request := wire_codec.Unpack(wire_codec.DecodeWord(frame))

		var payload []byte
		if request.Op == wire_codec.OpCreate || request.Op == wire_codec.OpUpdate {
			payload = make([]byte, request.Length)
			if _, err := io.ReadFull(conn, payload); err != nil {
				return
			}
		}

		response, outbound := s.handle(request, payload)

		word, err := response.Pack()
		if err != nil {
			return
		}
		if _, err := conn.Write(wire_codec.EncodeWord(word)); err != nil {
			return
		}
		if len(outbound) > 0 {
			if _, err := conn.Write(outbound); err != nil {
				return
			}
		}

		if request.Op == wire_codec.OpClose {
			return
		}
	}
}

func (s *Server) handle(request wire_codec.Message, payload []byte) (wire_codec.Message, []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fail := wire_codec.Message{Op: request.Op, Result: wire_codec.ResultFailure}

	switch request.Op {
	case wire_codec.OpInit:
		s.initialized = true
		return wire_codec.Message{Op: wire_codec.OpInit}, nil

	case wire_codec.OpFormat:
		if !s.initialized {
			return fail, nil
		}
		s.objects = make(map[uint32][]byte)
		s.nextID = 1
		return wire_codec.Message{Op: wire_codec.OpFormat}, nil

	case wire_codec.OpCreate:
		if !s.initialized {
			return fail, nil
		}
		id := request.ObjectID
		if request.Flags != wire_codec.PriorityFlag {
			id = s.nextID
			s.nextID++
		}
		s.objects[id] = append([]byte(nil), payload...)
		return wire_codec.Message{
			ObjectID: id,
			Op:       wire_codec.OpCreate,
			Length:   uint32(len(payload)),
			Flags:    request.Flags,
		}, nil

	case wire_codec.OpRead:
		data, ok := s.objects[request.ObjectID]
		if !s.initialized || !ok {
			return fail, nil
		}
		// Whole-object reads only: the response declares the object's
		// actual size regardless of the requested buffer capacity.
		return wire_codec.Message{
			ObjectID: request.ObjectID,
			Op:       wire_codec.OpRead,
			Length:   uint32(len(data)),
			Flags:    request.Flags,
		}, data

	case wire_codec.OpUpdate:
		if _, ok := s.objects[request.ObjectID]; !s.initialized || !ok {
			return fail, nil
		}
		s.objects[request.ObjectID] = append([]byte(nil), payload...)
		return wire_codec.Message{
			ObjectID: request.ObjectID,
			Op:       wire_codec.OpUpdate,
			Length:   uint32(len(payload)),
			Flags:    request.Flags,
		}, nil

	case wire_codec.OpDelete:
		if _, ok := s.objects[request.ObjectID]; !s.initialized || !ok {
			return fail, nil
		}
		delete(s.objects, request.ObjectID)
		return wire_codec.Message{ObjectID: request.ObjectID, Op: wire_codec.OpDelete}, nil

	case wire_codec.OpClose:
		return wire_codec.Message{Op: wire_codec.OpClose}, nil

	default:
		return fail, nil
	}
}

// ObjectCount reports how many objects the server currently holds.
func (s *Server) ObjectCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
