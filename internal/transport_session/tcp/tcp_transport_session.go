package tcp

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/AnishMulay/crudfs/internal/log_service"
	"github.com/AnishMulay/crudfs/internal/transport_session"
	"github.com/AnishMulay/crudfs/internal/wire_codec"
	"github.com/google/uuid"
)

// TCPTransportSession speaks the store protocol over one TCP
// connection. The connection is dialed lazily on the first exchange and
// torn down when a CLOSE response arrives or an exchange fails
// mid-stream (a half-finished frame leaves the stream unusable, so the
// next exchange redials).
type TCPTransportSession struct {
	address   string
	sessionID string
	ls        log_service.LogService

	conn      net.Conn
	connected bool
}

func NewTCPTransportSession(address string, ls log_service.LogService) *TCPTransportSession {
	return &TCPTransportSession{
		address:   address,
		sessionID: uuid.New().String(),
		ls:        ls,
	}
}

func (s *TCPTransportSession) Connected() bool {
	return s.connected
}

func (s *TCPTransportSession) connectIfNeeded(ctx context.Context) error {
	if s.connected {
		return nil
	}

	s.ls.Info(log_service.LogEvent{
		Message:  "Connecting to object store",
		Metadata: map[string]any{"address": s.address, "sessionID": s.sessionID},
	})

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", s.address)
	if err != nil {
		s.ls.Error(log_service.LogEvent{
			Message:  "Failed to connect to object store",
			Metadata: map[string]any{"address": s.address, "error": err.Error()},
		})
		return fmt.Errorf("%w: %v", transport_session.ErrConnectionFailed, err)
	}

	s.conn = conn
	s.connected = true
	return nil
}

func (s *TCPTransportSession) teardown() {
	if !s.connected {
		return
	}
	s.conn.Close()
	s.conn = nil
	s.connected = false
}

func (s *TCPTransportSession) Exchange(ctx context.Context, request wire_codec.Message, payload []byte) (wire_codec.Message, []byte, error) {
	sendsPayload := request.Op == wire_codec.OpCreate || request.Op == wire_codec.OpUpdate
	if sendsPayload && uint32(len(payload)) != request.Length {
		return wire_codec.Message{}, nil, transport_session.ErrPayloadSizeMismatch
	}

	word, err := request.Pack()
	if err != nil {
		return wire_codec.Message{}, nil, fmt.Errorf("%w: %v", transport_session.ErrRequestPackFailed, err)
	}

	if err := s.connectIfNeeded(ctx); err != nil {
		return wire_codec.Message{}, nil, err
	}

	// A stalled peer must not block the caller forever; the context
	// deadline bounds every send and receive in this exchange.
	if deadline, ok := ctx.Deadline(); ok {
		s.conn.SetDeadline(deadline)
	} else {
		s.conn.SetDeadline(time.Time{})
	}

	s.ls.Debug(log_service.LogEvent{
		Message: "Sending request",
		Metadata: map[string]any{
			"sessionID": s.sessionID,
			"op":        request.Op.String(),
			"objectID":  request.ObjectID,
			"length":    request.Length,
		},
	})

	if err := writeFull(s.conn, wire_codec.EncodeWord(word)); err != nil {
		s.teardown()
		return wire_codec.Message{}, nil, fmt.Errorf("%w: %v", transport_session.ErrRequestSendFailed, err)
	}

	if sendsPayload {
		if err := writeFull(s.conn, payload); err != nil {
			s.teardown()
			return wire_codec.Message{}, nil, fmt.Errorf("%w: %v", transport_session.ErrPayloadSendFailed, err)
		}
	}

	frame := make([]byte, wire_codec.WordSize)
	if _, err := io.ReadFull(s.conn, frame); err != nil {
		s.teardown()
		return wire_codec.Message{}, nil, fmt.Errorf("%w: %v", transport_session.ErrResponseReadFailed, err)
	}

	response := wire_codec.Unpack(wire_codec.DecodeWord(frame))

	var inbound []byte
	if response.Op == wire_codec.OpRead && response.Length > 0 {
		inbound = make([]byte, response.Length)
		if _, err := io.ReadFull(s.conn, inbound); err != nil {
			s.teardown()
			return wire_codec.Message{}, nil, fmt.Errorf("%w: %v", transport_session.ErrPayloadReadFailed, err)
		}
	}

	// The store closes its end after answering CLOSE, success or not.
	if response.Op == wire_codec.OpClose {
		s.ls.Info(log_service.LogEvent{
			Message:  "Closing connection to object store",
			Metadata: map[string]any{"address": s.address, "sessionID": s.sessionID},
		})
		s.teardown()
	}

	s.ls.Debug(log_service.LogEvent{
		Message: "Received response",
		Metadata: map[string]any{
			"sessionID": s.sessionID,
			"op":        response.Op.String(),
			"objectID":  response.ObjectID,
			"length":    response.Length,
			"result":    response.Result,
		},
	})

	return response, inbound, nil
}

// writeFull loops until every byte is on the wire; the transport may
// accept short writes.
func writeFull(conn net.Conn, buf []byte) error {
	for written := 0; written < len(buf); {
		n, err := conn.Write(buf[written:])
		if err != nil {
			return err
		}
		written += n
	}
	return nil
}

var _ transport_session.Session = (*TCPTransportSession)(nil)
