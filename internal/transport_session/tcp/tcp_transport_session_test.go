package tcp

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/AnishMulay/crudfs/internal/log_service"
	"github.com/AnishMulay/crudfs/internal/log_service/localdisc"
	"github.com/AnishMulay/crudfs/internal/storetest"
	"github.com/AnishMulay/crudfs/internal/transport_session"
	"github.com/AnishMulay/crudfs/internal/wire_codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T) (*TCPTransportSession, *storetest.Server) {
	t.Helper()

	server := storetest.NewServer()
	addr, err := server.Start()
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.Stop() })

	ls := localdisc.NewLocalDiscLogService(t.TempDir(), "tcp-test", log_service.ErrorLevel)
	return NewTCPTransportSession(addr, ls), server
}

func TestExchangeConnectsLazily(t *testing.T) {
	session, _ := newTestSession(t)
	assert.False(t, session.Connected())

	response, inbound, err := session.Exchange(context.Background(), wire_codec.Message{Op: wire_codec.OpInit}, nil)
	require.NoError(t, err)

	assert.True(t, session.Connected())
	assert.Equal(t, wire_codec.OpInit, response.Op)
	assert.Equal(t, wire_codec.ResultSuccess, response.Result)
	assert.Nil(t, inbound)
}

func TestExchangeCreateThenRead(t *testing.T) {
	session, _ := newTestSession(t)
	ctx := context.Background()

	_, _, err := session.Exchange(ctx, wire_codec.Message{Op: wire_codec.OpInit}, nil)
	require.NoError(t, err)

	payload := []byte("the quick brown fox")
	created, _, err := session.Exchange(ctx, wire_codec.Message{
		Op:     wire_codec.OpCreate,
		Length: uint32(len(payload)),
	}, payload)
	require.NoError(t, err)
	require.Equal(t, wire_codec.ResultSuccess, created.Result)
	require.Equal(t, uint32(len(payload)), created.Length)

	response, inbound, err := session.Exchange(ctx, wire_codec.Message{
		ObjectID: created.ObjectID,
		Op:       wire_codec.OpRead,
		Length:   wire_codec.MaxObjectSize,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, wire_codec.ResultSuccess, response.Result)
	assert.Equal(t, uint32(len(payload)), response.Length)
	assert.Equal(t, payload, inbound)
}

func TestExchangeCloseTearsDownConnection(t *testing.T) {
	session, _ := newTestSession(t)
	ctx := context.Background()

	_, _, err := session.Exchange(ctx, wire_codec.Message{Op: wire_codec.OpInit}, nil)
	require.NoError(t, err)
	require.True(t, session.Connected())

	response, _, err := session.Exchange(ctx, wire_codec.Message{Op: wire_codec.OpClose}, nil)
	require.NoError(t, err)
	assert.Equal(t, wire_codec.OpClose, response.Op)
	assert.False(t, session.Connected())

	// The session redials on the next exchange.
	_, _, err = session.Exchange(ctx, wire_codec.Message{Op: wire_codec.OpInit}, nil)
	require.NoError(t, err)
	assert.True(t, session.Connected())
}

func TestExchangePayloadSizeMismatch(t *testing.T) {
	session, _ := newTestSession(t)

	_, _, err := session.Exchange(context.Background(), wire_codec.Message{
		Op:     wire_codec.OpCreate,
		Length: 10,
	}, []byte("short"))
	assert.ErrorIs(t, err, transport_session.ErrPayloadSizeMismatch)

	// Validation happens before any network interaction.
	assert.False(t, session.Connected())
}

func TestExchangeConnectionRefused(t *testing.T) {
	ls := localdisc.NewLocalDiscLogService(t.TempDir(), "tcp-test", log_service.ErrorLevel)

	// Grab a port and close it so the dial is refused.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	session := NewTCPTransportSession(addr, ls)
	_, _, err = session.Exchange(context.Background(), wire_codec.Message{Op: wire_codec.OpInit}, nil)
	assert.ErrorIs(t, err, transport_session.ErrConnectionFailed)
	assert.False(t, session.Connected())
}

func TestExchangeDeadlineOnStalledPeer(t *testing.T) {
	ls := localdisc.NewLocalDiscLogService(t.TempDir(), "tcp-test", log_service.ErrorLevel)

	// A listener that accepts and then never answers.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_, _ = io.Copy(io.Discard, conn) // consume the request, never reply
	}()

	session := NewTCPTransportSession(listener.Addr().String(), ls)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, _, err = session.Exchange(ctx, wire_codec.Message{Op: wire_codec.OpInit}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, transport_session.ErrResponseReadFailed)
	assert.False(t, session.Connected())
}
