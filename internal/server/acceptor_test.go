package server_test

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/bananand/Vocly/internal/config"
	"github.com/bananand/Vocly/internal/protocol"
	"github.com/bananand/Vocly/internal/server"
)

// countingHandler records sessions and blocks until the context is cancelled.
type countingHandler struct {
	sessions atomic.Int32
}

func (h *countingHandler) HandleSession(ctx context.Context, conn *protocol.Conn) error {
	h.sessions.Add(1)
	for {
		if _, err := conn.ReadCommand(); err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func startAcceptor(t *testing.T, handler server.SessionHandler) *server.Acceptor {
	t.Helper()
	cfg := config.ServerConfig{Host: "127.0.0.1", Port: 0}
	acceptor := server.NewAcceptor(cfg, handler, zaptest.NewLogger(t))

	go func() {
		if err := acceptor.ListenAndServe(); err != nil {
			t.Errorf("ListenAndServe: %v", err)
		}
	}()
	t.Cleanup(acceptor.Stop)

	require.Eventually(t, func() bool {
		return acceptor.Addr() != ""
	}, 2*time.Second, 10*time.Millisecond)
	return acceptor
}

func TestAcceptorAcceptsConnections(t *testing.T) {
	handler := &countingHandler{}
	acceptor := startAcceptor(t, handler)
	assert.True(t, acceptor.IsRunning())

	for i := 0; i < 3; i++ {
		conn, err := net.Dial("tcp", acceptor.Addr())
		require.NoError(t, err)
		defer conn.Close()
	}

	require.Eventually(t, func() bool {
		return handler.sessions.Load() == 3
	}, 2*time.Second, 10*time.Millisecond)
}

func TestAcceptorStopClosesListener(t *testing.T) {
	acceptor := startAcceptor(t, &countingHandler{})
	addr := acceptor.Addr()

	acceptor.Stop()
	assert.False(t, acceptor.IsRunning())

	_, err := net.DialTimeout("tcp", addr, 200*time.Millisecond)
	assert.Error(t, err)
}

func TestAcceptorStopUnblocksIdleSessions(t *testing.T) {
	// No read timeout is configured, so an idle session sits in a blocked
	// read until Stop closes its connection out from under it.
	acceptor := startAcceptor(t, &countingHandler{})

	conn, err := net.Dial("tcp", acceptor.Addr())
	require.NoError(t, err)
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		acceptor.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Stop did not return with an idle session open")
	}
}

func TestAcceptorStopDuringConnectionBurst(t *testing.T) {
	// Stop races freshly accepted connections that have not started their
	// session loops yet; it must still close every one of them and return.
	acceptor := startAcceptor(t, &countingHandler{})

	for i := 0; i < 16; i++ {
		conn, err := net.Dial("tcp", acceptor.Addr())
		require.NoError(t, err)
		defer conn.Close()
	}

	done := make(chan struct{})
	go func() {
		acceptor.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Stop did not return with connections mid-registration")
	}
}

func TestAcceptorStopIdempotent(t *testing.T) {
	acceptor := startAcceptor(t, &countingHandler{})
	acceptor.Stop()
	acceptor.Stop()
}
