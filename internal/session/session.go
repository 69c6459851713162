// Package session tracks connected clients and their room membership.
package session

import (
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bananand/Vocly/internal/protocol"
)

// NewClientID generates a composite monotonic+random client identifier,
// e.g. "client_1712345678901_9f8a3b2c". The millisecond component keeps
// IDs practically unique without coordination; the uuid fragment breaks
// same-millisecond ties.
func NewClientID() string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("client_%d_%s", time.Now().UnixMilli(), suffix)
}

// Session is one connected client. It owns its connection exclusively and
// keeps a weak back-reference to its room by code: the room itself is
// owned by the registry and must be resolved through it on every use.
type Session struct {
	// ID is the client identifier assigned at connect time.
	ID string

	conn *protocol.Conn

	mu       sync.Mutex
	roomCode string
}

// NewSession creates a session for the given connection.
//
// Precondition: id must be non-empty; conn must not be nil.
func NewSession(id string, conn *protocol.Conn) *Session {
	return &Session{ID: id, conn: conn}
}

// RoomCode returns the session's current room code, or "" when not in a room.
func (s *Session) RoomCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomCode
}

// SetRoomCode records the session's room membership by code.
func (s *Session) SetRoomCode(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomCode = code
}

// Send writes one typed event to the client.
func (s *Session) Send(msgType string, data any) error {
	return s.conn.Send(msgType, data)
}

// RemoteAddr returns the client's network address.
func (s *Session) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}

// Manager tracks all active sessions by client ID.
// All methods are safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates an empty session Manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Add registers a session.
//
// Postcondition: Returns an error if the client ID is already registered.
func (m *Manager) Add(sess *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[sess.ID]; exists {
		return fmt.Errorf("client %q already connected", sess.ID)
	}
	m.sessions[sess.ID] = sess
	return nil
}

// Remove deregisters a session by client ID.
//
// Postcondition: Returns an error if the ID is not registered.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[id]; !exists {
		return fmt.Errorf("client %q not found", id)
	}
	delete(m.sessions, id)
	return nil
}

// Get returns the session for the given client ID.
//
// Postcondition: Returns (session, true) if found, or (nil, false).
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	return sess, ok
}

// Count returns the number of connected clients.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
