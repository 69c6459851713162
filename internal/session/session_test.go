package session_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bananand/Vocly/internal/session"
)

var clientIDPattern = regexp.MustCompile(`^client_\d+_[0-9a-f]{8}$`)

func TestNewClientIDFormat(t *testing.T) {
	id := session.NewClientID()
	assert.Regexp(t, clientIDPattern, id)
}

func TestNewClientIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := session.NewClientID()
		assert.False(t, seen[id], "duplicate client ID %q", id)
		seen[id] = true
	}
}

func TestSessionRoomCode(t *testing.T) {
	sess := session.NewSession("client_1_abcd1234", nil)
	assert.Equal(t, "", sess.RoomCode())

	sess.SetRoomCode("ABCDE")
	assert.Equal(t, "ABCDE", sess.RoomCode())

	sess.SetRoomCode("")
	assert.Equal(t, "", sess.RoomCode())
}

func TestManagerAddAndGet(t *testing.T) {
	m := session.NewManager()
	sess := session.NewSession("client_1_abcd1234", nil)

	require.NoError(t, m.Add(sess))
	assert.Equal(t, 1, m.Count())

	got, ok := m.Get(sess.ID)
	require.True(t, ok)
	assert.Same(t, sess, got)
}

func TestManagerAddDuplicateRejected(t *testing.T) {
	m := session.NewManager()
	require.NoError(t, m.Add(session.NewSession("client_1_abcd1234", nil)))

	err := m.Add(session.NewSession("client_1_abcd1234", nil))
	assert.Error(t, err)
	assert.Equal(t, 1, m.Count())
}

func TestManagerRemove(t *testing.T) {
	m := session.NewManager()
	require.NoError(t, m.Add(session.NewSession("client_1_abcd1234", nil)))

	require.NoError(t, m.Remove("client_1_abcd1234"))
	assert.Equal(t, 0, m.Count())

	_, ok := m.Get("client_1_abcd1234")
	assert.False(t, ok)

	assert.Error(t, m.Remove("client_1_abcd1234"))
}
