package room

import (
	"strings"
	"sync"

	"github.com/bananand/Vocly/internal/game/random"
)

// CodeAlphabet is the character set for room codes. Visually ambiguous
// characters (I, O, 0, 1) are excluded.
const CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewCode generates a random room code of the given length.
//
// Precondition: src must not be nil; length > 0.
// Postcondition: Returns a string of length characters drawn from CodeAlphabet.
func NewCode(src random.Source, length int) string {
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		b.WriteByte(CodeAlphabet[src.Intn(len(CodeAlphabet))])
	}
	return b.String()
}

// Registry owns all live rooms, keyed by room code.
// All methods are safe for concurrent use. Rooms are independent: the
// registry lock is never held while a room lock is taken by callers.
type Registry struct {
	mu         sync.RWMutex
	rooms      map[string]*Room
	src        random.Source
	codeLength int
}

// NewRegistry creates an empty room Registry.
//
// Precondition: src must not be nil; codeLength > 0.
func NewRegistry(src random.Source, codeLength int) *Registry {
	return &Registry{
		rooms:      make(map[string]*Room),
		src:        src,
		codeLength: codeLength,
	}
}

// Create makes a new waiting room for creatorID with the given secret,
// under a freshly generated unused code.
//
// Postcondition: The returned room is registered and retrievable by code.
func (g *Registry) Create(creatorID, secret string) *Room {
	g.mu.Lock()
	defer g.mu.Unlock()

	code := NewCode(g.src, g.codeLength)
	for _, taken := g.rooms[code]; taken; _, taken = g.rooms[code] {
		code = NewCode(g.src, g.codeLength)
	}

	rm := New(code, secret, creatorID)
	g.rooms[code] = rm
	return rm
}

// Get returns the room with the given code.
//
// Postcondition: Returns (room, true) if found, or (nil, false).
func (g *Registry) Get(code string) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	rm, ok := g.rooms[code]
	return rm, ok
}

// Delete removes the room with the given code. Removing an absent code is
// a no-op.
func (g *Registry) Delete(code string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.rooms, code)
}

// Count returns the number of live rooms.
func (g *Registry) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}
