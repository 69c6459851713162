// Package protocol implements the newline-delimited JSON wire protocol
// spoken between the Vocly server and its clients. Each direction carries
// one JSON object per line: clients send {"command": ..., "data": ...} and
// the server answers with {"type": ..., "data": ..., "timestamp": ...}.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Client command names.
const (
	CommandCreateRoom = "create_room"
	CommandJoinRoom   = "join_room"
	CommandStartGame  = "start_game"
	CommandMakeGuess  = "make_guess"
	CommandRematch    = "rematch"
	// CommandQuit is the sentinel that ends a session without a response.
	CommandQuit = "QUIT"
)

// Server event types.
const (
	TypeWelcome              = "welcome"
	TypeRoomCreated          = "room_created"
	TypeRoomReady            = "room_ready"
	TypeGameStarted          = "game_started"
	TypeGuessResult          = "guess_result"
	TypeOpponentGuessed      = "opponent_guessed"
	TypePlayerFinished       = "player_finished"
	TypeGameOver             = "game_over"
	TypeRematchReady         = "rematch_ready"
	TypeOpponentDisconnected = "opponent_disconnected"
	TypeError                = "error"
)

// ClientMessage is the envelope for one client→server command.
type ClientMessage struct {
	Command string          `json:"command"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// ServerMessage is the envelope for one server→client event. Timestamp is
// the send time in fractional epoch seconds.
type ServerMessage struct {
	Type      string  `json:"type"`
	Data      any     `json:"data"`
	Timestamp float64 `json:"timestamp"`
}

// ProtocolError reports a malformed inbound frame. It is recoverable: the
// offending line is discarded and the connection stays usable.
type ProtocolError struct {
	Line string
	Err  error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("malformed message %q: %v", e.Line, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }
