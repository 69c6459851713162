package protocol

import "github.com/bananand/Vocly/internal/game/guess"

// ServerInfo carries the static game parameters announced at connect time.
type ServerInfo struct {
	WordLength   int `json:"word_length"`
	MaxGuesses   int `json:"max_guesses"`
	GameDuration int `json:"game_duration"`
	WordBankSize int `json:"word_bank_size"`
}

// WelcomePayload is sent once per connection, before any command is read.
type WelcomePayload struct {
	Message    string     `json:"message"`
	ClientID   string     `json:"client_id"`
	ServerInfo ServerInfo `json:"server_info"`
}

// RoomCreatedPayload answers a create_room command.
type RoomCreatedPayload struct {
	RoomCode string `json:"room_code"`
}

// RoomReadyPayload is broadcast when the second player joins.
type RoomReadyPayload struct {
	Message     string `json:"message"`
	PlayerCount int    `json:"player_count"`
}

// GameStartedPayload is broadcast when a round begins.
type GameStartedPayload struct {
	Message    string `json:"message"`
	WordLength int    `json:"word_length"`
	MaxGuesses int    `json:"max_guesses"`
	Duration   int    `json:"duration"`
}

// GuessResultPayload is sent to the guessing player only.
type GuessResultPayload struct {
	Guess      string       `json:"guess"`
	Feedback   []guess.Mark `json:"feedback"`
	GuessCount int          `json:"guess_count"`
	IsCorrect  bool         `json:"is_correct"`
}

// OpponentGuessedPayload is sent to the other room member after each guess.
// It reveals only the running guess count, never the word.
type OpponentGuessedPayload struct {
	GuessCount int `json:"guess_count"`
}

// PlayerFinishedPayload is sent to a player when they win or exhaust
// their guesses.
type PlayerFinishedPayload struct {
	Result  string  `json:"result"`
	Time    float64 `json:"time"`
	Message string  `json:"message"`
}

// GameOverPayload is broadcast once per round when every player has
// finished. Word is the revealed secret.
type GameOverPayload struct {
	Result string `json:"result"`
	Word   string `json:"word"`
}

// RematchReadyPayload is broadcast after a successful rematch command.
type RematchReadyPayload struct {
	Message string `json:"message"`
}

// OpponentDisconnectedPayload notifies the remaining player of a forfeit.
type OpponentDisconnectedPayload struct {
	Message string `json:"message"`
}

// ErrorPayload reports a protocol or validation failure to the sender.
type ErrorPayload struct {
	Message string `json:"message"`
}

// JoinRoomRequest is the data of a join_room command.
type JoinRoomRequest struct {
	RoomCode string `json:"room_code"`
}

// MakeGuessRequest is the data of a make_guess command.
type MakeGuessRequest struct {
	Guess string `json:"guess"`
}
