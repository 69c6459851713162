// Package room implements the per-match state container, its state machine,
// the room registry, and the round timer table.
//
// A Room is mutated from both players' connection handlers and from the
// round timer goroutine. All state lives behind a single per-room mutex;
// every transition runs in one critical section, and the playing→finished
// transition hands its caller the final outcome exactly once, so a timer
// expiry can never race a winning guess into a second game_over.
package room

import (
	"errors"
	"sync"
	"time"

	"github.com/bananand/Vocly/internal/game/guess"
)

// State is the lifecycle phase of a room.
type State string

const (
	// StateWaiting: one player, waiting for an opponent.
	StateWaiting State = "waiting"
	// StateReady: two players, round not started.
	StateReady State = "ready"
	// StatePlaying: round in progress.
	StatePlaying State = "playing"
	// StateFinished: round over, rematch possible.
	StateFinished State = "finished"
)

// Result is a player's terminal outcome within one round.
type Result string

const (
	ResultWon  Result = "won"
	ResultLost Result = "lost"
)

// Validation errors returned by room operations. Handlers convert these to
// error events; no state is mutated when one is returned.
var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room is full")
	ErrAlreadyStarted     = errors.New("game already started")
	ErrNotReady           = errors.New("game cannot be started")
	ErrNotPlaying         = errors.New("game is not active")
	ErrGuessLength        = errors.New("guess has the wrong length")
	ErrRematchUnavailable = errors.New("rematch not available")
)

// GuessRecord is one evaluated guess in a player's history.
type GuessRecord struct {
	Word     string
	Feedback []guess.Mark
}

// Outcome is the final result of a round.
type Outcome struct {
	// Description is the human-readable result line naming the winner.
	Description string
	// Word is the revealed secret.
	Word string
}

// GuessOutcome reports the effects of one recorded guess.
type GuessOutcome struct {
	// Dropped is true when the guesser had already finished; nothing
	// was recorded and no response should be sent.
	Dropped bool
	// Feedback is the per-position evaluation of the guess.
	Feedback []guess.Mark
	// GuessCount is the guesser's total guesses this round, including
	// this one.
	GuessCount int
	// Correct is true when the guess equals the secret.
	Correct bool
	// Finished is true when this guess ended the guesser's round
	// (win or guess budget exhausted).
	Finished bool
	// Result is the guesser's terminal result; meaningful only when
	// Finished is true.
	Result Result
	// Elapsed is the guesser's finish time in seconds since round start;
	// meaningful only when Finished is true.
	Elapsed float64
	// RoundOver is true when this guess completed the round for all
	// players. Exactly one GuessOutcome or ExpireRound call per round
	// reports the transition.
	RoundOver bool
	// Final is the round outcome; non-nil only when RoundOver is true.
	Final *Outcome
}

// Room holds all state for one two-player match.
type Room struct {
	mu sync.Mutex

	code   string
	secret string
	state  State

	// players is ordered: players[0] is "Player 1" in result messages.
	players     []string
	startTime   time.Time
	guesses     map[string][]GuessRecord
	finishTimes map[string]float64
	results     map[string]Result

	now func() time.Time
}

// New creates a Room in the waiting state containing its creator.
//
// Precondition: code, secret, and creatorID must be non-empty.
func New(code, secret, creatorID string) *Room {
	r := &Room{
		code:        code,
		secret:      secret,
		state:       StateWaiting,
		players:     []string{creatorID},
		guesses:     make(map[string][]GuessRecord, 2),
		finishTimes: make(map[string]float64, 2),
		results:     make(map[string]Result, 2),
		now:         time.Now,
	}
	r.guesses[creatorID] = nil
	return r
}

// Code returns the room code.
func (r *Room) Code() string { return r.code }

// State returns the current lifecycle phase.
func (r *Room) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Secret returns the current secret word.
func (r *Room) Secret() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.secret
}

// Players returns a copy of the ordered player list.
func (r *Room) Players() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.players))
	copy(out, r.players)
	return out
}

// HasPlayer reports whether playerID is a member of the room.
func (r *Room) HasPlayer(playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.players {
		if p == playerID {
			return true
		}
	}
	return false
}

// FinishTime returns the player's recorded finish time in seconds.
//
// Postcondition: Returns (time, true) if recorded, or (0, false).
func (r *Room) FinishTime(playerID string) (float64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.finishTimes[playerID]
	return t, ok
}

// PlayerResult returns the player's terminal result, if any.
func (r *Room) PlayerResult(playerID string) (Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.results[playerID]
	return res, ok
}

// GuessCount returns the number of guesses the player has made this round.
func (r *Room) GuessCount(playerID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.guesses[playerID])
}

// Join adds a second player to a waiting room and makes it ready.
//
// Postcondition: On success the room is in StateReady with two players.
// Returns ErrRoomFull or ErrAlreadyStarted without mutation otherwise.
func (r *Room) Join(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.players) >= 2 {
		return ErrRoomFull
	}
	if r.state != StateWaiting {
		return ErrAlreadyStarted
	}

	r.players = append(r.players, playerID)
	r.guesses[playerID] = nil
	r.state = StateReady
	return nil
}

// Start begins a round: ready → playing.
//
// Postcondition: On success start time is set and all per-player guess,
// finish, and result fields are cleared. Returns ErrNotReady otherwise.
func (r *Room) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateReady {
		return ErrNotReady
	}

	r.state = StatePlaying
	r.startTime = r.now()
	r.resetPlayersLocked()
	return nil
}

// RecordGuess evaluates and records one guess for playerID.
//
// A guess from a player who already finished is silently dropped
// (Dropped=true) and cannot affect any outcome. A guess of the wrong
// length returns ErrGuessLength with no state change. When the guess ends
// the guesser's round, their result and finish time are recorded; when it
// ends the whole round, the room transitions to StateFinished and Final
// carries the outcome.
//
// Precondition: word must already be uppercased and trimmed.
func (r *Room) RecordGuess(playerID, word string, maxGuesses int) (GuessOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StatePlaying {
		return GuessOutcome{}, ErrNotPlaying
	}
	if _, done := r.finishTimes[playerID]; done {
		return GuessOutcome{Dropped: true}, nil
	}
	if len(word) != len(r.secret) {
		return GuessOutcome{}, ErrGuessLength
	}

	feedback, err := guess.Evaluate(word, r.secret)
	if err != nil {
		return GuessOutcome{}, err
	}

	r.guesses[playerID] = append(r.guesses[playerID], GuessRecord{Word: word, Feedback: feedback})

	out := GuessOutcome{
		Feedback:   feedback,
		GuessCount: len(r.guesses[playerID]),
		Correct:    word == r.secret,
	}

	switch {
	case out.Correct:
		out.Finished = true
		out.Result = ResultWon
	case out.GuessCount >= maxGuesses:
		out.Finished = true
		out.Result = ResultLost
	}

	if out.Finished {
		out.Elapsed = r.now().Sub(r.startTime).Seconds()
		r.finishTimes[playerID] = out.Elapsed
		r.results[playerID] = out.Result

		if final := r.finishRoundLocked(); final != nil {
			out.RoundOver = true
			out.Final = final
		}
	}

	return out, nil
}

// ExpireRound applies the round time limit: every player without a finish
// time is marked lost with the full round duration, and the room becomes
// finished.
//
// The check-and-transition runs inside the room lock, so an expiry racing
// a final guess is a no-op: if the room is no longer playing nothing is
// mutated and (Outcome{}, false) is returned.
func (r *Room) ExpireRound(roundDuration time.Duration) (Outcome, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StatePlaying {
		return Outcome{}, false
	}

	for _, pid := range r.players {
		if _, done := r.finishTimes[pid]; !done {
			r.finishTimes[pid] = roundDuration.Seconds()
			r.results[pid] = ResultLost
		}
	}

	final := r.finishRoundLocked()
	if final == nil {
		// Unreachable: every player has a finish time.
		return Outcome{}, false
	}
	return *final, true
}

// Rematch resets a finished room for another round with a new secret:
// finished → ready. The player list and order are preserved.
//
// Postcondition: On success all per-player fields are cleared. Returns
// ErrRematchUnavailable otherwise.
func (r *Room) Rematch(newSecret string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateFinished {
		return ErrRematchUnavailable
	}

	r.secret = newSecret
	r.state = StateReady
	r.startTime = time.Time{}
	r.resetPlayersLocked()
	return nil
}

// resetPlayersLocked clears all per-player round fields.
// Caller must hold r.mu.
func (r *Room) resetPlayersLocked() {
	for _, pid := range r.players {
		r.guesses[pid] = nil
		delete(r.finishTimes, pid)
		delete(r.results, pid)
	}
}

// finishRoundLocked transitions playing → finished when every player has a
// finish time, and computes the outcome. Returns nil when the round
// continues. Caller must hold r.mu.
func (r *Room) finishRoundLocked() *Outcome {
	for _, pid := range r.players {
		if _, done := r.finishTimes[pid]; !done {
			return nil
		}
	}

	r.state = StateFinished
	return &Outcome{
		Description: r.describeOutcomeLocked(),
		Word:        r.secret,
	}
}

// describeOutcomeLocked builds the human-readable result line.
// Caller must hold r.mu; every player must have a finish time and result.
func (r *Room) describeOutcomeLocked() string {
	p1, p2 := r.players[0], r.players[1]
	t1, t2 := r.finishTimes[p1], r.finishTimes[p2]
	r1, r2 := r.results[p1], r.results[p2]

	switch {
	case r1 == ResultLost && r2 == ResultLost:
		return "Draw! Both players ran out of guesses. Word: " + r.secret
	case r1 == ResultWon && r2 == ResultLost:
		return sprintWinner(1, t1)
	case r1 == ResultLost && r2 == ResultWon:
		return sprintWinner(2, t2)
	case t1 < t2:
		return sprintWinnerVs(1, t1, t2)
	case t2 < t1:
		return sprintWinnerVs(2, t2, t1)
	default:
		return sprintDraw(t1)
	}
}
