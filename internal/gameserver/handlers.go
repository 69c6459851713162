package gameserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bananand/Vocly/internal/game/room"
	"github.com/bananand/Vocly/internal/protocol"
	"github.com/bananand/Vocly/internal/session"
)

// dispatch routes one decoded command to its handler. It returns true when
// the session loop should end (quit command). Unknown commands and all
// validation failures are answered with an error event; nothing here
// terminates the connection.
func (g *GameServer) dispatch(sess *session.Session, msg protocol.ClientMessage) bool {
	switch msg.Command {
	case protocol.CommandCreateRoom:
		g.handleCreateRoom(sess)
	case protocol.CommandJoinRoom:
		var req protocol.JoinRoomRequest
		decodeData(msg.Data, &req)
		g.handleJoinRoom(sess, req.RoomCode)
	case protocol.CommandStartGame:
		g.handleStartGame(sess)
	case protocol.CommandMakeGuess:
		var req protocol.MakeGuessRequest
		decodeData(msg.Data, &req)
		g.handleMakeGuess(sess, req.Guess)
	case protocol.CommandRematch:
		g.handleRematch(sess)
	case protocol.CommandQuit:
		return true
	default:
		g.sendError(sess, fmt.Sprintf("Unknown command: %s", msg.Command))
	}
	return false
}

// decodeData unmarshals a command's data object, tolerating absent data.
// Missing fields surface as zero values and fail command validation.
func decodeData(data json.RawMessage, v any) {
	if len(data) == 0 {
		return
	}
	_ = json.Unmarshal(data, v)
}

func (g *GameServer) handleCreateRoom(sess *session.Session) {
	rm := g.rooms.Create(sess.ID, g.bank.Pick(g.src))
	sess.SetRoomCode(rm.Code())

	g.logger.Info("room created",
		zap.String("room_code", rm.Code()),
		zap.String("client_id", sess.ID),
	)
	g.logger.Debug("secret chosen",
		zap.String("room_code", rm.Code()),
		zap.String("word", rm.Secret()),
	)

	if err := sess.Send(protocol.TypeRoomCreated, protocol.RoomCreatedPayload{RoomCode: rm.Code()}); err != nil {
		g.logger.Warn("sending room_created", zap.Error(err))
	}
}

func (g *GameServer) handleJoinRoom(sess *session.Session, rawCode string) {
	code := strings.ToUpper(strings.TrimSpace(rawCode))

	rm, ok := g.rooms.Get(code)
	if !ok {
		g.sendError(sess, "Room not found")
		return
	}

	if err := rm.Join(sess.ID); err != nil {
		switch {
		case errors.Is(err, room.ErrRoomFull):
			g.sendError(sess, "Room is full")
		case errors.Is(err, room.ErrAlreadyStarted):
			g.sendError(sess, "Game already started")
		default:
			g.sendError(sess, err.Error())
		}
		return
	}
	sess.SetRoomCode(code)

	g.logger.Info("player joined room",
		zap.String("room_code", code),
		zap.String("client_id", sess.ID),
	)

	g.broadcastToRoom(rm, protocol.TypeRoomReady, protocol.RoomReadyPayload{
		Message:     "Both players connected! Press START.",
		PlayerCount: len(rm.Players()),
	}, "")
}

func (g *GameServer) handleStartGame(sess *session.Session) {
	rm, ok := g.playerRoom(sess)
	if !ok {
		g.sendError(sess, "Room not found")
		return
	}

	if err := rm.Start(); err != nil {
		g.sendError(sess, "Game cannot be started")
		return
	}

	g.logger.Info("round started",
		zap.String("room_code", rm.Code()),
		zap.String("client_id", sess.ID),
	)

	g.broadcastToRoom(rm, protocol.TypeGameStarted, protocol.GameStartedPayload{
		Message:    "Game on!",
		WordLength: g.cfg.WordLength,
		MaxGuesses: g.cfg.MaxGuesses,
		Duration:   int(g.cfg.RoundDuration.Seconds()),
	}, "")

	code := rm.Code()
	g.timers.Start(code, g.cfg.RoundDuration, func() {
		g.onRoundExpired(code)
	})
}

func (g *GameServer) handleMakeGuess(sess *session.Session, rawGuess string) {
	word := strings.ToUpper(strings.TrimSpace(rawGuess))

	rm, ok := g.playerRoom(sess)
	if !ok {
		g.sendError(sess, "Room not found")
		return
	}

	out, err := rm.RecordGuess(sess.ID, word, g.cfg.MaxGuesses)
	if err != nil {
		switch {
		case errors.Is(err, room.ErrNotPlaying):
			g.sendError(sess, "Game is not active")
		case errors.Is(err, room.ErrGuessLength):
			g.sendError(sess, fmt.Sprintf("Guess must be %d letters", g.cfg.WordLength))
		default:
			g.sendError(sess, err.Error())
		}
		return
	}

	// Guesses from an already-finished player cannot affect any outcome.
	if out.Dropped {
		g.logger.Debug("guess dropped, player already finished",
			zap.String("room_code", rm.Code()),
			zap.String("client_id", sess.ID),
		)
		return
	}

	g.logger.Info("guess recorded",
		zap.String("room_code", rm.Code()),
		zap.String("client_id", sess.ID),
		zap.String("guess", word),
		zap.Int("guess_count", out.GuessCount),
		zap.Bool("correct", out.Correct),
	)

	if err := sess.Send(protocol.TypeGuessResult, protocol.GuessResultPayload{
		Guess:      word,
		Feedback:   out.Feedback,
		GuessCount: out.GuessCount,
		IsCorrect:  out.Correct,
	}); err != nil {
		g.logger.Warn("sending guess_result", zap.Error(err))
	}

	g.broadcastToRoom(rm, protocol.TypeOpponentGuessed, protocol.OpponentGuessedPayload{
		GuessCount: out.GuessCount,
	}, sess.ID)

	if out.Finished {
		message := "Correct! Waiting for your opponent..."
		if out.Result == room.ResultLost {
			// The secret is revealed to the losing player only.
			message = fmt.Sprintf("Out of guesses! The word was: %s", rm.Secret())
		}
		if err := sess.Send(protocol.TypePlayerFinished, protocol.PlayerFinishedPayload{
			Result:  string(out.Result),
			Time:    out.Elapsed,
			Message: message,
		}); err != nil {
			g.logger.Warn("sending player_finished", zap.Error(err))
		}

		g.logger.Info("player finished",
			zap.String("room_code", rm.Code()),
			zap.String("client_id", sess.ID),
			zap.String("result", string(out.Result)),
			zap.Float64("elapsed_seconds", out.Elapsed),
		)
	}

	if out.RoundOver {
		g.finishRound(rm, *out.Final)
	}
}

func (g *GameServer) handleRematch(sess *session.Session) {
	rm, ok := g.playerRoom(sess)
	if !ok {
		g.sendError(sess, "Room not found")
		return
	}

	if err := rm.Rematch(g.bank.Pick(g.src)); err != nil {
		g.sendError(sess, "Rematch not available")
		return
	}

	// Only after the finished check: a rejected mid-round rematch must
	// leave the running round timer alone.
	g.timers.Stop(rm.Code())

	g.logger.Info("rematch ready",
		zap.String("room_code", rm.Code()),
		zap.String("client_id", sess.ID),
	)

	g.broadcastToRoom(rm, protocol.TypeRematchReady, protocol.RematchReadyPayload{
		Message: "Rematch ready! Press START.",
	}, "")
}

// onRoundExpired is the timer callback: it applies the time limit to every
// unfinished player and broadcasts the result. ExpireRound re-checks that
// the room is still playing inside its lock, so an expiry that lost the
// race against the final guess (or against room deletion) is a no-op.
func (g *GameServer) onRoundExpired(code string) {
	rm, ok := g.rooms.Get(code)
	if !ok {
		return
	}

	outcome, expired := rm.ExpireRound(g.cfg.RoundDuration)
	if !expired {
		return
	}

	g.logger.Info("round timed out", zap.String("room_code", code))
	g.broadcastGameOver(rm, outcome)
}

// finishRound stops the room's timer and broadcasts game_over. Only the
// single caller that performed the playing→finished transition reaches
// here, so game_over is emitted exactly once per round.
func (g *GameServer) finishRound(rm *room.Room, outcome room.Outcome) {
	g.timers.Stop(rm.Code())
	g.broadcastGameOver(rm, outcome)
}

func (g *GameServer) broadcastGameOver(rm *room.Room, outcome room.Outcome) {
	g.logger.Info("round over",
		zap.String("room_code", rm.Code()),
		zap.String("result", outcome.Description),
	)

	g.broadcastToRoom(rm, protocol.TypeGameOver, protocol.GameOverPayload{
		Result: outcome.Description,
		Word:   outcome.Word,
	}, "")
}
