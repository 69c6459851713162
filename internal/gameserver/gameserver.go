// Package gameserver implements the Vocly game session loop: command
// dispatch, room orchestration, round-end determination, timer expiry,
// and disconnect cleanup.
package gameserver

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/bananand/Vocly/internal/config"
	"github.com/bananand/Vocly/internal/game/random"
	"github.com/bananand/Vocly/internal/game/room"
	"github.com/bananand/Vocly/internal/game/words"
	"github.com/bananand/Vocly/internal/protocol"
	"github.com/bananand/Vocly/internal/session"
)

// GameServer owns the shared state reached by every connection handler:
// the session table, the room registry, and the round timer table. It is
// constructed once at startup and passed into the acceptor; its lifetime
// is the process lifetime.
type GameServer struct {
	cfg      config.GameConfig
	bank     *words.Bank
	src      random.Source
	sessions *session.Manager
	rooms    *room.Registry
	timers   *room.TimerTable
	logger   *zap.Logger
}

// New creates a GameServer with the given dependencies.
//
// Precondition: all arguments must be non-nil.
func New(
	cfg config.GameConfig,
	bank *words.Bank,
	src random.Source,
	sessions *session.Manager,
	rooms *room.Registry,
	timers *room.TimerTable,
	logger *zap.Logger,
) *GameServer {
	return &GameServer{
		cfg:      cfg,
		bank:     bank,
		src:      src,
		sessions: sessions,
		rooms:    rooms,
		timers:   timers,
		logger:   logger,
	}
}

// HandleSession runs the command loop for one client connection: welcome,
// register, dispatch each inbound command, and clean up on exit. It
// returns nil on graceful quit or EOF, or the stream error that ended the
// session.
//
// Postcondition: The session is deregistered and its room (if any) is
// deleted when this method returns.
func (g *GameServer) HandleSession(ctx context.Context, conn *protocol.Conn) error {
	clientID := session.NewClientID()
	sess := session.NewSession(clientID, conn)

	welcome := protocol.WelcomePayload{
		Message:  "Vocly word duel server",
		ClientID: clientID,
		ServerInfo: protocol.ServerInfo{
			WordLength:   g.cfg.WordLength,
			MaxGuesses:   g.cfg.MaxGuesses,
			GameDuration: int(g.cfg.RoundDuration.Seconds()),
			WordBankSize: g.bank.Size(),
		},
	}
	if err := sess.Send(protocol.TypeWelcome, welcome); err != nil {
		return err
	}

	if err := g.sessions.Add(sess); err != nil {
		return err
	}
	defer g.cleanupSession(sess)

	g.logger.Info("client registered",
		zap.String("client_id", clientID),
		zap.String("remote_addr", sess.RemoteAddr().String()),
	)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		msg, err := conn.ReadCommand()
		if err != nil {
			var perr *protocol.ProtocolError
			switch {
			case errors.As(err, &perr):
				g.sendError(sess, "Invalid JSON format")
				continue
			case errors.Is(err, io.EOF):
				return nil
			default:
				return err
			}
		}

		g.logger.Debug("command received",
			zap.String("client_id", clientID),
			zap.String("command", msg.Command),
		)

		if quit := g.dispatch(sess, msg); quit {
			return nil
		}
	}
}

// cleanupSession releases everything a departing client holds: its room is
// deleted unconditionally (even mid-game or post-game), the room timer is
// cancelled, and the opponent is notified when a match was underway.
func (g *GameServer) cleanupSession(sess *session.Session) {
	g.logger.Info("client disconnected", zap.String("client_id", sess.ID))

	if code := sess.RoomCode(); code != "" {
		if rm, ok := g.rooms.Get(code); ok {
			g.timers.Stop(code)

			// The opponent wins by default only when a match was
			// actually underway; a post-game departure tears the
			// room down silently.
			if st := rm.State(); st == room.StateReady || st == room.StatePlaying {
				g.broadcastToRoom(rm, protocol.TypeOpponentDisconnected, protocol.OpponentDisconnectedPayload{
					Message: "Your opponent disconnected! You win!",
				}, sess.ID)
			}

			g.rooms.Delete(code)
			g.logger.Info("room deleted",
				zap.String("room_code", code),
				zap.String("client_id", sess.ID),
			)
		}
	}

	if err := g.sessions.Remove(sess.ID); err != nil {
		g.logger.Warn("deregistering session", zap.Error(err))
	}
}

// broadcastToRoom sends one event to every room member except excludeID.
// Room locks are not held here; the player list is a snapshot.
func (g *GameServer) broadcastToRoom(rm *room.Room, msgType string, data any, excludeID string) {
	for _, pid := range rm.Players() {
		if pid == excludeID {
			continue
		}
		member, ok := g.sessions.Get(pid)
		if !ok {
			continue
		}
		if err := member.Send(msgType, data); err != nil {
			g.logger.Warn("broadcasting to room member",
				zap.String("room_code", rm.Code()),
				zap.String("client_id", pid),
				zap.Error(err),
			)
		}
	}
}

func (g *GameServer) sendError(sess *session.Session, message string) {
	if err := sess.Send(protocol.TypeError, protocol.ErrorPayload{Message: message}); err != nil {
		g.logger.Warn("sending error event",
			zap.String("client_id", sess.ID),
			zap.Error(err),
		)
	}
}

// playerRoom resolves the session's room through the registry. The session
// only holds a code; after a disconnect-triggered deletion the code is
// stale and this returns false.
func (g *GameServer) playerRoom(sess *session.Session) (*room.Room, bool) {
	code := sess.RoomCode()
	if code == "" {
		return nil, false
	}
	return g.rooms.Get(code)
}
