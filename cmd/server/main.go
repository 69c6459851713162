// Package main provides the Vocly server binary: a TCP word-duel server
// speaking newline-delimited JSON.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/bananand/Vocly/internal/config"
	"github.com/bananand/Vocly/internal/game/random"
	"github.com/bananand/Vocly/internal/game/room"
	"github.com/bananand/Vocly/internal/game/words"
	"github.com/bananand/Vocly/internal/gameserver"
	"github.com/bananand/Vocly/internal/observability"
	"github.com/bananand/Vocly/internal/server"
	"github.com/bananand/Vocly/internal/session"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file (empty = defaults + env)")
	flag.Parse()

	// Optional .env bootstrap before viper reads the environment.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	bank, err := words.Default(cfg.Game.WordLength)
	if err != nil {
		logger.Fatal("loading word bank", zap.Error(err))
	}

	src := random.NewCryptoSource()
	sessions := session.NewManager()
	rooms := room.NewRegistry(src, cfg.Game.RoomCodeLength)
	timers := room.NewTimerTable()

	gs := gameserver.New(cfg.Game, bank, src, sessions, rooms, timers, logger)
	acceptor := server.NewAcceptor(cfg.Server, gs, logger)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("acceptor", &server.FuncService{
		StartFn: acceptor.ListenAndServe,
		StopFn:  acceptor.Stop,
	})

	logger.Info("vocly server initialized",
		zap.String("addr", cfg.Server.Addr()),
		zap.Int("word_bank_size", bank.Size()),
		zap.Int("word_length", cfg.Game.WordLength),
		zap.Int("max_guesses", cfg.Game.MaxGuesses),
		zap.Duration("round_duration", cfg.Game.RoundDuration),
		zap.Duration("startup", time.Since(start)),
	)

	if err := lifecycle.Run(context.Background()); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
