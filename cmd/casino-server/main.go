package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"velrixo-casino/internal/config"
	"velrixo-casino/internal/leaderboard"
	"velrixo-casino/internal/ledger"
	"velrixo-casino/internal/logging"
	httptransport "velrixo-casino/internal/transport/http"
	"velrixo-casino/internal/wager"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	if err := logging.Init(cfg.Log); err != nil {
		panic(err)
	}
	defer func() { _ = logging.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(cfg.Store, cfg.Economy.StartingBalance)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Store.Backend).Msg("store init failed")
	}
	defer func() { _ = st.Close() }()
	if err := st.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("store ping failed")
	}

	src, err := newSource(cfg.Economy.RandomSeed)
	if err != nil {
		log.Fatal().Err(err).Msg("wager source init failed")
	}
	engine := ledger.New(st, src,
		ledger.WithBonus(cfg.Economy.BonusAmount, cfg.Economy.BonusCooldown),
		ledger.WithReadRetries(cfg.Store.ReadRetries),
	)
	board := leaderboard.New(st, leaderboard.Options{
		DefaultSize: cfg.Economy.LeaderboardSize,
		MaxSize:     cfg.Economy.LeaderboardMax,
		ReadRetries: cfg.Store.ReadRetries,
	})

	r := httptransport.NewRouter(httptransport.Deps{
		Ledger:          engine,
		Leaderboard:     board,
		Store:           st,
		StartingBalance: cfg.Economy.StartingBalance,
	}, cfg.Server)
	httptransport.LogRoutes(r)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.HTTPAddr).Str("backend", cfg.Store.Backend).Msg("http listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}
	log.Info().Msg("server stopped")
}

func newSource(seed uint64) (*wager.LockedSource, error) {
	if seed == 0 {
		var err error
		seed, err = wager.NewSeed()
		if err != nil {
			return nil, err
		}
	} else {
		log.Warn().Uint64("seed", seed).Msg("wager source uses a fixed seed")
	}
	return wager.NewLockedSource(seed), nil
}
