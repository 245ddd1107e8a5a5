package main

import (
	"context"
	"fmt"

	"velrixo-casino/internal/config"
	"velrixo-casino/internal/store"
	"velrixo-casino/internal/store/memstore"
	"velrixo-casino/internal/store/sqlite"

	"github.com/rs/zerolog/log"
)

// accountStore is what every backend provides to the engine, the leaderboard
// and the health check.
type accountStore interface {
	Get(ctx context.Context, accountID int64) (store.Account, error)
	Put(ctx context.Context, a store.Account) error
	PutAll(ctx context.Context, accounts ...store.Account) error
	TopN(ctx context.Context, n int) ([]store.Standing, error)
	Ping(ctx context.Context) error
	Close() error
}

func openStore(cfg config.StoreConfig, startingBalance int64) (accountStore, error) {
	switch cfg.Backend {
	case config.StoreBackendPostgres:
		st, err := store.New(cfg.PostgresDSN, startingBalance)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return st, nil
	case config.StoreBackendSQLite:
		st, err := sqlite.Open(cfg.SQLitePath, startingBalance)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return st, nil
	case config.StoreBackendMemory:
		log.Warn().Msg("memory store selected: balances are lost on restart")
		return memstore.New(startingBalance), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
