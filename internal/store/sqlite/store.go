// Package sqlite stores accounts in a single SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"velrixo-casino/internal/store"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const (
	ensureAccountSQL = `INSERT INTO accounts (account_id, balance, updated_at) VALUES (?, ?, ?) ON CONFLICT (account_id) DO NOTHING`
	getAccountSQL    = `SELECT account_id, balance, last_bonus_at FROM accounts WHERE account_id = ?`
	upsertAccountSQL = `
		INSERT INTO accounts (account_id, balance, last_bonus_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (account_id) DO UPDATE
		SET balance = excluded.balance,
		    last_bonus_at = excluded.last_bonus_at,
		    updated_at = excluded.updated_at`
	topAccountsSQL = `SELECT account_id, balance FROM accounts ORDER BY balance DESC, account_id ASC LIMIT ?`
)

// Store persists accounts in SQLite. synchronous=FULL makes every committed
// write durable before the call returns.
type Store struct {
	sqlDB           *sql.DB
	startingBalance int64
}

func toMillis(v time.Time) int64 {
	return v.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// Open opens (or creates) the database file and applies embedded migrations.
func Open(path string, startingBalance int64) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	dsn := "file:" + filepath.Clean(path) +
		"?_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection serializes writers; SQLite allows a single writer anyway.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), sqlDB, migrationFS, "migrations"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, startingBalance: startingBalance}, nil
}

func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

func (s *Store) Get(ctx context.Context, accountID int64) (store.Account, error) {
	if _, err := s.sqlDB.ExecContext(ctx, ensureAccountSQL, accountID, s.startingBalance, toMillis(time.Now())); err != nil {
		return store.Account{}, fmt.Errorf("ensure account: %w", err)
	}
	var (
		a      store.Account
		lastAt sql.NullInt64
	)
	if err := s.sqlDB.QueryRowContext(ctx, getAccountSQL, accountID).Scan(&a.ID, &a.Balance, &lastAt); err != nil {
		return store.Account{}, fmt.Errorf("get account: %w", err)
	}
	if lastAt.Valid {
		t := fromMillis(lastAt.Int64)
		a.LastBonusClaim = &t
	}
	return a, nil
}

func (s *Store) Put(ctx context.Context, a store.Account) error {
	return s.PutAll(ctx, a)
}

func (s *Store) PutAll(ctx context.Context, accounts ...store.Account) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	now := toMillis(time.Now())
	for _, a := range accounts {
		var lastAt sql.NullInt64
		if a.LastBonusClaim != nil {
			lastAt = sql.NullInt64{Int64: toMillis(*a.LastBonusClaim), Valid: true}
		}
		if _, err := tx.ExecContext(ctx, upsertAccountSQL, a.ID, a.Balance, lastAt, now); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("put account %d: %w", a.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *Store) TopN(ctx context.Context, n int) ([]store.Standing, error) {
	if n <= 0 {
		return []store.Standing{}, nil
	}
	rows, err := s.sqlDB.QueryContext(ctx, topAccountsSQL, n)
	if err != nil {
		return nil, fmt.Errorf("top accounts: %w", err)
	}
	defer rows.Close()
	out := make([]store.Standing, 0, n)
	for rows.Next() {
		var st store.Standing
		if err := rows.Scan(&st.AccountID, &st.Balance); err != nil {
			return nil, fmt.Errorf("scan standing: %w", err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("top accounts: %w", err)
	}
	return out, nil
}
