package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	ensureAccountSQL = `INSERT INTO accounts (account_id, balance) VALUES ($1, $2) ON CONFLICT (account_id) DO NOTHING`
	getAccountSQL    = `SELECT account_id, balance, last_bonus_at FROM accounts WHERE account_id = $1`
	upsertAccountSQL = `
		INSERT INTO accounts (account_id, balance, last_bonus_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id) DO UPDATE
		SET balance = EXCLUDED.balance,
		    last_bonus_at = EXCLUDED.last_bonus_at,
		    updated_at = now()`
	topAccountsSQL = `SELECT account_id, balance FROM accounts ORDER BY balance DESC, account_id ASC LIMIT $1`
)

// Get returns the account, inserting the starting record first if it does not exist.
func (s *Store) Get(ctx context.Context, accountID int64) (Account, error) {
	if _, err := s.Pool.Exec(ctx, ensureAccountSQL, accountID, s.startingBalance); err != nil {
		return Account{}, fmt.Errorf("ensure account: %w", err)
	}
	var (
		a      Account
		lastAt pgtype.Timestamptz
	)
	if err := s.Pool.QueryRow(ctx, getAccountSQL, accountID).Scan(&a.ID, &a.Balance, &lastAt); err != nil {
		return Account{}, fmt.Errorf("get account: %w", err)
	}
	a.LastBonusClaim = timePtrVal(lastAt)
	return a, nil
}

func (s *Store) Put(ctx context.Context, a Account) error {
	if _, err := s.Pool.Exec(ctx, upsertAccountSQL, a.ID, a.Balance, timeParam(a.LastBonusClaim)); err != nil {
		return fmt.Errorf("put account: %w", err)
	}
	return nil
}

// PutAll writes every record in one transaction; either all land or none do.
func (s *Store) PutAll(ctx context.Context, accounts ...Account) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, a := range accounts {
		if _, err := tx.Exec(ctx, upsertAccountSQL, a.ID, a.Balance, timeParam(a.LastBonusClaim)); err != nil {
			return fmt.Errorf("put account %d: %w", a.ID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *Store) TopN(ctx context.Context, n int) ([]Standing, error) {
	if n <= 0 {
		return []Standing{}, nil
	}
	rows, err := s.Pool.Query(ctx, topAccountsSQL, n)
	if err != nil {
		return nil, fmt.Errorf("top accounts: %w", err)
	}
	defer rows.Close()
	out := make([]Standing, 0, n)
	for rows.Next() {
		var st Standing
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
