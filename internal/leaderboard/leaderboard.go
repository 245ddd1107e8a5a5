// Package leaderboard ranks accounts by balance. It reads committed state
// straight from the store and never takes ledger locks, so a board may be a
// moment behind in-flight settlements.
package leaderboard

import (
	"context"

	"velrixo-casino/internal/store"
)

const (
	DefaultSize = 10
	MaxSize     = 100
	readRetries = 3
)

type Source interface {
	TopN(ctx context.Context, n int) ([]store.Standing, error)
}

type Options struct {
	DefaultSize int
	MaxSize     int
	ReadRetries uint
}

type Entry struct {
	Rank      int   `json:"rank"`
	AccountID int64 `json:"account_id"`
	Balance   int64 `json:"balance"`
}

type Board struct {
	Items []Entry `json:"items"`
	Limit int     `json:"limit"`
}

type Query struct {
	src  Source
	opts Options
}

func New(src Source, opts Options) *Query {
	if opts.DefaultSize <= 0 {
		opts.DefaultSize = DefaultSize
	}
	if opts.MaxSize <= 0 {
		opts.MaxSize = MaxSize
	}
	if opts.DefaultSize > opts.MaxSize {
		opts.DefaultSize = opts.MaxSize
	}
	if opts.ReadRetries == 0 {
		opts.ReadRetries = readRetries
	}
	return &Query{src: src, opts: opts}
}

// Top returns up to n accounts by balance descending, ties by ascending id.
func (q *Query) Top(ctx context.Context, n int) (Board, error) {
	limit := q.clamp(n)
	rows, err := store.ReadWithRetry(ctx, q.opts.ReadRetries, "top_n", func(ctx context.Context) ([]store.Standing, error) {
		return q.src.TopN(ctx, limit)
	})
	if err != nil {
		return Board{}, err
	}
	items := make([]Entry, 0, len(rows))
	for i, r := range rows {
		items = append(items, Entry{Rank: i + 1, AccountID: r.AccountID, Balance: r.Balance})
	}
	return Board{Items: items, Limit: limit}, nil
}

func (q *Query) clamp(n int) int {
	switch {
	case n <= 0:
		return q.opts.DefaultSize
	case n > q.opts.MaxSize:
		return q.opts.MaxSize
	default:
		return n
	}
}
