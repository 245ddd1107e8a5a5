// Package memstore is an in-process account store for tests and local runs.
//
// It is NOT durable: every account is lost when the process exits. Production
// deployments use the sqlite or postgres stores.
package memstore

import (
	"context"
	"sort"
	"sync"

	"velrixo-casino/internal/store"
)

type Store struct {
	mu              sync.RWMutex
	accounts        map[int64]store.Account
	startingBalance int64
}

func New(startingBalance int64) *Store {
	return &Store{accounts: make(map[int64]store.Account), startingBalance: startingBalance}
}

func (s *Store) Get(ctx context.Context, accountID int64) (store.Account, error) {
	if err := ctx.Err(); err != nil {
		return store.Account{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[accountID]
	if !ok {
		a = store.NewAccount(accountID, s.startingBalance)
		s.accounts[accountID] = a
	}
	return clone(a), nil
}

func (s *Store) Put(ctx context.Context, a store.Account) error {
	return s.PutAll(ctx, a)
}

func (s *Store) PutAll(ctx context.Context, accounts ...store.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range accounts {
		s.accounts[a.ID] = clone(a)
	}
	return nil
}

func (s *Store) TopN(ctx context.Context, n int) ([]store.Standing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return []store.Standing{}, nil
	}
	s.mu.RLock()
	out := make([]store.Standing, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, store.Standing{AccountID: a.ID, Balance: a.Balance})
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Balance != out[j].Balance {
			return out[i].Balance > out[j].Balance
		}
		return out[i].AccountID < out[j].AccountID
	})
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Close() error {
	return nil
}

func clone(a store.Account) store.Account {
	if a.LastBonusClaim != nil {
		t := *a.LastBonusClaim
		a.LastBonusClaim = &t
	}
	return a
}
