// Package ledger is the only writer of account balances. Every operation
// holds the lock of each account it touches for its whole read-modify-write,
// so operations on one account are linearizable while disjoint accounts
// proceed in parallel.
package ledger

import (
	"context"
	"math"
	"time"

	"velrixo-casino/internal/store"
	"velrixo-casino/internal/wager"

	"github.com/rs/zerolog/log"
)

const (
	DefaultBonusAmount   int64 = 500
	DefaultBonusCooldown       = 24 * time.Hour
	defaultReadRetries   uint  = 3
)

// AccountStore is the persistence the engine needs. PutAll must be
// all-or-nothing.
type AccountStore interface {
	Get(ctx context.Context, accountID int64) (store.Account, error)
	Put(ctx context.Context, a store.Account) error
	PutAll(ctx context.Context, accounts ...store.Account) error
}

type Engine struct {
	store         AccountStore
	src           wager.Source
	locks         *lockTable
	bonusAmount   int64
	bonusCooldown time.Duration
	readRetries   uint
}

type Option func(*Engine)

func WithBonus(amount int64, cooldown time.Duration) Option {
	return func(e *Engine) {
		if amount > 0 {
			e.bonusAmount = amount
		}
		if cooldown > 0 {
			e.bonusCooldown = cooldown
		}
	}
}

func WithReadRetries(n uint) Option {
	return func(e *Engine) {
		if n > 0 {
			e.readRetries = n
		}
	}
}

func New(st AccountStore, src wager.Source, opts ...Option) *Engine {
	e := &Engine{
		store:         st,
		src:           src,
		locks:         newLockTable(),
		bonusAmount:   DefaultBonusAmount,
		bonusCooldown: DefaultBonusCooldown,
		readRetries:   defaultReadRetries,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type ClaimResult struct {
	Balance     int64     `json:"balance"`
	Credited    int64     `json:"credited"`
	ClaimedAt   time.Time `json:"claimed_at"`
	NextClaimAt time.Time `json:"next_claim_at"`
}

// Wager describes one round to settle. Stake is the most the round can lose
// and must be covered by the balance before Resolve runs.
type Wager struct {
	Game    wager.Game
	Stake   int64
	Resolve func() wager.Outcome
}

type Settlement struct {
	ID      string     `json:"settlement_id"`
	Game    wager.Game `json:"game"`
	Delta   int64      `json:"delta"`
	Balance int64      `json:"balance"`
	Detail  string     `json:"detail"`
	Clamped bool       `json:"clamped,omitempty"`
}

type TransferResult struct {
	SenderBalance   int64 `json:"sender_balance"`
	ReceiverBalance int64 `json:"receiver_balance"`
}

// Balance reads without taking the account lock; the store returns the last
// committed value.
func (e *Engine) Balance(ctx context.Context, accountID int64) (int64, error) {
	acct, err := e.load(ctx, accountID)
	if err != nil {
		return 0, err
	}
	return acct.Balance, nil
}

// ClaimBonus credits the bonus when no claim exists or the last one is
// strictly older than the cooldown. Otherwise it returns *TooSoonError.
func (e *Engine) ClaimBonus(ctx context.Context, accountID int64, now time.Time) (ClaimResult, error) {
	release := e.locks.acquire(accountID)
	defer release()

	acct, err := e.load(ctx, accountID)
	if err != nil {
		return ClaimResult{}, err
	}
	if acct.LastBonusClaim != nil {
		elapsed := now.Sub(*acct.LastBonusClaim)
		if elapsed <= e.bonusCooldown {
			remaining := min(e.bonusCooldown-elapsed, e.bonusCooldown)
			bonusRejectionsTotal.Add(1)
			log.Debug().Int64("account_id", accountID).Dur("remaining", remaining).Msg("bonus claim too soon")
			return ClaimResult{}, &TooSoonError{Remaining: remaining}
		}
	}

	if acct.Balance > math.MaxInt64-e.bonusAmount {
		bonusRejectionsTotal.Add(1)
		return ClaimResult{}, ErrInvalidAmount
	}

	claimedAt := claimInstant(now)
	acct.Balance += e.bonusAmount
	acct.LastBonusClaim = &claimedAt
	if err := e.store.Put(context.WithoutCancel(ctx), acct); err != nil {
		return ClaimResult{}, e.storageFailure("put", accountID, err)
	}
	bonusClaimsTotal.Add(1)
	log.Debug().Int64("account_id", accountID).Int64("balance", acct.Balance).Msg("bonus claimed")
	return ClaimResult{
		Balance:     acct.Balance,
		Credited:    e.bonusAmount,
		ClaimedAt:   claimedAt,
		NextClaimAt: claimedAt.Add(e.bonusCooldown),
	}, nil
}

// SettleWager checks the stake against the balance read under the lock,
// resolves the round and applies its delta. A loss that would overdraw the
// account is clamped so the balance stops at zero; a win that would overflow
// the balance is rejected with ErrInvalidAmount.
func (e *Engine) SettleWager(ctx context.Context, accountID int64, w Wager) (Settlement, error) {
	if w.Resolve == nil {
		return Settlement{}, ErrInvalidWager
	}

	release := e.locks.acquire(accountID)
	defer release()

	acct, err := e.load(ctx, accountID)
	if err != nil {
		return Settlement{}, err
	}
	if w.Stake <= 0 || w.Stake > acct.Balance {
		settlementRejectionsTotal.Add(1)
		log.Debug().Int64("account_id", accountID).Str("game", string(w.Game)).
			Int64("stake", w.Stake).Int64("balance", acct.Balance).Msg("wager rejected")
		return Settlement{}, ErrInsufficientFunds
	}

	out := w.Resolve()
	s := Settlement{
		ID:     newSettlementID(),
		Game:   w.Game,
		Delta:  out.Delta,
		Detail: out.Detail,
	}
	if s.Delta > 0 && s.Delta > math.MaxInt64-acct.Balance {
		settlementRejectionsTotal.Add(1)
		log.Warn().Int64("account_id", accountID).Str("game", string(w.Game)).
			Int64("delta", s.Delta).Int64("balance", acct.Balance).Msg("settlement would overflow balance")
		return Settlement{}, ErrInvalidAmount
	}
	if s.Delta < 0 && acct.Balance+s.Delta < 0 {
		s.Delta = -acct.Balance
		s.Clamped = true
		clampedSettlementsTotal.Add(1)
		log.Warn().Int64("account_id", accountID).Str("settlement_id", s.ID).Str("game", string(w.Game)).
			Int64("resolved_delta", out.Delta).Int64("applied_delta", s.Delta).Msg("settlement clamped at zero")
	}
	acct.Balance += s.Delta
	if err := e.store.Put(context.WithoutCancel(ctx), acct); err != nil {
		return Settlement{}, e.storageFailure("put", accountID, err)
	}
	s.Balance = acct.Balance
	settlementsTotal.Add(1)
	log.Debug().Int64("account_id", accountID).Str("settlement_id", s.ID).Str("game", string(w.Game)).
		Int64("delta", s.Delta).Int64("balance", s.Balance).Msg("wager settled")
	return s, nil
}

func (e *Engine) Spin(ctx context.Context, accountID int64) (Settlement, error) {
	return e.SettleWager(ctx, accountID, Wager{
		Game:  wager.GameSpin,
		Stake: wager.SpinBet,
		Resolve: func() wager.Outcome {
			return wager.ResolveSpin(e.src, wager.SpinBet).Outcome()
		},
	})
}

func (e *Engine) Coinflip(ctx context.Context, accountID int64) (Settlement, error) {
	return e.SettleWager(ctx, accountID, Wager{
		Game:  wager.GameCoinflip,
		Stake: wager.CoinflipBet,
		Resolve: func() wager.Outcome {
			return wager.ResolveCoinflip(e.src, wager.CoinflipBet).Outcome()
		},
	})
}

// Blackjack needs the full losing stake up front even though no bet is placed.
func (e *Engine) Blackjack(ctx context.Context, accountID int64) (Settlement, error) {
	return e.SettleWager(ctx, accountID, Wager{
		Game:  wager.GameBlackjack,
		Stake: wager.BlackjackStake,
		Resolve: func() wager.Outcome {
			return wager.ResolveBlackjack(e.src).Outcome()
		},
	})
}

// Bet settles a caller-chosen stake; amount is untrusted input.
func (e *Engine) Bet(ctx context.Context, accountID, amount int64) (Settlement, error) {
	return e.SettleWager(ctx, accountID, Wager{
		Game:  wager.GameBet,
		Stake: amount,
		Resolve: func() wager.Outcome {
			return wager.ResolveFlatBet(e.src, amount).Outcome()
		},
	})
}

// Transfer moves amount from one account to another. Both accounts are
// locked in ascending id order and written in one store transaction.
func (e *Engine) Transfer(ctx context.Context, fromID, toID, amount int64) (TransferResult, error) {
	if fromID == toID {
		transferRejectionsTotal.Add(1)
		return TransferResult{}, ErrSelfTransfer
	}
	if amount <= 0 {
		transferRejectionsTotal.Add(1)
		return TransferResult{}, ErrInvalidAmount
	}

	release := e.locks.acquire(fromID, toID)
	defer release()

	sender, err := e.load(ctx, fromID)
	if err != nil {
		return TransferResult{}, err
	}
	receiver, err := e.load(ctx, toID)
	if err != nil {
		return TransferResult{}, err
	}
	if amount > sender.Balance {
		transferRejectionsTotal.Add(1)
		log.Debug().Int64("from_account_id", fromID).Int64("to_account_id", toID).
			Int64("amount", amount).Int64("balance", sender.Balance).Msg("transfer rejected")
		return TransferResult{}, ErrInsufficientFunds
	}
	if receiver.Balance > math.MaxInt64-amount {
		transferRejectionsTotal.Add(1)
		return TransferResult{}, ErrInvalidAmount
	}

	sender.Balance -= amount
	receiver.Balance += amount
	if err := e.store.PutAll(context.WithoutCancel(ctx), sender, receiver); err != nil {
		return TransferResult{}, e.storageFailure("put_all", fromID, err)
	}
	transfersTotal.Add(1)
	log.Debug().Int64("from_account_id", fromID).Int64("to_account_id", toID).Int64("amount", amount).Msg("transfer applied")
	return TransferResult{SenderBalance: sender.Balance, ReceiverBalance: receiver.Balance}, nil
}

// claimInstant rounds now up to the millisecond, the coarsest precision a
// store keeps, so the persisted claim is never earlier than the real one.
func claimInstant(now time.Time) time.Time {
	t := now.UTC()
	if r := t.Truncate(time.Millisecond); r.Before(t) {
		return r.Add(time.Millisecond)
	}
	return t
}

// load is an idempotent read (Get only inserts a missing default record), so
// it is safe to retry.
func (e *Engine) load(ctx context.Context, accountID int64) (store.Account, error) {
	acct, err := store.ReadWithRetry(ctx, e.readRetries, "get", func(ctx context.Context) (store.Account, error) {
		return e.store.Get(ctx, accountID)
	})
	if err != nil {
		return store.Account{}, e.storageFailure("get", accountID, err)
	}
	return acct, nil
}

func (e *Engine) storageFailure(op string, accountID int64, err error) error {
	storageErrorsTotal.Add(1)
	log.Error().Err(err).Str("op", op).Int64("account_id", accountID).Msg("account store failure")
	return store.WrapStorage(op, err)
}
