package ledger

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"velrixo-casino/internal/store"
	"velrixo-casino/internal/store/memstore"
	"velrixo-casino/internal/wager"
)

type scriptedSource struct {
	t     *testing.T
	mu    sync.Mutex
	draws []int
}

func (s *scriptedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.draws) == 0 {
		s.t.Errorf("scripted source exhausted (n=%d)", n)
		return 0
	}
	v := s.draws[0]
	s.draws = s.draws[1:]
	if v < 0 || v >= n {
		s.t.Errorf("scripted draw %d out of range [0,%d)", v, n)
		return 0
	}
	return v
}

func script(t *testing.T, draws ...int) *scriptedSource {
	return &scriptedSource{t: t, draws: draws}
}

// flakyStore fails the next getFailures reads and every write while failPuts is set.
type flakyStore struct {
	*memstore.Store
	mu          sync.Mutex
	getFailures int
	failPuts    bool
}

var errDiskGone = errors.New("disk gone")

func (f *flakyStore) Get(ctx context.Context, id int64) (store.Account, error) {
	f.mu.Lock()
	if f.getFailures > 0 {
		f.getFailures--
		f.mu.Unlock()
		return store.Account{}, errDiskGone
	}
	f.mu.Unlock()
	return f.Store.Get(ctx, id)
}

func (f *flakyStore) Put(ctx context.Context, a store.Account) error {
	return f.PutAll(ctx, a)
}

func (f *flakyStore) PutAll(ctx context.Context, accounts ...store.Account) error {
	f.mu.Lock()
	fail := f.failPuts
	f.mu.Unlock()
	if fail {
		return errDiskGone
	}
	return f.Store.PutAll(ctx, accounts...)
}

func newEngine(t *testing.T, src wager.Source) (*Engine, *memstore.Store) {
	t.Helper()
	st := memstore.New(store.DefaultStartingBalance)
	return New(st, src), st
}

func fixedWager(stake, delta int64) Wager {
	return Wager{
		Game:    wager.GameBet,
		Stake:   stake,
		Resolve: func() wager.Outcome { return wager.Outcome{Game: wager.GameBet, Delta: delta} },
	}
}

func mustBalance(t *testing.T, e *Engine, id int64) int64 {
	t.Helper()
	b, err := e.Balance(context.Background(), id)
	if err != nil {
		t.Fatalf("Balance(%d) error = %v", id, err)
	}
	return b
}

func TestBalanceDefaultsAndPersists(t *testing.T) {
	e, st := newEngine(t, script(t))
	if got := mustBalance(t, e, 7); got != 1000 {
		t.Fatalf("expected default balance 1000, got %d", got)
	}
	top, err := st.TopN(context.Background(), 10)
	if err != nil {
		t.Fatalf("TopN error = %v", err)
	}
	if len(top) != 1 || top[0].AccountID != 7 {
		t.Fatalf("expected account 7 to be persisted on first read, got %+v", top)
	}
}

func TestClaimBonusCooldown(t *testing.T) {
	e, _ := newEngine(t, script(t))
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	res, err := e.ClaimBonus(ctx, 1, now)
	if err != nil {
		t.Fatalf("first claim error = %v", err)
	}
	if res.Balance != 1500 || res.Credited != 500 {
		t.Fatalf("unexpected first claim: %+v", res)
	}
	if !res.NextClaimAt.Equal(now.Add(24 * time.Hour)) {
		t.Fatalf("unexpected next claim at %v", res.NextClaimAt)
	}

	_, err = e.ClaimBonus(ctx, 1, now.Add(time.Hour))
	var tooSoon *TooSoonError
	if !errors.As(err, &tooSoon) {
		t.Fatalf("expected TooSoonError, got %v", err)
	}
	if !errors.Is(err, ErrTooSoon) {
		t.Fatalf("expected errors.Is ErrTooSoon")
	}
	if tooSoon.Remaining != 23*time.Hour {
		t.Fatalf("expected 23h remaining, got %v", tooSoon.Remaining)
	}

	// Exactly one cooldown is still too soon.
	if _, err := e.ClaimBonus(ctx, 1, now.Add(24*time.Hour)); !errors.Is(err, ErrTooSoon) {
		t.Fatalf("expected too_soon at exactly 24h, got %v", err)
	}
	if got := mustBalance(t, e, 1); got != 1500 {
		t.Fatalf("rejected claims must not change balance, got %d", got)
	}

	res, err = e.ClaimBonus(ctx, 1, now.Add(24*time.Hour+time.Second))
	if err != nil {
		t.Fatalf("claim after cooldown error = %v", err)
	}
	if res.Balance != 2000 {
		t.Fatalf("expected 2000 after second claim, got %d", res.Balance)
	}
}

func TestClaimBonusClockSkewClampsRemaining(t *testing.T) {
	e, _ := newEngine(t, script(t))
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if _, err := e.ClaimBonus(context.Background(), 1, now); err != nil {
		t.Fatalf("claim error = %v", err)
	}
	_, err := e.ClaimBonus(context.Background(), 1, now.Add(-time.Hour))
	var tooSoon *TooSoonError
	if !errors.As(err, &tooSoon) {
		t.Fatalf("expected TooSoonError, got %v", err)
	}
	if tooSoon.Remaining != 24*time.Hour {
		t.Fatalf("remaining should be clamped to the cooldown, got %v", tooSoon.Remaining)
	}
}

func TestConcurrentClaimsCreditOnce(t *testing.T) {
	e, _ := newEngine(t, script(t))
	now := time.Now()
	const n = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	ok, rejected := 0, 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.ClaimBonus(context.Background(), 3, now)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrTooSoon):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	if ok != 1 || rejected != n-1 {
		t.Fatalf("expected 1 success and %d rejections, got %d/%d", n-1, ok, rejected)
	}
	if got := mustBalance(t, e, 3); got != 1500 {
		t.Fatalf("expected 1500, got %d", got)
	}
}

func TestConcurrentSettlementsNoLostUpdates(t *testing.T) {
	e, _ := newEngine(t, script(t))
	const n = 8
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := e.SettleWager(context.Background(), 5, fixedWager(100, -100)); err != nil {
				t.Errorf("settle error = %v", err)
			}
		}()
	}
	wg.Wait()
	if got := mustBalance(t, e, 5); got != 1000-n*100 {
		t.Fatalf("expected %d, got %d", 1000-n*100, got)
	}
}

func TestConcurrentSettlementsNeverOverdraw(t *testing.T) {
	e, _ := newEngine(t, script(t))
	const n = 25
	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.SettleWager(context.Background(), 9, fixedWager(100, -100))
			if err != nil && !errors.Is(err, ErrInsufficientFunds) {
				t.Errorf("unexpected error: %v", err)
			}
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if accepted != 10 {
		t.Fatalf("expected exactly 10 accepted wagers, got %d", accepted)
	}
	if got := mustBalance(t, e, 9); got != 0 {
		t.Fatalf("expected balance 0, got %d", got)
	}
}

func TestSpinPayouts(t *testing.T) {
	tests := []struct {
		name  string
		draws []int
		delta int64
	}{
		{name: "jackpot", draws: []int{0, 0, 0}, delta: 500},
		{name: "pair", draws: []int{2, 4, 2}, delta: 200},
		{name: "no match", draws: []int{0, 1, 2}, delta: -100},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e, _ := newEngine(t, script(t, tc.draws...))
			s, err := e.Spin(context.Background(), 1)
			if err != nil {
				t.Fatalf("Spin error = %v", err)
			}
			if s.Delta != tc.delta || s.Balance != 1000+tc.delta {
				t.Fatalf("unexpected settlement: %+v", s)
			}
			if s.ID == "" || s.Game != wager.GameSpin || s.Detail == "" {
				t.Fatalf("settlement missing fields: %+v", s)
			}
		})
	}
}

func TestCoinflipAndBet(t *testing.T) {
	// coinflip: face draw, then win draw (0 = heads/win)
	e, _ := newEngine(t, script(t, 1, 0, 1))
	s, err := e.Coinflip(context.Background(), 1)
	if err != nil {
		t.Fatalf("Coinflip error = %v", err)
	}
	if s.Delta != 100 || s.Balance != 1100 {
		t.Fatalf("unexpected coinflip settlement: %+v", s)
	}
	s, err = e.Bet(context.Background(), 1, 600)
	if err != nil {
		t.Fatalf("Bet error = %v", err)
	}
	if s.Delta != -600 || s.Balance != 500 {
		t.Fatalf("unexpected bet settlement: %+v", s)
	}
}

func TestBetRejectsUnaffordableAndNonPositive(t *testing.T) {
	for _, amount := range []int64{0, -5, 1001} {
		e, _ := newEngine(t, script(t))
		if _, err := e.Bet(context.Background(), 1, amount); !errors.Is(err, ErrInsufficientFunds) {
			t.Fatalf("Bet(%d) expected insufficient_funds, got %v", amount, err)
		}
		if got := mustBalance(t, e, 1); got != 1000 {
			t.Fatalf("rejected bet changed balance to %d", got)
		}
	}
}

func TestBlackjackRequiresStake(t *testing.T) {
	e, _ := newEngine(t, script(t))
	if _, err := e.SettleWager(context.Background(), 2, fixedWager(900, -900)); err != nil {
		t.Fatalf("drain error = %v", err)
	}
	// 100 left, below the 200 stake; the resolver must not be consulted.
	if _, err := e.Blackjack(context.Background(), 2); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient_funds, got %v", err)
	}
	if got := mustBalance(t, e, 2); got != 100 {
		t.Fatalf("expected 100, got %d", got)
	}
}

func TestBlackjackPayout(t *testing.T) {
	// player 15+5=20, dealer 17+0=17
	e, _ := newEngine(t, script(t, 5, 0))
	s, err := e.Blackjack(context.Background(), 4)
	if err != nil {
		t.Fatalf("Blackjack error = %v", err)
	}
	if s.Delta != 300 || s.Balance != 1300 {
		t.Fatalf("unexpected blackjack settlement: %+v", s)
	}
}

func TestSettleClampsAtZero(t *testing.T) {
	e, _ := newEngine(t, script(t))
	s, err := e.SettleWager(context.Background(), 1, fixedWager(100, -5000))
	if err != nil {
		t.Fatalf("settle error = %v", err)
	}
	if !s.Clamped || s.Delta != -1000 || s.Balance != 0 {
		t.Fatalf("expected clamped settlement to zero, got %+v", s)
	}
}

func seedBalance(t *testing.T, st *memstore.Store, id, balance int64) {
	t.Helper()
	if err := st.Put(context.Background(), store.Account{ID: id, Balance: balance}); err != nil {
		t.Fatalf("seed account %d: %v", id, err)
	}
}

func TestSettleRejectsOverflowingWin(t *testing.T) {
	e, st := newEngine(t, script(t))
	seedBalance(t, st, 1, math.MaxInt64-100)

	if _, err := e.SettleWager(context.Background(), 1, fixedWager(100, 500)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid_amount, got %v", err)
	}
	if got := mustBalance(t, e, 1); got != math.MaxInt64-100 {
		t.Fatalf("rejected win must not change balance, got %d", got)
	}

	s, err := e.SettleWager(context.Background(), 1, fixedWager(100, 100))
	if err != nil {
		t.Fatalf("settle up to the limit error = %v", err)
	}
	if s.Clamped || s.Balance != math.MaxInt64 {
		t.Fatalf("unexpected settlement at the limit: %+v", s)
	}
}

func TestClaimBonusRejectsOverflow(t *testing.T) {
	e, st := newEngine(t, script(t))
	seedBalance(t, st, 1, math.MaxInt64-100)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if _, err := e.ClaimBonus(context.Background(), 1, now); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid_amount, got %v", err)
	}
	a, err := st.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if a.Balance != math.MaxInt64-100 || a.LastBonusClaim != nil {
		t.Fatalf("rejected claim must not write, got %+v", a)
	}
}

func TestClaimInstantRoundsUpToMillisecond(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		in   time.Time
		want time.Time
	}{
		{in: base, want: base},
		{in: base.Add(time.Millisecond), want: base.Add(time.Millisecond)},
		{in: base.Add(999 * time.Microsecond), want: base.Add(time.Millisecond)},
		{in: base.Add(time.Nanosecond), want: base.Add(time.Millisecond)},
	}
	for _, tc := range tests {
		if got := claimInstant(tc.in); !got.Equal(tc.want) {
			t.Fatalf("claimInstant(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestSettleRejectsNilResolver(t *testing.T) {
	e, _ := newEngine(t, script(t))
	if _, err := e.SettleWager(context.Background(), 1, Wager{Game: wager.GameBet, Stake: 10}); !errors.Is(err, ErrInvalidWager) {
		t.Fatalf("expected invalid_wager, got %v", err)
	}
}

func TestTransfer(t *testing.T) {
	e, _ := newEngine(t, script(t))
	ctx := context.Background()
	res, err := e.Transfer(ctx, 1, 2, 250)
	if err != nil {
		t.Fatalf("Transfer error = %v", err)
	}
	if res.SenderBalance != 750 || res.ReceiverBalance != 1250 {
		t.Fatalf("unexpected result: %+v", res)
	}

	tests := []struct {
		name     string
		from, to int64
		amount   int64
		want     error
	}{
		{name: "self", from: 1, to: 1, amount: 10, want: ErrSelfTransfer},
		{name: "zero", from: 1, to: 2, amount: 0, want: ErrInvalidAmount},
		{name: "negative", from: 1, to: 2, amount: -10, want: ErrInvalidAmount},
		{name: "too much", from: 1, to: 2, amount: 751, want: ErrInsufficientFunds},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := e.Transfer(ctx, tc.from, tc.to, tc.amount); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if a, b := mustBalance(t, e, 1), mustBalance(t, e, 2); a != 750 || b != 1250 {
				t.Fatalf("rejected transfer changed balances: %d %d", a, b)
			}
		})
	}
}

func TestTransferWholeBalance(t *testing.T) {
	e, _ := newEngine(t, script(t))
	res, err := e.Transfer(context.Background(), 1, 2, 1000)
	if err != nil {
		t.Fatalf("Transfer error = %v", err)
	}
	if res.SenderBalance != 0 || res.ReceiverBalance != 2000 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestOppositeTransfersConserveAndFinish(t *testing.T) {
	e, _ := newEngine(t, script(t))
	const rounds = 200
	done := make(chan struct{})
	go func() {
		defer close(done)
		var wg sync.WaitGroup
		for i := 0; i < rounds; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				_, _ = e.Transfer(context.Background(), 1, 2, 3)
			}()
			go func() {
				defer wg.Done()
				_, _ = e.Transfer(context.Background(), 2, 1, 5)
			}()
		}
		wg.Wait()
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("opposite transfers did not finish")
	}
	if sum := mustBalance(t, e, 1) + mustBalance(t, e, 2); sum != 2000 {
		t.Fatalf("transfers must conserve coins, sum = %d", sum)
	}
	if n := e.locks.size(); n != 0 {
		t.Fatalf("lock table should be empty after all releases, has %d", n)
	}
}

func TestStorageFailureLeavesStateUnchanged(t *testing.T) {
	flaky := &flakyStore{Store: memstore.New(store.DefaultStartingBalance)}
	e := New(flaky, script(t))
	ctx := context.Background()
	if got := mustBalance(t, e, 1); got != 1000 {
		t.Fatalf("expected 1000, got %d", got)
	}

	flaky.failPuts = true
	if _, err := e.SettleWager(ctx, 1, fixedWager(100, -100)); !errors.Is(err, ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	var se *store.StorageError
	if _, err := e.Transfer(ctx, 1, 2, 10); !errors.As(err, &se) {
		t.Fatalf("expected *StorageError, got %v", err)
	}
	if _, err := e.ClaimBonus(ctx, 1, time.Now()); !errors.Is(err, ErrStorage) {
		t.Fatalf("expected storage error on claim, got %v", err)
	}
	flaky.failPuts = false

	if a, b := mustBalance(t, e, 1), mustBalance(t, e, 2); a != 1000 || b != 1000 {
		t.Fatalf("failed writes must not change balances: %d %d", a, b)
	}
}

func TestReadsAreRetried(t *testing.T) {
	flaky := &flakyStore{Store: memstore.New(store.DefaultStartingBalance), getFailures: 2}
	e := New(flaky, script(t), WithReadRetries(3))
	if got := mustBalance(t, e, 1); got != 1000 {
		t.Fatalf("expected 1000 after retried read, got %d", got)
	}

	flaky.getFailures = 5
	e = New(flaky, script(t), WithReadRetries(2))
	if _, err := e.Balance(context.Background(), 1); !errors.Is(err, ErrStorage) || !errors.Is(err, errDiskGone) {
		t.Fatalf("expected wrapped storage error, got %v", err)
	}
}

func TestWithBonusOverrides(t *testing.T) {
	st := memstore.New(store.DefaultStartingBalance)
	e := New(st, script(t), WithBonus(50, time.Minute))
	now := time.Now()
	if _, err := e.ClaimBonus(context.Background(), 1, now); err != nil {
		t.Fatalf("claim error = %v", err)
	}
	res, err := e.ClaimBonus(context.Background(), 1, now.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("second claim error = %v", err)
	}
	if res.Balance != 1100 {
		t.Fatalf("expected 1100, got %d", res.Balance)
	}
}
