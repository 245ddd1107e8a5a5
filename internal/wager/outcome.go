// Package wager resolves game rounds. Resolvers are pure: they read only the
// injected Source and their arguments, and never check affordability.
package wager

import "strconv"

type Game string

const (
	GameSpin      Game = "spin"
	GameCoinflip  Game = "coinflip"
	GameBlackjack Game = "blackjack"
	GameBet       Game = "bet"
)

const (
	SpinBet           int64 = 100
	CoinflipBet       int64 = 100
	BlackjackStake    int64 = 200
	BlackjackPayout   int64 = 300
	spinJackpotFactor int64 = 5
	spinPairFactor    int64 = 2
)

// Outcome is what a settlement applies: a signed delta plus a line the
// presentation layer can show as is.
type Outcome struct {
	Game   Game   `json:"game"`
	Delta  int64  `json:"delta"`
	Detail string `json:"detail"`
}

func signed(delta int64) string {
	switch {
	case delta > 0:
		return "won " + itoa(delta)
	case delta < 0:
		return "lost " + itoa(-delta)
	default:
		return "no change"
	}
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
