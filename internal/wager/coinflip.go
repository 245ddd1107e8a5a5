package wager

type Face string

const (
	Heads Face = "heads"
	Tails Face = "tails"
)

type CoinflipResult struct {
	Face  Face
	Won   bool
	Delta int64
}

// ResolveCoinflip shows a face and tosses for the result separately; the
// player never calls a side, so the face carries no meaning for the payout.
func ResolveCoinflip(src Source, bet int64) CoinflipResult {
	face := Tails
	if coinToss(src) {
		face = Heads
	}
	won := coinToss(src)
	delta := -bet
	if won {
		delta = bet
	}
	return CoinflipResult{Face: face, Won: won, Delta: delta}
}

func (r CoinflipResult) Outcome() Outcome {
	return Outcome{Game: GameCoinflip, Delta: r.Delta, Detail: string(r.Face) + ", " + signed(r.Delta)}
}
