package wager

type FlatBetResult struct {
	Won   bool
	Delta int64
}

func ResolveFlatBet(src Source, amount int64) FlatBetResult {
	if coinToss(src) {
		return FlatBetResult{Won: true, Delta: amount}
	}
	return FlatBetResult{Won: false, Delta: -amount}
}

func (r FlatBetResult) Outcome() Outcome {
	return Outcome{Game: GameBet, Delta: r.Delta, Detail: signed(r.Delta)}
}
