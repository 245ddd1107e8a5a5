package wager

import "strings"

type Symbol int

const (
	Cherry Symbol = iota
	Lemon
	Bell
	Star
	Diamond
)

var reel = [...]Symbol{Cherry, Lemon, Bell, Star, Diamond}

func (s Symbol) String() string {
	switch s {
	case Cherry:
		return "cherry"
	case Lemon:
		return "lemon"
	case Bell:
		return "bell"
	case Star:
		return "star"
	case Diamond:
		return "diamond"
	default:
		return "unknown"
	}
}

func (s Symbol) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type SpinResult struct {
	Symbols [3]Symbol
	Delta   int64
}

// ResolveSpin draws three independent symbols. Three of a kind pays 5x, any
// pair pays 2x, all distinct loses the bet.
func ResolveSpin(src Source, bet int64) SpinResult {
	var symbols [3]Symbol
	for i := range symbols {
		symbols[i] = reel[src.IntN(len(reel))]
	}
	return SpinResult{Symbols: symbols, Delta: SpinDelta(symbols, bet)}
}

func SpinDelta(symbols [3]Symbol, bet int64) int64 {
	a, b, c := symbols[0], symbols[1], symbols[2]
	switch {
	case a == b && b == c:
		return spinJackpotFactor * bet
	case a == b || b == c || a == c:
		return spinPairFactor * bet
	default:
		return -bet
	}
}

func (r SpinResult) Outcome() Outcome {
	names := make([]string, len(r.Symbols))
	for i, s := range r.Symbols {
		names[i] = s.String()
	}
	label := "no match"
	if r.Delta > 0 {
		label = "pair"
		if r.Symbols[0] == r.Symbols[1] && r.Symbols[1] == r.Symbols[2] {
			label = "jackpot"
		}
	}
	return Outcome{
		Game:   GameSpin,
		Delta:  r.Delta,
		Detail: "[" + strings.Join(names, " ") + "] " + label + ", " + signed(r.Delta),
	}
}
