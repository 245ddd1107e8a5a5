package wager

type Verdict string

const (
	VerdictBust       Verdict = "bust"
	VerdictWin        Verdict = "win"
	VerdictPush       Verdict = "push"
	VerdictDealerWins Verdict = "dealer_wins"
)

const (
	playerMin, playerMax = 15, 23
	dealerMin, dealerMax = 17, 21
	blackjackLimit       = 21
)

type BlackjackResult struct {
	Player  int
	Dealer  int
	Verdict Verdict
	Delta   int64
}

// ResolveBlackjack plays one fixed-stake hand: lose BlackjackStake, win
// BlackjackPayout, or push.
func ResolveBlackjack(src Source) BlackjackResult {
	player := playerMin + src.IntN(playerMax-playerMin+1)
	dealer := dealerMin + src.IntN(dealerMax-dealerMin+1)
	verdict, delta := JudgeBlackjack(player, dealer)
	return BlackjackResult{Player: player, Dealer: dealer, Verdict: verdict, Delta: delta}
}

// JudgeBlackjack checks in order: player bust, dealer bust or player higher, tie.
func JudgeBlackjack(player, dealer int) (Verdict, int64) {
	switch {
	case player > blackjackLimit:
		return VerdictBust, -BlackjackStake
	case dealer > blackjackLimit || player > dealer:
		return VerdictWin, BlackjackPayout
	case player == dealer:
		return VerdictPush, 0
	default:
		return VerdictDealerWins, -BlackjackStake
	}
}

func (r BlackjackResult) Outcome() Outcome {
	return Outcome{
		Game:   GameBlackjack,
		Delta:  r.Delta,
		Detail: "player " + itoa(int64(r.Player)) + ", dealer " + itoa(int64(r.Dealer)) + ": " + string(r.Verdict) + ", " + signed(r.Delta),
	}
}
