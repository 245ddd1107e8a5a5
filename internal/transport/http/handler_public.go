package httptransport

import (
	"net/http"

	"velrixo-casino/internal/wager"
)

type PublicHandlers struct {
	board           Leaderboard
	startingBalance int64
}

func NewPublicHandlers(board Leaderboard, startingBalance int64) *PublicHandlers {
	return &PublicHandlers{board: board, startingBalance: startingBalance}
}

type GameCommand struct {
	Command     string `json:"command"`
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
	Stake       int64  `json:"stake,omitempty"`
}

type GamesResponse struct {
	Welcome         string        `json:"welcome"`
	StartingBalance int64         `json:"starting_balance"`
	Commands        []GameCommand `json:"commands"`
}

var commandCatalog = []GameCommand{
	{Command: "balance", Method: http.MethodGet, Path: "/api/accounts/{account_id}/balance", Description: "Check coins"},
	{Command: "dailybonus", Method: http.MethodPost, Path: "/api/accounts/{account_id}/bonus", Description: "Claim bonus"},
	{Command: "spin", Method: http.MethodPost, Path: "/api/accounts/{account_id}/spin", Description: "Slot machine", Stake: wager.SpinBet},
	{Command: "coinflip", Method: http.MethodPost, Path: "/api/accounts/{account_id}/coinflip", Description: "Flip a coin", Stake: wager.CoinflipBet},
	{Command: "blackjack", Method: http.MethodPost, Path: "/api/accounts/{account_id}/blackjack", Description: "Play blackjack", Stake: wager.BlackjackStake},
	{Command: "bet", Method: http.MethodPost, Path: "/api/accounts/{account_id}/bet", Description: "Simple bet, body {\"amount\": n}"},
	{Command: "transfer", Method: http.MethodPost, Path: "/api/accounts/{account_id}/transfer", Description: "Send coins, body {\"to_account_id\": id, \"amount\": n}"},
	{Command: "leaderboard", Method: http.MethodGet, Path: "/api/leaderboard", Description: "Top players"},
}

func (h *PublicHandlers) Games() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, GamesResponse{
			Welcome:         "Welcome to Velrixo Casino",
			StartingBalance: h.startingBalance,
			Commands:        commandCatalog,
		})
	}
}

func (h *PublicHandlers) Leaderboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		board, err := h.board.Top(r.Context(), parseLimit(r))
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, board)
	}
}
