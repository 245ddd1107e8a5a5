package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"velrixo-casino/internal/ledger"

	"github.com/rs/zerolog/log"
)

const maxRequestBytes = 1 << 16

type AccountHandlers struct {
	ledger Ledger
	now    func() time.Time
}

func NewAccountHandlers(l Ledger, now func() time.Time) *AccountHandlers {
	return &AccountHandlers{ledger: l, now: now}
}

type BalanceResponse struct {
	AccountID int64 `json:"account_id"`
	Balance   int64 `json:"balance"`
}

type BetRequest struct {
	Amount int64 `json:"amount"`
}

type TransferRequest struct {
	ToAccountID int64 `json:"to_account_id"`
	Amount      int64 `json:"amount"`
}

type TransferResponse struct {
	FromAccountID int64 `json:"from_account_id"`
	ToAccountID   int64 `json:"to_account_id"`
	Amount        int64 `json:"amount"`
	ledger.TransferResult
}

func (h *AccountHandlers) Balance() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseAccountID(r)
		if !ok {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		bal, err := h.ledger.Balance(r.Context(), id)
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, BalanceResponse{AccountID: id, Balance: bal})
	}
}

func (h *AccountHandlers) Bonus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseAccountID(r)
		if !ok {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		accountCommandsTotal.Add("bonus", 1)
		res, err := h.ledger.ClaimBonus(r.Context(), id, h.now())
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func (h *AccountHandlers) Spin() http.HandlerFunc {
	return h.fixedGame("spin", Ledger.Spin)
}

func (h *AccountHandlers) Coinflip() http.HandlerFunc {
	return h.fixedGame("coinflip", Ledger.Coinflip)
}

func (h *AccountHandlers) Blackjack() http.HandlerFunc {
	return h.fixedGame("blackjack", Ledger.Blackjack)
}

func (h *AccountHandlers) fixedGame(name string, play func(Ledger, context.Context, int64) (ledger.Settlement, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseAccountID(r)
		if !ok {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		accountCommandsTotal.Add(name, 1)
		s, err := play(h.ledger, r.Context(), id)
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

func (h *AccountHandlers) Bet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseAccountID(r)
		if !ok {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		var req BetRequest
		if err := decodeJSON(r, &req); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		accountCommandsTotal.Add("bet", 1)
		s, err := h.ledger.Bet(r.Context(), id, req.Amount)
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

func (h *AccountHandlers) Transfer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseAccountID(r)
		if !ok {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		var req TransferRequest
		if err := decodeJSON(r, &req); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		accountCommandsTotal.Add("transfer", 1)
		res, err := h.ledger.Transfer(r.Context(), id, req.ToAccountID, req.Amount)
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, TransferResponse{
			FromAccountID:  id,
			ToAccountID:    req.ToAccountID,
			Amount:         req.Amount,
			TransferResult: res,
		})
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeLedgerError(w http.ResponseWriter, err error) {
	var tooSoon *ledger.TooSoonError
	switch {
	case errors.As(err, &tooSoon):
		secs := int64(math.Ceil(tooSoon.Remaining.Seconds()))
		w.Header().Set("Retry-After", strconv.FormatInt(secs, 10))
		writeHTTPErrorFields(w, http.StatusTooManyRequests, "too_soon", map[string]any{"retry_after_seconds": secs})
	case errors.Is(err, ledger.ErrInsufficientFunds):
		WriteHTTPError(w, http.StatusConflict, "insufficient_funds")
	case errors.Is(err, ledger.ErrInvalidAmount):
		WriteHTTPError(w, http.StatusBadRequest, "invalid_amount")
	case errors.Is(err, ledger.ErrSelfTransfer):
		WriteHTTPError(w, http.StatusBadRequest, "self_transfer")
	case errors.Is(err, ledger.ErrInvalidWager):
		WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
	case errors.Is(err, ledger.ErrStorage):
		WriteHTTPError(w, http.StatusServiceUnavailable, "storage_unavailable")
	default:
		log.Error().Err(err).Msg("unmapped ledger error")
		WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
	}
}
