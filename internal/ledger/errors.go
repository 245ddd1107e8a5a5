package ledger

import (
	"errors"
	"time"

	"velrixo-casino/internal/store"
)

// Every rejection below guarantees that nothing was written.
var (
	ErrInsufficientFunds = errors.New("insufficient_funds")
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrSelfTransfer      = errors.New("self_transfer")
	ErrTooSoon           = errors.New("too_soon")
	ErrInvalidWager      = errors.New("invalid_wager")

	// ErrStorage is the only kind after which the outcome may be unknown.
	ErrStorage = store.ErrStorage
)

type TooSoonError struct {
	Remaining time.Duration
}

func (e *TooSoonError) Error() string {
	return ErrTooSoon.Error()
}

func (e *TooSoonError) Unwrap() error {
	return ErrTooSoon
}
