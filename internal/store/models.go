package store

import "time"

// Account is the durable per-user record. LastBonusClaim is nil until the
// first successful bonus claim.
type Account struct {
	ID             int64
	Balance        int64
	LastBonusClaim *time.Time
}

// Standing is one leaderboard row.
type Standing struct {
	AccountID int64 `json:"account_id"`
	Balance   int64 `json:"balance"`
}

// DefaultStartingBalance is credited to an account the first time it is referenced.
const DefaultStartingBalance int64 = 1000

func NewAccount(id, startingBalance int64) Account {
	return Account{ID: id, Balance: startingBalance}
}
