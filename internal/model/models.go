// Package model defines the data models for the sportsbook ledger.
package model

import "time"

// Account represents a user account holding a fake-money balance in cents.
type Account struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	BalanceCents int64     `db:"balance_cents" json:"balanceCents"`
	IsAdmin      bool      `db:"is_admin" json:"isAdmin"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// Transaction represents a single balance mutation. Ledger rows are
// append-only: never updated or deleted, and BalanceAfterCents records the
// account balance immediately after the row was applied.
type Transaction struct {
	ID                string    `db:"id" json:"id"`
	AccountID         string    `db:"account_id" json:"accountId"`
	Type              string    `db:"type" json:"type"`
	AmountCents       int64     `db:"amount_cents" json:"amountCents"`
	BalanceAfterCents int64     `db:"balance_after_cents" json:"balanceAfterCents"`
	BetID             *string   `db:"bet_id" json:"betId,omitempty"`
	EventID           *string   `db:"event_id" json:"eventId,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"createdAt"`
}

// Transaction types. Amounts are negative for bet_place, positive otherwise.
const (
	TxTypeInitial   = "initial"    // starting balance credit on account creation
	TxTypeBetPlace  = "bet_place"  // stake debited at placement
	TxTypeBetSettle = "bet_settle" // winning payout (stake + profit)
	TxTypeBetRefund = "bet_refund" // push refund (stake returned)
)
