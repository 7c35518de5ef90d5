package entities

import (
	"time"

	"cashgame/domain/money"
)

// BuyInStatus represents the state of a buy-in request
type BuyInStatus string

const (
	BuyInStatusPending  BuyInStatus = "pending"
	BuyInStatusApproved BuyInStatus = "approved"
	BuyInStatusRejected BuyInStatus = "rejected"
)

// IsTerminal checks if the status can no longer change
func (s BuyInStatus) IsTerminal() bool {
	return s == BuyInStatusApproved || s == BuyInStatusRejected
}

// BuyIn is a request to put money on the table.
// Only approved buy-ins count toward the pool.
type BuyIn struct {
	ID         int64        `db:"id" json:"id"`
	SessionID  int64        `db:"session_id" json:"sessionId"`
	UserID     int64        `db:"user_id" json:"userId"`
	Amount     money.Amount `db:"amount" json:"amount"`
	Status     BuyInStatus  `db:"status" json:"status"`
	CreatedAt  time.Time    `db:"created_at" json:"createdAt"`
	ResolvedAt *time.Time   `db:"resolved_at" json:"resolvedAt,omitempty"`
}

// IsPending checks if the buy-in awaits a host decision
func (b *BuyIn) IsPending() bool {
	return b.Status == BuyInStatusPending
}

// IsApproved checks if the buy-in counts toward the pool
func (b *BuyIn) IsApproved() bool {
	return b.Status == BuyInStatusApproved
}
