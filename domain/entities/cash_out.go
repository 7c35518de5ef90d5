package entities

import (
	"time"

	"cashgame/domain/money"
)

// CashOut is a mid-session withdrawal recorded by the host
type CashOut struct {
	ID        int64        `db:"id" json:"id"`
	SessionID int64        `db:"session_id" json:"sessionId"`
	UserID    int64        `db:"user_id" json:"userId"`
	Amount    money.Amount `db:"amount" json:"amount"`
	CreatedAt time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time    `db:"updated_at" json:"updatedAt"`
}
