package entities

import (
	"time"

	"cashgame/domain/money"
)

// PlayerRole is a seat's authority within a session
type PlayerRole string

const (
	PlayerRoleAdmin  PlayerRole = "admin"
	PlayerRolePlayer PlayerRole = "player"
)

// SessionPlayer is a seat at the table, keyed by (SessionID, UserID).
// SeatNo orders seats by registration and is the natural order used for settlement.
type SessionPlayer struct {
	SessionID     int64         `db:"session_id" json:"sessionId"`
	UserID        int64         `db:"user_id" json:"userId"`
	Name          string        `db:"name" json:"name"`
	Role          PlayerRole    `db:"role" json:"role"`
	FinalWinnings *money.Amount `db:"final_winnings" json:"finalWinnings,omitempty"`
	SeatNo        int64         `db:"seat_no" json:"seatNo"`
	JoinedAt      time.Time     `db:"joined_at" json:"joinedAt"`
}

// IsAdmin checks if the seat belongs to the host
func (p *SessionPlayer) IsAdmin() bool {
	return p.Role == PlayerRoleAdmin
}
