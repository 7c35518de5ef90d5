package entities

import (
	"time"

	"cashgame/domain/money"
)

// SessionStatus represents the lifecycle state of a session
type SessionStatus string

const (
	SessionStatusActive SessionStatus = "active"
	SessionStatusClosed SessionStatus = "closed"
)

// IsValid reports whether the status is a known value
func (s SessionStatus) IsValid() bool {
	return s == SessionStatusActive || s == SessionStatusClosed
}

// Session is one cash game. Status moves from active to closed exactly once.
type Session struct {
	ID         int64         `db:"id" json:"id"`
	Name       string        `db:"name" json:"name"`
	Code       string        `db:"code" json:"code"`
	CreatedBy  int64         `db:"created_by" json:"createdBy"`
	Status     SessionStatus `db:"status" json:"status"`
	BlindValue money.Amount  `db:"blind_value" json:"blindValue"`
	CreatedAt  time.Time     `db:"created_at" json:"createdAt"`
	ClosedAt   *time.Time    `db:"closed_at" json:"closedAt,omitempty"`
}

// IsActive checks if the session still accepts ledger writes
func (s *Session) IsActive() bool {
	return s.Status == SessionStatusActive
}

// IsClosed checks if the session has passed its audit
func (s *Session) IsClosed() bool {
	return s.Status == SessionStatusClosed
}

// IsHost checks if the user created the session
func (s *Session) IsHost(userID int64) bool {
	return s.CreatedBy == userID
}
