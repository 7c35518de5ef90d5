package entities

import (
	"cashgame/domain/money"
)

// SessionSnapshot is a point-in-time read of everything recorded for a session
type SessionSnapshot struct {
	Session  *Session         `json:"session"`
	Players  []*SessionPlayer `json:"players"`
	BuyIns   []*BuyIn         `json:"buyIns"`
	CashOuts []*CashOut       `json:"cashOuts"`
}

// Pool sums the approved buy-ins
func (s *SessionSnapshot) Pool() money.Amount {
	var pool money.Amount
	for _, b := range s.BuyIns {
		if b.IsApproved() {
			pool += b.Amount
		}
	}
	return pool
}

// CashedOut sums every recorded cash-out
func (s *SessionSnapshot) CashedOut() money.Amount {
	var total money.Amount
	for _, c := range s.CashOuts {
		total += c.Amount
	}
	return total
}

// PendingBuyIns returns buy-ins still awaiting the host
func (s *SessionSnapshot) PendingBuyIns() []*BuyIn {
	var pending []*BuyIn
	for _, b := range s.BuyIns {
		if b.IsPending() {
			pending = append(pending, b)
		}
	}
	return pending
}

// OnTable is the money that should still be in chips: pool minus cash-outs
func (s *SessionSnapshot) OnTable() money.Amount {
	return s.Pool() - s.CashedOut()
}

// Player finds a seat by user ID
func (s *SessionSnapshot) Player(userID int64) *SessionPlayer {
	for _, p := range s.Players {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

// AuditResult carries the reconciliation figures for one close attempt
type AuditResult struct {
	SessionID  int64        `json:"sessionId"`
	Pool       money.Amount `json:"pool"`
	AlreadyOut money.Amount `json:"alreadyOut"`
	TableNow   money.Amount `json:"tableNow"`
	TotalOut   money.Amount `json:"totalOut"`
}

// Discrepancy is pool minus total out
func (r *AuditResult) Discrepancy() money.Amount {
	return r.Pool - r.TotalOut
}

// Balanced reports whether total out matches the pool within tolerance
func (r *AuditResult) Balanced(tolerance money.Amount) bool {
	return money.WithinTolerance(r.Pool, r.TotalOut, tolerance)
}

// PlayerResult is one player's line in a settlement
type PlayerResult struct {
	UserID    int64        `json:"userId"`
	Name      string       `json:"name"`
	Invested  money.Amount `json:"invested"`
	Extracted money.Amount `json:"extracted"`
	Net       money.Amount `json:"net"`
}

// Transfer is a computed payment from a net loser to a net winner. Never persisted.
type Transfer struct {
	FromUserID int64        `json:"from"`
	ToUserID   int64        `json:"to"`
	FromName   string       `json:"fromName"`
	ToName     string       `json:"toName"`
	Amount     money.Amount `json:"amount"`
}

// Settlement is the derived result of a closed session.
// Unallocated is total credit minus total debt; it is non-zero only within the audit tolerance.
type Settlement struct {
	SessionID   int64          `json:"sessionId"`
	Players     []PlayerResult `json:"perPlayer"`
	Transfers   []Transfer     `json:"transfers"`
	Unallocated money.Amount   `json:"unallocated"`
}

// TransfersFrom sums the transfers paid by a user
func (s *Settlement) TransfersFrom(userID int64) money.Amount {
	var total money.Amount
	for _, t := range s.Transfers {
		if t.FromUserID == userID {
			total += t.Amount
		}
	}
	return total
}

// TransfersTo sums the transfers received by a user
func (s *Settlement) TransfersTo(userID int64) money.Amount {
	var total money.Amount
	for _, t := range s.Transfers {
		if t.ToUserID == userID {
			total += t.Amount
		}
	}
	return total
}
