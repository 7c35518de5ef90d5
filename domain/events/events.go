package events

import (
	"time"

	"cashgame/domain/money"
)

// EventType represents different types of ledger events
type EventType string

const (
	EventTypeUserRegistered  EventType = "user_registered"
	EventTypeSessionCreated  EventType = "session_created"
	EventTypePlayerJoined    EventType = "player_joined"
	EventTypeBuyInRequested  EventType = "buy_in_requested"
	EventTypeBuyInResolved   EventType = "buy_in_resolved"
	EventTypeBuyInAmended    EventType = "buy_in_amended"
	EventTypeBuyInDeleted    EventType = "buy_in_deleted"
	EventTypeCashOutRecorded EventType = "cash_out_recorded"
	EventTypeCashOutAmended  EventType = "cash_out_amended"
	EventTypeCashOutDeleted  EventType = "cash_out_deleted"
	EventTypeSessionClosed   EventType = "session_closed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// UserRegisteredEvent is emitted when a new user is created
type UserRegisteredEvent struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

func (e UserRegisteredEvent) Type() EventType {
	return EventTypeUserRegistered
}

// SessionCreatedEvent is emitted when a host opens a new session
type SessionCreatedEvent struct {
	SessionID int64  `json:"sessionId"`
	Code      string `json:"code"`
	HostID    int64  `json:"hostId"`
	Name      string `json:"name"`
}

func (e SessionCreatedEvent) Type() EventType {
	return EventTypeSessionCreated
}

// PlayerJoinedEvent is emitted when a seat is created, by join or by first buy-in
type PlayerJoinedEvent struct {
	SessionID int64  `json:"sessionId"`
	UserID    int64  `json:"userId"`
	Role      string `json:"role"`
}

func (e PlayerJoinedEvent) Type() EventType {
	return EventTypePlayerJoined
}

// BuyInRequestedEvent is emitted when a buy-in is recorded
type BuyInRequestedEvent struct {
	BuyInID   int64        `json:"buyInId"`
	SessionID int64        `json:"sessionId"`
	UserID    int64        `json:"userId"`
	Amount    money.Amount `json:"amount"`
	Status    string       `json:"status"`
}

func (e BuyInRequestedEvent) Type() EventType {
	return EventTypeBuyInRequested
}

// BuyInResolvedEvent is emitted when the host approves or rejects a buy-in
type BuyInResolvedEvent struct {
	BuyInID   int64        `json:"buyInId"`
	SessionID int64        `json:"sessionId"`
	UserID    int64        `json:"userId"`
	Amount    money.Amount `json:"amount"`
	Status    string       `json:"status"`
}

func (e BuyInResolvedEvent) Type() EventType {
	return EventTypeBuyInResolved
}

// BuyInAmendedEvent is emitted when the host edits a buy-in amount
type BuyInAmendedEvent struct {
	BuyInID   int64        `json:"buyInId"`
	SessionID int64        `json:"sessionId"`
	OldAmount money.Amount `json:"oldAmount"`
	NewAmount money.Amount `json:"newAmount"`
}

func (e BuyInAmendedEvent) Type() EventType {
	return EventTypeBuyInAmended
}

// BuyInDeletedEvent is emitted when the host removes a buy-in from the ledger
type BuyInDeletedEvent struct {
	BuyInID   int64        `json:"buyInId"`
	SessionID int64        `json:"sessionId"`
	UserID    int64        `json:"userId"`
	Amount    money.Amount `json:"amount"`
	Status    string       `json:"status"`
}

func (e BuyInDeletedEvent) Type() EventType {
	return EventTypeBuyInDeleted
}

// CashOutRecordedEvent is emitted when the host records a withdrawal
type CashOutRecordedEvent struct {
	CashOutID int64        `json:"cashOutId"`
	SessionID int64        `json:"sessionId"`
	UserID    int64        `json:"userId"`
	Amount    money.Amount `json:"amount"`
}

func (e CashOutRecordedEvent) Type() EventType {
	return EventTypeCashOutRecorded
}

// CashOutAmendedEvent is emitted when the host edits a cash-out amount
type CashOutAmendedEvent struct {
	CashOutID int64        `json:"cashOutId"`
	SessionID int64        `json:"sessionId"`
	OldAmount money.Amount `json:"oldAmount"`
	NewAmount money.Amount `json:"newAmount"`
}

func (e CashOutAmendedEvent) Type() EventType {
	return EventTypeCashOutAmended
}

// CashOutDeletedEvent is emitted when the host reverts a cash-out
type CashOutDeletedEvent struct {
	CashOutID int64        `json:"cashOutId"`
	SessionID int64        `json:"sessionId"`
	UserID    int64        `json:"userId"`
	Amount    money.Amount `json:"amount"`
}

func (e CashOutDeletedEvent) Type() EventType {
	return EventTypeCashOutDeleted
}

// SessionClosedEvent is emitted after a successful audit closes a session
type SessionClosedEvent struct {
	SessionID int64        `json:"sessionId"`
	Pool      money.Amount `json:"pool"`
	TotalOut  money.Amount `json:"totalOut"`
	ClosedAt  time.Time    `json:"closedAt"`
}

func (e SessionClosedEvent) Type() EventType {
	return EventTypeSessionClosed
}
