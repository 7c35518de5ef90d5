package interfaces

import (
	"context"

	"cashgame/domain/entities"
	"cashgame/domain/money"
)

// UserService defines the interface for user registration and lookup
type UserService interface {
	// RegisterUser creates a user with a unique username
	RegisterUser(ctx context.Context, name, username string) (*entities.User, error)

	// GetUser retrieves a user by ID
	GetUser(ctx context.Context, userID int64) (*entities.User, error)

	// EnsureDiscordUser resolves the user linked to a Discord account, creating it on first use
	EnsureDiscordUser(ctx context.Context, discordID int64, displayName, username string) (*entities.User, error)
}

// SessionService defines the interface for session lifecycle outside of the audit
type SessionService interface {
	// CreateSession opens a session and seats the host as admin
	CreateSession(ctx context.Context, hostID int64, name string, blindValue money.Amount) (*entities.Session, error)

	// JoinSession seats a user by share code; re-joining returns the existing seat
	JoinSession(ctx context.Context, code string, userID int64) (*entities.SessionPlayer, error)

	// ListSessions returns sessions newest first
	ListSessions(ctx context.Context, status *entities.SessionStatus, limit int) ([]*entities.Session, error)

	// GetSnapshot reads the session with its players, buy-ins and cash-outs
	GetSnapshot(ctx context.Context, sessionID int64) (*entities.SessionSnapshot, error)

	// GetSnapshotByCode reads a snapshot by share code
	GetSnapshotByCode(ctx context.Context, code string) (*entities.SessionSnapshot, error)
}

// BuyInService defines the buy-in workflow
type BuyInService interface {
	// RequestBuyIn records a buy-in for userID, acting as actorID.
	// Host buy-ins are approved immediately; missing seats are created.
	RequestBuyIn(ctx context.Context, sessionID, actorID, userID int64, amount money.Amount) (*entities.BuyIn, error)

	// Approve moves a pending buy-in into the pool (host only)
	Approve(ctx context.Context, buyInID, actorID int64) (*entities.BuyIn, error)

	// Reject closes a pending buy-in without adding it to the pool (host only)
	Reject(ctx context.Context, buyInID, actorID int64) (*entities.BuyIn, error)

	// EditAmount changes a buy-in amount, keeping its status (host only)
	EditAmount(ctx context.Context, buyInID, actorID int64, amount money.Amount) (*entities.BuyIn, error)

	// Delete removes a buy-in from the ledger (host only)
	Delete(ctx context.Context, buyInID, actorID int64) error
}

// CashOutService defines the cash-out recorder
type CashOutService interface {
	// RecordCashOut appends a withdrawal for a seated player (host only)
	RecordCashOut(ctx context.Context, sessionID, actorID, userID int64, amount money.Amount) (*entities.CashOut, error)

	// EditAmount changes a cash-out amount (host only)
	EditAmount(ctx context.Context, cashOutID, actorID int64, amount money.Amount) (*entities.CashOut, error)

	// Delete reverts a cash-out (host only)
	Delete(ctx context.Context, cashOutID, actorID int64) error
}

// ReconciliationService defines the audit that gates closing a session
type ReconciliationService interface {
	// CloseSession audits the ledger against the declared chip counts and closes the session.
	// Returns *domain.AuditMismatchError without mutating anything when the audit fails.
	CloseSession(ctx context.Context, sessionID, actorID int64, finalChips map[int64]money.Amount) (*entities.AuditResult, error)
}

// SettlementService defines settlement reads for closed sessions
type SettlementService interface {
	// GetSettlement computes nets and transfers for a closed session
	GetSettlement(ctx context.Context, sessionID int64) (*entities.Settlement, error)
}

// LedgerService is the full set of operations exposed to the HTTP and Discord surfaces.
// Every call runs in its own unit of work.
type LedgerService interface {
	RegisterUser(ctx context.Context, name, username string) (*entities.User, error)
	EnsureDiscordUser(ctx context.Context, discordID int64, displayName, username string) (*entities.User, error)

	CreateSession(ctx context.Context, hostID int64, name string, blindValue money.Amount) (*entities.Session, error)
	JoinSession(ctx context.Context, code string, userID int64) (*entities.SessionPlayer, error)
	ListSessions(ctx context.Context, status *entities.SessionStatus, limit int) ([]*entities.Session, error)
	GetSnapshot(ctx context.Context, sessionID int64) (*entities.SessionSnapshot, error)
	GetSnapshotByCode(ctx context.Context, code string) (*entities.SessionSnapshot, error)

	SubmitBuyIn(ctx context.Context, sessionID, actorID, userID int64, amount money.Amount) (*entities.BuyIn, error)
	ApproveBuyIn(ctx context.Context, buyInID, actorID int64) (*entities.BuyIn, error)
	RejectBuyIn(ctx context.Context, buyInID, actorID int64) (*entities.BuyIn, error)
	EditBuyInAmount(ctx context.Context, buyInID, actorID int64, amount money.Amount) (*entities.BuyIn, error)
	DeleteBuyIn(ctx context.Context, buyInID, actorID int64) error

	RecordCashOut(ctx context.Context, sessionID, actorID, userID int64, amount money.Amount) (*entities.CashOut, error)
	EditCashOutAmount(ctx context.Context, cashOutID, actorID int64, amount money.Amount) (*entities.CashOut, error)
	DeleteCashOut(ctx context.Context, cashOutID, actorID int64) error

	CloseSession(ctx context.Context, sessionID, actorID int64, finalChips map[int64]money.Amount) (*entities.AuditResult, error)
	GetSettlement(ctx context.Context, sessionID int64) (*entities.Settlement, error)
}

// LedgerMetrics records ledger outcomes. Implementations must be safe for concurrent use.
type LedgerMetrics interface {
	RecordBuyIn(status string)
	RecordBuyInResolution(status string)
	RecordCashOut()
	RecordAudit(outcome string)
	RecordSettlement(outcome string)
}
