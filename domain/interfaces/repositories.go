package interfaces

import (
	"context"
	"time"

	"cashgame/domain/entities"
	"cashgame/domain/events"
	"cashgame/domain/money"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by ID, nil when missing
	GetByID(ctx context.Context, id int64) (*entities.User, error)

	// GetByUsername retrieves a user by their unique username
	GetByUsername(ctx context.Context, username string) (*entities.User, error)

	// GetByDiscordID retrieves a user linked to a Discord account
	GetByDiscordID(ctx context.Context, discordID int64) (*entities.User, error)

	// Create inserts a user and fills in its ID and CreatedAt
	Create(ctx context.Context, user *entities.User) error
}

// SessionRepository defines the interface for session data access.
// The ForShare/ForUpdate variants lock the session row for the rest of the transaction.
type SessionRepository interface {
	// Create inserts a session and fills in its ID, status and CreatedAt
	Create(ctx context.Context, session *entities.Session) error

	// GetByID retrieves a session without locking
	GetByID(ctx context.Context, id int64) (*entities.Session, error)

	// GetByIDForShare retrieves a session and blocks concurrent closes until commit
	GetByIDForShare(ctx context.Context, id int64) (*entities.Session, error)

	// GetByIDForUpdate retrieves a session with an exclusive row lock
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.Session, error)

	// GetByCode retrieves a session by its share code
	GetByCode(ctx context.Context, code string) (*entities.Session, error)

	// List returns sessions newest first, optionally filtered by status
	List(ctx context.Context, status *entities.SessionStatus, limit int) ([]*entities.Session, error)

	// ListClosedSince returns sessions closed at or after the given time
	ListClosedSince(ctx context.Context, since time.Time) ([]*entities.Session, error)

	// MarkClosed flips an active session to closed, returning nil if it was not active
	MarkClosed(ctx context.Context, id int64) (*entities.Session, error)
}

// SessionPlayerRepository defines the interface for seat data access
type SessionPlayerRepository interface {
	// Get retrieves a seat, nil when the user is not in the session
	Get(ctx context.Context, sessionID, userID int64) (*entities.SessionPlayer, error)

	// GetBySession returns all seats in registration order
	GetBySession(ctx context.Context, sessionID int64) ([]*entities.SessionPlayer, error)

	// AddIfAbsent seats a player unless already seated.
	// Returns the stored seat and whether it was created by this call.
	AddIfAbsent(ctx context.Context, player *entities.SessionPlayer) (*entities.SessionPlayer, bool, error)

	// SetFinalWinnings records the total value a player extracted at close
	SetFinalWinnings(ctx context.Context, sessionID, userID int64, amount money.Amount) error
}

// BuyInRepository defines the interface for buy-in data access
type BuyInRepository interface {
	// Create inserts a buy-in and fills in its ID and CreatedAt
	Create(ctx context.Context, buyIn *entities.BuyIn) error

	// GetByID retrieves a buy-in, nil when missing
	GetByID(ctx context.Context, id int64) (*entities.BuyIn, error)

	// GetBySession returns every buy-in of a session in insertion order
	GetBySession(ctx context.Context, sessionID int64) ([]*entities.BuyIn, error)

	// Resolve moves a pending buy-in to a terminal status.
	// Returns nil when the buy-in is missing or no longer pending.
	Resolve(ctx context.Context, id int64, status entities.BuyInStatus) (*entities.BuyIn, error)

	// UpdateAmount changes the amount without touching status, nil when missing
	UpdateAmount(ctx context.Context, id int64, amount money.Amount) (*entities.BuyIn, error)

	// Delete removes a buy-in and reports whether a row was deleted
	Delete(ctx context.Context, id int64) (bool, error)
}

// CashOutRepository defines the interface for cash-out data access
type CashOutRepository interface {
	// Create inserts a cash-out and fills in its ID and timestamps
	Create(ctx context.Context, cashOut *entities.CashOut) error

	// GetByID retrieves a cash-out, nil when missing
	GetByID(ctx context.Context, id int64) (*entities.CashOut, error)

	// GetBySession returns every cash-out of a session in insertion order
	GetBySession(ctx context.Context, sessionID int64) ([]*entities.CashOut, error)

	// UpdateAmount changes the amount, nil when missing
	UpdateAmount(ctx context.Context, id int64, amount money.Amount) (*entities.CashOut, error)

	// Delete removes a cash-out and reports whether a row was deleted
	Delete(ctx context.Context, id int64) (bool, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher buffers events until the surrounding transaction finishes
type TransactionalEventPublisher interface {
	EventPublisher

	// Flush publishes all pending events; call after commit
	Flush(ctx context.Context) error

	// Discard drops all pending events; call after rollback
	Discard()
}
