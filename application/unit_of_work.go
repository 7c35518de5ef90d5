package application

import (
	"context"

	"cashgame/domain/interfaces"
)

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and publishes buffered events
	Commit() error

	// Rollback rolls back the transaction and drops buffered events
	Rollback() error

	// Repository getters
	UserRepository() interfaces.UserRepository
	SessionRepository() interfaces.SessionRepository
	SessionPlayerRepository() interfaces.SessionPlayerRepository
	BuyInRepository() interfaces.BuyInRepository
	CashOutRepository() interfaces.CashOutRepository
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork with its own event buffer
	Create() UnitOfWork
}
