package infrastructure

import (
	"cashgame/application"
	"cashgame/database"
	"cashgame/domain/events"
	"cashgame/domain/interfaces"
	"cashgame/repository"
)

// UnitOfWorkFactory implements application.UnitOfWorkFactory.
// Each unit of work gets its own transactional publisher so events leave only after commit.
type UnitOfWorkFactory struct {
	repoFactory interface {
		CreateWithPublisher(interfaces.TransactionalEventPublisher) application.UnitOfWork
	}
	eventPublisher interfaces.EventPublisher
	localHandlers  *LocalHandlers
}

// NewUnitOfWorkFactory creates a new UnitOfWorkFactory
func NewUnitOfWorkFactory(db *database.DB, eventPublisher interfaces.EventPublisher) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{
		repoFactory:    repository.NewUnitOfWorkFactory(db),
		eventPublisher: eventPublisher,
		localHandlers:  NewLocalHandlers(),
	}
}

// RegisterLocalHandler registers a handler invoked in-process for every committed event of eventType
func (f *UnitOfWorkFactory) RegisterLocalHandler(eventType events.EventType, handler EventHandler) {
	f.localHandlers.Register(eventType, handler)
}

// Create creates a new UnitOfWork with a fresh transactional event publisher
func (f *UnitOfWorkFactory) Create() application.UnitOfWork {
	return f.repoFactory.CreateWithPublisher(NewNATSTransactionalPublisher(f.eventPublisher, f.localHandlers))
}
