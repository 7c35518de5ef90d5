package testhelpers

import (
	"context"
	"time"

	"cashgame/domain/entities"
	"cashgame/domain/events"
	"cashgame/domain/money"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByDiscordID(ctx context.Context, discordID int64) (*entities.User, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockSessionRepository is a mock implementation of SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *entities.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id int64) (*entities.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Session), args.Error(1)
}

func (m *MockSessionRepository) GetByIDForShare(ctx context.Context, id int64) (*entities.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Session), args.Error(1)
}

func (m *MockSessionRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Session), args.Error(1)
}

func (m *MockSessionRepository) GetByCode(ctx context.Context, code string) (*entities.Session, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Session), args.Error(1)
}

func (m *MockSessionRepository) List(ctx context.Context, status *entities.SessionStatus, limit int) ([]*entities.Session, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Session), args.Error(1)
}

func (m *MockSessionRepository) ListClosedSince(ctx context.Context, since time.Time) ([]*entities.Session, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Session), args.Error(1)
}

func (m *MockSessionRepository) MarkClosed(ctx context.Context, id int64) (*entities.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Session), args.Error(1)
}

// MockSessionPlayerRepository is a mock implementation of SessionPlayerRepository
type MockSessionPlayerRepository struct {
	mock.Mock
}

func (m *MockSessionPlayerRepository) Get(ctx context.Context, sessionID, userID int64) (*entities.SessionPlayer, error) {
	args := m.Called(ctx, sessionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SessionPlayer), args.Error(1)
}

func (m *MockSessionPlayerRepository) GetBySession(ctx context.Context, sessionID int64) ([]*entities.SessionPlayer, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.SessionPlayer), args.Error(1)
}

func (m *MockSessionPlayerRepository) AddIfAbsent(ctx context.Context, player *entities.SessionPlayer) (*entities.SessionPlayer, bool, error) {
	args := m.Called(ctx, player)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*entities.SessionPlayer), args.Bool(1), args.Error(2)
}

func (m *MockSessionPlayerRepository) SetFinalWinnings(ctx context.Context, sessionID, userID int64, amount money.Amount) error {
	args := m.Called(ctx, sessionID, userID, amount)
	return args.Error(0)
}

// MockBuyInRepository is a mock implementation of BuyInRepository
type MockBuyInRepository struct {
	mock.Mock
}

func (m *MockBuyInRepository) Create(ctx context.Context, buyIn *entities.BuyIn) error {
	args := m.Called(ctx, buyIn)
	return args.Error(0)
}

func (m *MockBuyInRepository) GetByID(ctx context.Context, id int64) (*entities.BuyIn, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BuyIn), args.Error(1)
}

func (m *MockBuyInRepository) GetBySession(ctx context.Context, sessionID int64) ([]*entities.BuyIn, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.BuyIn), args.Error(1)
}

func (m *MockBuyInRepository) Resolve(ctx context.Context, id int64, status entities.BuyInStatus) (*entities.BuyIn, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BuyIn), args.Error(1)
}

func (m *MockBuyInRepository) UpdateAmount(ctx context.Context, id int64, amount money.Amount) (*entities.BuyIn, error) {
	args := m.Called(ctx, id, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BuyIn), args.Error(1)
}

func (m *MockBuyInRepository) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockCashOutRepository is a mock implementation of CashOutRepository
type MockCashOutRepository struct {
	mock.Mock
}

func (m *MockCashOutRepository) Create(ctx context.Context, cashOut *entities.CashOut) error {
	args := m.Called(ctx, cashOut)
	return args.Error(0)
}

func (m *MockCashOutRepository) GetByID(ctx context.Context, id int64) (*entities.CashOut, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.CashOut), args.Error(1)
}

func (m *MockCashOutRepository) GetBySession(ctx context.Context, sessionID int64) ([]*entities.CashOut, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.CashOut), args.Error(1)
}

func (m *MockCashOutRepository) UpdateAmount(ctx context.Context, id int64, amount money.Amount) (*entities.CashOut, error) {
	args := m.Called(ctx, id, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.CashOut), args.Error(1)
}

func (m *MockCashOutRepository) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockTransactionalEventPublisher is a mock implementation of TransactionalEventPublisher
type MockTransactionalEventPublisher struct {
	mock.Mock
}

func (m *MockTransactionalEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

func (m *MockTransactionalEventPublisher) Flush(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTransactionalEventPublisher) Discard() {
	m.Called()
}
