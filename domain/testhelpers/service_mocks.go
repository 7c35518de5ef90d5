package testhelpers

import (
	"context"

	"cashgame/domain/entities"
	"cashgame/domain/money"

	"github.com/stretchr/testify/mock"
)

// MockLedgerService is a mock implementation of LedgerService
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) RegisterUser(ctx context.Context, name, username string) (*entities.User, error) {
	args := m.Called(ctx, name, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockLedgerService) EnsureDiscordUser(ctx context.Context, discordID int64, displayName, username string) (*entities.User, error) {
	args := m.Called(ctx, discordID, displayName, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockLedgerService) CreateSession(ctx context.Context, hostID int64, name string, blindValue money.Amount) (*entities.Session, error) {
	args := m.Called(ctx, hostID, name, blindValue)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Session), args.Error(1)
}

func (m *MockLedgerService) JoinSession(ctx context.Context, code string, userID int64) (*entities.SessionPlayer, error) {
	args := m.Called(ctx, code, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SessionPlayer), args.Error(1)
}

func (m *MockLedgerService) ListSessions(ctx context.Context, status *entities.SessionStatus, limit int) ([]*entities.Session, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Session), args.Error(1)
}

func (m *MockLedgerService) GetSnapshot(ctx context.Context, sessionID int64) (*entities.SessionSnapshot, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SessionSnapshot), args.Error(1)
}

func (m *MockLedgerService) GetSnapshotByCode(ctx context.Context, code string) (*entities.SessionSnapshot, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SessionSnapshot), args.Error(1)
}

func (m *MockLedgerService) SubmitBuyIn(ctx context.Context, sessionID, actorID, userID int64, amount money.Amount) (*entities.BuyIn, error) {
	args := m.Called(ctx, sessionID, actorID, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BuyIn), args.Error(1)
}

func (m *MockLedgerService) ApproveBuyIn(ctx context.Context, buyInID, actorID int64) (*entities.BuyIn, error) {
	args := m.Called(ctx, buyInID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BuyIn), args.Error(1)
}

func (m *MockLedgerService) RejectBuyIn(ctx context.Context, buyInID, actorID int64) (*entities.BuyIn, error) {
	args := m.Called(ctx, buyInID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BuyIn), args.Error(1)
}

func (m *MockLedgerService) EditBuyInAmount(ctx context.Context, buyInID, actorID int64, amount money.Amount) (*entities.BuyIn, error) {
	args := m.Called(ctx, buyInID, actorID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BuyIn), args.Error(1)
}

func (m *MockLedgerService) DeleteBuyIn(ctx context.Context, buyInID, actorID int64) error {
	args := m.Called(ctx, buyInID, actorID)
	return args.Error(0)
}

func (m *MockLedgerService) RecordCashOut(ctx context.Context, sessionID, actorID, userID int64, amount money.Amount) (*entities.CashOut, error) {
	args := m.Called(ctx, sessionID, actorID, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.CashOut), args.Error(1)
}

func (m *MockLedgerService) EditCashOutAmount(ctx context.Context, cashOutID, actorID int64, amount money.Amount) (*entities.CashOut, error) {
	args := m.Called(ctx, cashOutID, actorID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.CashOut), args.Error(1)
}

func (m *MockLedgerService) DeleteCashOut(ctx context.Context, cashOutID, actorID int64) error {
	args := m.Called(ctx, cashOutID, actorID)
	return args.Error(0)
}

func (m *MockLedgerService) CloseSession(ctx context.Context, sessionID, actorID int64, finalChips map[int64]money.Amount) (*entities.AuditResult, error) {
	args := m.Called(ctx, sessionID, actorID, finalChips)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AuditResult), args.Error(1)
}

func (m *MockLedgerService) GetSettlement(ctx context.Context, sessionID int64) (*entities.Settlement, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Settlement), args.Error(1)
}
