package services

import (
	"context"
	"errors"
	"testing"

	"cashgame/domain"
	"cashgame/domain/entities"
	"cashgame/domain/interfaces"
	"cashgame/domain/money"
	"cashgame/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type cashOutMocks struct {
	sessions  *testhelpers.MockSessionRepository
	players   *testhelpers.MockSessionPlayerRepository
	cashOuts  *testhelpers.MockCashOutRepository
	publisher *testhelpers.MockEventPublisher
}

func newCashOutMocks() *cashOutMocks {
	return &cashOutMocks{
		sessions:  new(testhelpers.MockSessionRepository),
		players:   new(testhelpers.MockSessionPlayerRepository),
		cashOuts:  new(testhelpers.MockCashOutRepository),
		publisher: new(testhelpers.MockEventPublisher),
	}
}

func (m *cashOutMocks) service() interfaces.CashOutService {
	return NewCashOutService(m.sessions, m.players, m.cashOuts, m.publisher)
}

func TestCashOutService_RecordCashOut(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	amount := money.FromUnits(40)

	t.Run("records withdrawal for seated player", func(t *testing.T) {
		t.Parallel()
		m := newCashOutMocks()

		m.sessions.On("GetByIDForShare", ctx, testSessionID).Return(activeSession(), nil)
		m.players.On("Get", ctx, testSessionID, testPlayerID).Return(&entities.SessionPlayer{UserID: testPlayerID}, nil)
		m.cashOuts.On("Create", ctx, mock.MatchedBy(func(c *entities.CashOut) bool {
			return c.UserID == testPlayerID && c.Amount == amount
		})).
			Run(func(args mock.Arguments) { args.Get(1).(*entities.CashOut).ID = 7 }).
			Return(nil)
		m.publisher.On("Publish", mock.AnythingOfType("events.CashOutRecordedEvent")).Return(nil)

		cashOut, err := m.service().RecordCashOut(ctx, testSessionID, testHostID, testPlayerID, amount)
		require.NoError(t, err)

		assert.Equal(t, int64(7), cashOut.ID)
		assert.Equal(t, amount, cashOut.Amount)
		m.cashOuts.AssertExpectations(t)
		m.publisher.AssertExpectations(t)
	})

	t.Run("publish failure is logged only", func(t *testing.T) {
		t.Parallel()
		m := newCashOutMocks()

		m.sessions.On("GetByIDForShare", ctx, testSessionID).Return(activeSession(), nil)
		m.players.On("Get", ctx, testSessionID, testPlayerID).Return(&entities.SessionPlayer{UserID: testPlayerID}, nil)
		m.cashOuts.On("Create", ctx, mock.AnythingOfType("*entities.CashOut")).Return(nil)
		m.publisher.On("Publish", mock.Anything).Return(errors.New("bus down"))

		_, err := m.service().RecordCashOut(ctx, testSessionID, testHostID, testPlayerID, amount)
		assert.NoError(t, err)
	})

	tests := []struct {
		name      string
		actorID   int64
		amount    money.Amount
		setupMock func(*cashOutMocks)
		wantErr   error
	}{
		{
			name:      "zero amount",
			actorID:   testHostID,
			amount:    0,
			setupMock: func(*cashOutMocks) {},
			wantErr:   domain.ErrNonPositiveAmount,
		},
		{
			name:    "player cannot record",
			actorID: testPlayerID,
			amount:  amount,
			setupMock: func(m *cashOutMocks) {
				m.sessions.On("GetByIDForShare", ctx, testSessionID).Return(activeSession(), nil)
			},
			wantErr: domain.ErrNotHost,
		},
		{
			name:    "closed session",
			actorID: testHostID,
			amount:  amount,
			setupMock: func(m *cashOutMocks) {
				m.sessions.On("GetByIDForShare", ctx, testSessionID).Return(closedTestSession(), nil)
			},
			wantErr: domain.ErrSessionNotActive,
		},
		{
			name:    "unseated player",
			actorID: testHostID,
			amount:  amount,
			setupMock: func(m *cashOutMocks) {
				m.sessions.On("GetByIDForShare", ctx, testSessionID).Return(activeSession(), nil)
				m.players.On("Get", ctx, testSessionID, testPlayerID).Return(nil, nil)
			},
			wantErr: domain.ErrNotSeated,
		},
		{
			name:    "missing session",
			actorID: testHostID,
			amount:  amount,
			setupMock: func(m *cashOutMocks) {
				m.sessions.On("GetByIDForShare", ctx, testSessionID).Return(nil, nil)
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := newCashOutMocks()
			tt.setupMock(m)

			cashOut, err := m.service().RecordCashOut(ctx, testSessionID, tt.actorID, testPlayerID, tt.amount)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, cashOut)
			m.cashOuts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCashOutService_EditAndDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	existing := func() *entities.CashOut {
		return &entities.CashOut{ID: 7, SessionID: testSessionID, UserID: testPlayerID, Amount: money.FromUnits(40)}
	}

	t.Run("edit amount", func(t *testing.T) {
		t.Parallel()
		m := newCashOutMocks()

		updated := existing()
		updated.Amount = money.FromUnits(35)

		m.cashOuts.On("GetByID", ctx, int64(7)).Return(existing(), nil)
		m.sessions.On("GetByIDForShare", ctx, testSessionID).Return(activeSession(), nil)
		m.cashOuts.On("UpdateAmount", ctx, int64(7), money.FromUnits(35)).Return(updated, nil)
		m.publisher.On("Publish", mock.AnythingOfType("events.CashOutAmendedEvent")).Return(nil)

		got, err := m.service().EditAmount(ctx, 7, testHostID, money.FromUnits(35))
		require.NoError(t, err)
		assert.Equal(t, money.FromUnits(35), got.Amount)
		m.publisher.AssertExpectations(t)
	})

	t.Run("edit missing cash-out", func(t *testing.T) {
		t.Parallel()
		m := newCashOutMocks()

		m.cashOuts.On("GetByID", ctx, int64(7)).Return(nil, nil)

		_, err := m.service().EditAmount(ctx, 7, testHostID, money.FromUnits(35))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("edit after close", func(t *testing.T) {
		t.Parallel()
		m := newCashOutMocks()

		m.cashOuts.On("GetByID", ctx, int64(7)).Return(existing(), nil)
		m.sessions.On("GetByIDForShare", ctx, testSessionID).Return(closedTestSession(), nil)

		_, err := m.service().EditAmount(ctx, 7, testHostID, money.FromUnits(35))
		assert.ErrorIs(t, err, domain.ErrSessionNotActive)
		m.cashOuts.AssertNotCalled(t, "UpdateAmount", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()
		m := newCashOutMocks()

		m.cashOuts.On("GetByID", ctx, int64(7)).Return(existing(), nil)
		m.sessions.On("GetByIDForShare", ctx, testSessionID).Return(activeSession(), nil)
		m.cashOuts.On("Delete", ctx, int64(7)).Return(true, nil)
		m.publisher.On("Publish", mock.AnythingOfType("events.CashOutDeletedEvent")).Return(nil)

		require.NoError(t, m.service().Delete(ctx, 7, testHostID))
		m.cashOuts.AssertExpectations(t)
		m.publisher.AssertExpectations(t)
	})

	t.Run("delete by player", func(t *testing.T) {
		t.Parallel()
		m := newCashOutMocks()

		m.cashOuts.On("GetByID", ctx, int64(7)).Return(existing(), nil)
		m.sessions.On("GetByIDForShare", ctx, testSessionID).Return(activeSession(), nil)

		err := m.service().Delete(ctx, 7, testPlayerID)
		assert.ErrorIs(t, err, domain.ErrNotHost)
	})
}
