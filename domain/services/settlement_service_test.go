package services

import (
	"context"
	"errors"
	"testing"

	"cashgame/domain"
	"cashgame/domain/entities"
	"cashgame/domain/money"
	"cashgame/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettlementService_GetSettlement(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	withWinnings := func(amounts ...int64) []*entities.SessionPlayer {
		seats := threeSeats()
		for i, a := range amounts {
			w := money.FromUnits(a)
			seats[i].FinalWinnings = &w
		}
		return seats
	}

	t.Run("closed session", func(t *testing.T) {
		t.Parallel()
		sessions := new(testhelpers.MockSessionRepository)
		players := new(testhelpers.MockSessionPlayerRepository)
		buyIns := new(testhelpers.MockBuyInRepository)

		sessions.On("GetByID", ctx, testSessionID).Return(closedTestSession(), nil)
		players.On("GetBySession", ctx, testSessionID).Return(withWinnings(50, 150, 100), nil)
		buyIns.On("GetBySession", ctx, testSessionID).Return(hundredEach(), nil)

		svc := NewSettlementService(sessions, players, buyIns, NewSettlementCalculator(money.DefaultTolerance))

		first, err := svc.GetSettlement(ctx, testSessionID)
		require.NoError(t, err)
		second, err := svc.GetSettlement(ctx, testSessionID)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		require.Len(t, first.Transfers, 1)
		assert.Equal(t, p1, first.Transfers[0].FromUserID)
		assert.Equal(t, p2, first.Transfers[0].ToUserID)
		assert.Equal(t, money.FromUnits(50), first.Transfers[0].Amount)
	})

	tests := []struct {
		name    string
		session *entities.Session
		repoErr error
		wantErr error
	}{
		{name: "missing session", session: nil, wantErr: domain.ErrNotFound},
		{name: "active session", session: activeSession(), wantErr: domain.ErrSessionNotClosed},
		{name: "store failure", repoErr: errors.New("connection reset")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sessions := new(testhelpers.MockSessionRepository)
			players := new(testhelpers.MockSessionPlayerRepository)
			buyIns := new(testhelpers.MockBuyInRepository)

			if tt.session == nil {
				sessions.On("GetByID", ctx, testSessionID).Return(nil, tt.repoErr)
			} else {
				sessions.On("GetByID", ctx, testSessionID).Return(tt.session, tt.repoErr)
			}

			svc := NewSettlementService(sessions, players, buyIns, NewSettlementCalculator(money.DefaultTolerance))
			settlement, err := svc.GetSettlement(ctx, testSessionID)

			assert.Error(t, err)
			assert.Nil(t, settlement)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.repoErr != nil {
				assert.ErrorIs(t, err, tt.repoErr)
			}
			players.AssertNotCalled(t, "GetBySession")
		})
	}
}
