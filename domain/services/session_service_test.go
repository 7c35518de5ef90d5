package services

import (
	"context"
	"regexp"
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

type sessionMocks struct {
	sessions  *testhelpers.MockSessionRepository
	players   *testhelpers.MockSessionPlayerRepository
	users     *testhelpers.MockUserRepository
	buyIns    *testhelpers.MockBuyInRepository
	cashOuts  *testhelpers.MockCashOutRepository
	publisher *testhelpers.MockEventPublisher
}

func newSessionMocks() *sessionMocks {
	return &sessionMocks{
		sessions:  new(testhelpers.MockSessionRepository),
		players:   new(testhelpers.MockSessionPlayerRepository),
		users:     new(testhelpers.MockUserRepository),
		buyIns:    new(testhelpers.MockBuyInRepository),
		cashOuts:  new(testhelpers.MockCashOutRepository),
		publisher: new(testhelpers.MockEventPublisher),
	}
}

func (m *sessionMocks) service(codes ...string) interfaces.SessionService {
	var gen CodeGenerator
	if len(codes) > 0 {
		i := 0
		gen = func() (string, error) {
			code := codes[i%len(codes)]
			i++
			return code, nil
		}
	}
	return NewSessionService(m.sessions, m.players, m.users, m.buyIns, m.cashOuts, m.publisher, gen)
}

func TestRandomSessionCode(t *testing.T) {
	t.Parallel()

	pattern := regexp.MustCompile(`^[0-9A-Z]{6}$`)
	for i := 0; i < 100; i++ {
		code, err := RandomSessionCode()
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
	}
}

func TestSessionService_CreateSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	host := &entities.User{ID: testHostID, Name: "Hana", Username: "hana"}

	t.Run("creates session and seats host", func(t *testing.T) {
		t.Parallel()
		m := newSessionMocks()

		m.users.On("GetByID", ctx, testHostID).Return(host, nil)
		m.sessions.On("GetByCode", ctx, "TAKEN1").Return(activeSession(), nil)
		m.sessions.On("GetByCode", ctx, "FRESH2").Return(nil, nil)
		m.sessions.On("Create", ctx, mock.MatchedBy(func(s *entities.Session) bool {
			return s.Code == "FRESH2" && s.CreatedBy == testHostID && s.Name == "Friday game"
		})).
			Run(func(args mock.Arguments) { args.Get(1).(*entities.Session).ID = 42 }).
			Return(nil)
		m.players.On("AddIfAbsent", ctx, mock.MatchedBy(func(p *entities.SessionPlayer) bool {
			return p.SessionID == 42 && p.UserID == testHostID && p.Role == entities.PlayerRoleAdmin
		})).Return(&entities.SessionPlayer{}, true, nil)
		m.publisher.On("Publish", mock.AnythingOfType("events.SessionCreatedEvent")).Return(nil)
		m.publisher.On("Publish", mock.AnythingOfType("events.PlayerJoinedEvent")).Return(nil)

		session, err := m.service("TAKEN1", "FRESH2").CreateSession(ctx, testHostID, "  Friday game ", money.FromUnits(1))
		require.NoError(t, err)

		assert.Equal(t, int64(42), session.ID)
		assert.Equal(t, "FRESH2", session.Code)
		assert.Equal(t, entities.SessionStatusActive, session.Status)
		m.sessions.AssertExpectations(t)
		m.players.AssertExpectations(t)
		m.publisher.AssertExpectations(t)
	})

	t.Run("gives up after repeated collisions", func(t *testing.T) {
		t.Parallel()
		m := newSessionMocks()

		m.users.On("GetByID", ctx, testHostID).Return(host, nil)
		m.sessions.On("GetByCode", ctx, "TAKEN1").Return(activeSession(), nil)

		_, err := m.service("TAKEN1").CreateSession(ctx, testHostID, "Friday game", 0)
		assert.Error(t, err)
		m.sessions.AssertNumberOfCalls(t, "GetByCode", maxCodeAttempts)
		m.sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	tests := []struct {
		name       string
		title      string
		blindValue money.Amount
		setupMock  func(*sessionMocks)
		wantErr    error
	}{
		{name: "blank name", title: "   ", setupMock: func(*sessionMocks) {}, wantErr: domain.ErrInvalidInput},
		{name: "negative blind", title: "Game", blindValue: -1, setupMock: func(*sessionMocks) {}, wantErr: domain.ErrInvalidInput},
		{
			name:  "unknown host",
			title: "Game",
			setupMock: func(m *sessionMocks) {
				m.users.On("GetByID", ctx, testHostID).Return(nil, nil)
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := newSessionMocks()
			tt.setupMock(m)

			session, err := m.service("ABC123").CreateSession(ctx, testHostID, tt.title, tt.blindValue)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, session)
		})
	}
}

func TestSessionService_JoinSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("seats new player with lower-cased code", func(t *testing.T) {
		t.Parallel()
		m := newSessionMocks()

		seat := &entities.SessionPlayer{SessionID: testSessionID, UserID: testPlayerID, Role: entities.PlayerRolePlayer, SeatNo: 2}
		m.sessions.On("GetByCode", ctx, "ABC123").Return(activeSession(), nil)
		m.players.On("Get", ctx, testSessionID, testPlayerID).Return(nil, nil)
		m.users.On("GetByID", ctx, testPlayerID).Return(&entities.User{ID: testPlayerID, Name: "Priya"}, nil)
		m.players.On("AddIfAbsent", ctx, mock.AnythingOfType("*entities.SessionPlayer")).Return(seat, true, nil)
		m.publisher.On("Publish", mock.AnythingOfType("events.PlayerJoinedEvent")).Return(nil)

		got, err := m.service().JoinSession(ctx, "abc123", testPlayerID)
		require.NoError(t, err)
		assert.Equal(t, seat, got)
		m.publisher.AssertExpectations(t)
	})

	t.Run("re-join returns existing seat even after close", func(t *testing.T) {
		t.Parallel()
		m := newSessionMocks()

		seat := &entities.SessionPlayer{SessionID: testSessionID, UserID: testPlayerID}
		m.sessions.On("GetByCode", ctx, "ABC123").Return(closedTestSession(), nil)
		m.players.On("Get", ctx, testSessionID, testPlayerID).Return(seat, nil)

		got, err := m.service().JoinSession(ctx, "ABC123", testPlayerID)
		require.NoError(t, err)
		assert.Same(t, seat, got)
		m.players.AssertNotCalled(t, "AddIfAbsent", mock.Anything, mock.Anything)
	})

	t.Run("closed session rejects newcomers", func(t *testing.T) {
		t.Parallel()
		m := newSessionMocks()

		m.sessions.On("GetByCode", ctx, "ABC123").Return(closedTestSession(), nil)
		m.players.On("Get", ctx, testSessionID, testPlayerID).Return(nil, nil)

		_, err := m.service().JoinSession(ctx, "ABC123", testPlayerID)
		assert.ErrorIs(t, err, domain.ErrSessionNotActive)
	})

	t.Run("unknown code", func(t *testing.T) {
		t.Parallel()
		m := newSessionMocks()

		m.sessions.On("GetByCode", ctx, "ZZZZZZ").Return(nil, nil)

		_, err := m.service().JoinSession(ctx, "ZZZZZZ", testPlayerID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("blank code", func(t *testing.T) {
		t.Parallel()
		m := newSessionMocks()

		_, err := m.service().JoinSession(ctx, " ", testPlayerID)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestSessionService_ListSessions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{name: "default limit", limit: 0, wantLimit: defaultListLimit},
		{name: "explicit limit", limit: 10, wantLimit: 10},
		{name: "capped limit", limit: 1000, wantLimit: maxListLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := newSessionMocks()
			m.sessions.On("List", ctx, (*entities.SessionStatus)(nil), tt.wantLimit).Return([]*entities.Session{activeSession()}, nil)

			sessions, err := m.service().ListSessions(ctx, nil, tt.limit)
			require.NoError(t, err)
			assert.Len(t, sessions, 1)
			m.sessions.AssertExpectations(t)
		})
	}

	t.Run("unknown status", func(t *testing.T) {
		t.Parallel()
		m := newSessionMocks()

		status := entities.SessionStatus("paused")
		_, err := m.service().ListSessions(ctx, &status, 10)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestSessionService_GetSnapshot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("pending deleted buy-in leaves pool untouched", func(t *testing.T) {
		t.Parallel()
		m := newSessionMocks()

		m.sessions.On("GetByID", ctx, testSessionID).Return(activeSession(), nil)
		m.players.On("GetBySession", ctx, testSessionID).Return(threeSeats(), nil)
		// The deleted pending buy-in is simply absent from the stored rows
		m.buyIns.On("GetBySession", ctx, testSessionID).Return(hundredEach(), nil)
		m.cashOuts.On("GetBySession", ctx, testSessionID).Return([]*entities.CashOut{
			{ID: 1, UserID: p2, Amount: money.FromUnits(30)},
		}, nil)

		snapshot, err := m.service().GetSnapshot(ctx, testSessionID)
		require.NoError(t, err)

		assert.Equal(t, money.FromUnits(300), snapshot.Pool())
		assert.Equal(t, money.FromUnits(30), snapshot.CashedOut())
		assert.Equal(t, money.FromUnits(270), snapshot.OnTable())
		assert.Empty(t, snapshot.PendingBuyIns())
	})

	t.Run("missing session", func(t *testing.T) {
		t.Parallel()
		m := newSessionMocks()

		m.sessions.On("GetByID", ctx, testSessionID).Return(nil, nil)

		_, err := m.service().GetSnapshot(ctx, testSessionID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("by code", func(t *testing.T) {
		t.Parallel()
		m := newSessionMocks()

		m.sessions.On("GetByCode", ctx, "ABC123").Return(activeSession(), nil)
		m.players.On("GetBySession", ctx, testSessionID).Return([]*entities.SessionPlayer{}, nil)
		m.buyIns.On("GetBySession", ctx, testSessionID).Return([]*entities.BuyIn{}, nil)
		m.cashOuts.On("GetBySession", ctx, testSessionID).Return([]*entities.CashOut{}, nil)

		snapshot, err := m.service().GetSnapshotByCode(ctx, "abc123")
		require.NoError(t, err)
		assert.Equal(t, "ABC123", snapshot.Session.Code)
	})
}
