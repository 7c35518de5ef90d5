package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cashgame/domain"
	"cashgame/domain/entities"
	"cashgame/domain/money"
	"cashgame/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	hostID    int64 = 10
	playerID  int64 = 20
	sessionID int64 = 7
)

func newTestServer() (*Server, *testhelpers.MockLedgerService) {
	ledger := new(testhelpers.MockLedgerService)
	return NewServer(ledger, ":0"), ledger
}

func do(t *testing.T, s *Server, method, path string, actorID int64, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if actorID != 0 {
		req.Header.Set(actorHeader, fmt.Sprint(actorID))
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer()

	rec := do(t, s, http.MethodGet, "/healthz", 0, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
}

func TestActorHeaderRequired(t *testing.T) {
	t.Parallel()
	s, ledger := newTestServer()

	rec := do(t, s, http.MethodPost, "/v1/sessions", 0, `{"name":"Friday"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", strings.NewReader(`{"name":"Friday"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(actorHeader, "abc")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	ledger.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRegisterUser(t *testing.T) {
	t.Parallel()
	s, ledger := newTestServer()

	ledger.On("RegisterUser", mock.Anything, "Ana", "ana").
		Return(&entities.User{ID: 3, Name: "Ana", Username: "ana"}, nil)

	rec := do(t, s, http.MethodPost, "/v1/users", 0, `{"name":"Ana","username":"ana"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "ana", decode(t, rec)["username"])
}

func TestCreateSession(t *testing.T) {
	t.Parallel()
	s, ledger := newTestServer()

	ledger.On("CreateSession", mock.Anything, hostID, "Friday", money.Amount(150)).
		Return(&entities.Session{ID: sessionID, Code: "ABC123", CreatedBy: hostID, Status: entities.SessionStatusActive}, nil)

	rec := do(t, s, http.MethodPost, "/v1/sessions", hostID, `{"name":"Friday","blindValue":"1.50"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "ABC123", decode(t, rec)["code"])
}

func TestListSessions(t *testing.T) {
	t.Parallel()
	s, ledger := newTestServer()

	closed := entities.SessionStatusClosed
	ledger.On("ListSessions", mock.Anything, &closed, 5).Return([]*entities.Session{{ID: 1}, {ID: 2}}, nil)

	rec := do(t, s, http.MethodGet, "/v1/sessions?status=closed&limit=5", 0, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var sessions []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sessions))
	assert.Len(t, sessions, 2)

	rec = do(t, s, http.MethodGet, "/v1/sessions?limit=many", 0, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSessionIncludesLiveTotals(t *testing.T) {
	t.Parallel()
	s, ledger := newTestServer()

	snapshot := &entities.SessionSnapshot{
		Session: &entities.Session{ID: sessionID, Code: "ABC123", Status: entities.SessionStatusActive},
		Players: []*entities.SessionPlayer{{SessionID: sessionID, UserID: hostID}},
		BuyIns: []*entities.BuyIn{
			{ID: 1, UserID: hostID, Amount: money.FromUnits(100), Status: entities.BuyInStatusApproved},
			{ID: 2, UserID: playerID, Amount: money.FromUnits(50), Status: entities.BuyInStatusPending},
		},
		CashOuts: []*entities.CashOut{{ID: 1, UserID: hostID, Amount: money.FromUnits(30)}},
	}
	ledger.On("GetSnapshot", mock.Anything, sessionID).Return(snapshot, nil)
	ledger.On("GetSnapshotByCode", mock.Anything, "ABC123").Return(snapshot, nil)

	for _, path := range []string{"/v1/sessions/7", "/v1/sessions/code/ABC123"} {
		rec := do(t, s, http.MethodGet, path, 0, "")
		require.Equal(t, http.StatusOK, rec.Code, path)

		body := decode(t, rec)
		assert.Equal(t, 100.0, body["pool"])
		assert.Equal(t, 30.0, body["cashedOut"])
		assert.Equal(t, 70.0, body["onTable"])
		assert.Equal(t, 1.0, body["pendingBuyIns"])
		assert.Len(t, body["buyIns"], 2)
	}

	rec := do(t, s, http.MethodGet, "/v1/sessions/zero", 0, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitBuyIn(t *testing.T) {
	t.Parallel()

	t.Run("defaults to the acting user", func(t *testing.T) {
		s, ledger := newTestServer()
		ledger.On("SubmitBuyIn", mock.Anything, sessionID, playerID, playerID, money.FromUnits(100)).
			Return(&entities.BuyIn{ID: 5, Status: entities.BuyInStatusPending, Amount: money.FromUnits(100)}, nil)

		rec := do(t, s, http.MethodPost, "/v1/sessions/7/buy-ins", playerID, `{"amount":100}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "pending", decode(t, rec)["status"])
	})

	t.Run("host files for another player", func(t *testing.T) {
		s, ledger := newTestServer()
		ledger.On("SubmitBuyIn", mock.Anything, sessionID, hostID, playerID, money.Amount(2550)).
			Return(&entities.BuyIn{ID: 6, Status: entities.BuyInStatusPending}, nil)

		rec := do(t, s, http.MethodPost, "/v1/sessions/7/buy-ins", hostID, `{"userId":20,"amount":"25.50"}`)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("too many decimals", func(t *testing.T) {
		s, ledger := newTestServer()

		rec := do(t, s, http.MethodPost, "/v1/sessions/7/buy-ins", playerID, `{"amount":"1.005"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		ledger.AssertNotCalled(t, "SubmitBuyIn", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid input", domain.ErrNonPositiveAmount, http.StatusBadRequest},
		{"not host", domain.ErrNotHost, http.StatusForbidden},
		{"not found", fmt.Errorf("buy-in 9: %w", domain.ErrNotFound), http.StatusNotFound},
		{"already resolved", domain.ErrAlreadyResolved, http.StatusConflict},
		{"session not active", domain.ErrSessionNotActive, http.StatusConflict},
		{"store failure", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ledger := newTestServer()
			ledger.On("ApproveBuyIn", mock.Anything, int64(9), hostID).Return(nil, tt.err)

			rec := do(t, s, http.MethodPost, "/v1/buy-ins/9/approve", hostID, "")
			assert.Equal(t, tt.status, rec.Code)

			body := decode(t, rec)
			if tt.status == http.StatusInternalServerError {
				assert.Equal(t, "internal error", body["error"])
			} else {
				assert.NotEmpty(t, body["error"])
			}
		})
	}
}

func TestCloseSession(t *testing.T) {
	t.Parallel()

	chips := map[int64]money.Amount{hostID: money.FromUnits(50), playerID: money.FromUnits(150)}

	t.Run("balanced", func(t *testing.T) {
		s, ledger := newTestServer()
		ledger.On("CloseSession", mock.Anything, sessionID, hostID, chips).
			Return(&entities.AuditResult{SessionID: sessionID, Pool: money.FromUnits(200), TableNow: money.FromUnits(200), TotalOut: money.FromUnits(200)}, nil)

		rec := do(t, s, http.MethodPost, "/v1/sessions/7/close", hostID, `{"finalChips":{"10":50,"20":"150"}}`)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decode(t, rec)
		assert.Equal(t, 200.0, body["pool"])
		assert.Equal(t, 0.0, body["discrepancy"])
	})

	t.Run("mismatch carries the audit figures", func(t *testing.T) {
		s, ledger := newTestServer()
		mismatch := &domain.AuditMismatchError{SessionID: sessionID, Pool: money.FromUnits(300), TotalOut: money.FromUnits(250)}
		ledger.On("CloseSession", mock.Anything, sessionID, hostID, chips).
			Return(&entities.AuditResult{SessionID: sessionID, Pool: mismatch.Pool, TotalOut: mismatch.TotalOut}, mismatch)

		rec := do(t, s, http.MethodPost, "/v1/sessions/7/close", hostID, `{"finalChips":{"10":50,"20":150}}`)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		body := decode(t, rec)
		assert.Equal(t, 300.0, body["pool"])
		assert.Equal(t, 250.0, body["totalOut"])
		assert.Equal(t, 50.0, body["discrepancy"])
	})

	t.Run("already closed", func(t *testing.T) {
		s, ledger := newTestServer()
		ledger.On("CloseSession", mock.Anything, sessionID, hostID, mock.Anything).Return(nil, domain.ErrAlreadyClosed)

		rec := do(t, s, http.MethodPost, "/v1/sessions/7/close", hostID, `{}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestGetSettlement(t *testing.T) {
	t.Parallel()
	s, ledger := newTestServer()

	ledger.On("GetSettlement", mock.Anything, sessionID).Return(&entities.Settlement{
		SessionID: sessionID,
		Players: []entities.PlayerResult{
			{UserID: hostID, Invested: money.FromUnits(100), Extracted: money.FromUnits(50), Net: money.FromUnits(-50)},
			{UserID: playerID, Invested: money.FromUnits(100), Extracted: money.FromUnits(150), Net: money.FromUnits(50)},
		},
		Transfers: []entities.Transfer{{FromUserID: hostID, ToUserID: playerID, Amount: money.FromUnits(50)}},
	}, nil)
	ledger.On("GetSettlement", mock.Anything, int64(8)).Return(nil, domain.ErrSessionNotClosed)

	rec := do(t, s, http.MethodGet, "/v1/sessions/7/settlement", 0, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Len(t, body["transfers"], 1)
	assert.Len(t, body["perPlayer"], 2)

	rec = do(t, s, http.MethodGet, "/v1/sessions/8/settlement", 0, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDeleteAndEditEntries(t *testing.T) {
	t.Parallel()
	s, ledger := newTestServer()

	ledger.On("DeleteBuyIn", mock.Anything, int64(4), hostID).Return(nil)
	ledger.On("EditCashOutAmount", mock.Anything, int64(3), hostID, money.FromUnits(60)).
		Return(&entities.CashOut{ID: 3, Amount: money.FromUnits(60)}, nil)
	ledger.On("DeleteCashOut", mock.Anything, int64(3), playerID).Return(domain.ErrNotHost)

	rec := do(t, s, http.MethodDelete, "/v1/buy-ins/4", hostID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodPatch, "/v1/cash-outs/3", hostID, `{"amount":60}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 60.0, decode(t, rec)["amount"])

	rec = do(t, s, http.MethodDelete, "/v1/cash-outs/3", playerID, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
