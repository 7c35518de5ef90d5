package httpapi

import (
	"net/http"
	"strconv"

	"cashgame/domain/entities"
	"cashgame/domain/interfaces"
	"cashgame/domain/money"

	"github.com/labstack/echo/v4"
)

type handler struct {
	ledger interfaces.LedgerService
}

type registerUserRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

type createSessionRequest struct {
	Name       string       `json:"name"`
	BlindValue money.Amount `json:"blindValue"`
}

type joinSessionRequest struct {
	Code string `json:"code"`
}

// ledgerEntryRequest is the body of buy-in and cash-out writes.
// UserID defaults to the acting user.
type ledgerEntryRequest struct {
	UserID int64        `json:"userId"`
	Amount money.Amount `json:"amount"`
}

type amountRequest struct {
	Amount money.Amount `json:"amount"`
}

type closeSessionRequest struct {
	FinalChips map[int64]money.Amount `json:"finalChips"`
}

// snapshotResponse adds the live totals observers poll for
type snapshotResponse struct {
	*entities.SessionSnapshot
	Pool          money.Amount `json:"pool"`
	CashedOut     money.Amount `json:"cashedOut"`
	OnTable       money.Amount `json:"onTable"`
	PendingBuyIns int          `json:"pendingBuyIns"`
}

type auditResponse struct {
	*entities.AuditResult
	Discrepancy money.Amount `json:"discrepancy"`
}

func newSnapshotResponse(s *entities.SessionSnapshot) snapshotResponse {
	return snapshotResponse{
		SessionSnapshot: s,
		Pool:            s.Pool(),
		CashedOut:       s.CashedOut(),
		OnTable:         s.OnTable(),
		PendingBuyIns:   len(s.PendingBuyIns()),
	}
}

func (h *handler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) registerUser(c echo.Context) error {
	var req registerUserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	user, err := h.ledger.RegisterUser(c.Request().Context(), req.Name, req.Username)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *handler) createSession(c echo.Context) error {
	var req createSessionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	session, err := h.ledger.CreateSession(c.Request().Context(), actor(c), req.Name, req.BlindValue)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, session)
}

func (h *handler) joinSession(c echo.Context) error {
	var req joinSessionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	player, err := h.ledger.JoinSession(c.Request().Context(), req.Code, actor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, player)
}

func (h *handler) listSessions(c echo.Context) error {
	var status *entities.SessionStatus
	if raw := c.QueryParam("status"); raw != "" {
		s := entities.SessionStatus(raw)
		status = &s
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return badRequest(c, "invalid limit")
		}
		limit = n
	}

	sessions, err := h.ledger.ListSessions(c.Request().Context(), status, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, sessions)
}

func (h *handler) getSession(c echo.Context) error {
	sessionID, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "invalid session id")
	}
	snapshot, err := h.ledger.GetSnapshot(c.Request().Context(), sessionID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, newSnapshotResponse(snapshot))
}

func (h *handler) getSessionByCode(c echo.Context) error {
	snapshot, err := h.ledger.GetSnapshotByCode(c.Request().Context(), c.Param("code"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, newSnapshotResponse(snapshot))
}

func (h *handler) submitBuyIn(c echo.Context) error {
	sessionID, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "invalid session id")
	}
	var req ledgerEntryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.UserID == 0 {
		req.UserID = actor(c)
	}

	buyIn, err := h.ledger.SubmitBuyIn(c.Request().Context(), sessionID, actor(c), req.UserID, req.Amount)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, buyIn)
}

func (h *handler) approveBuyIn(c echo.Context) error {
	buyInID, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "invalid buy-in id")
	}
	buyIn, err := h.ledger.ApproveBuyIn(c.Request().Context(), buyInID, actor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, buyIn)
}

func (h *handler) rejectBuyIn(c echo.Context) error {
	buyInID, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "invalid buy-in id")
	}
	buyIn, err := h.ledger.RejectBuyIn(c.Request().Context(), buyInID, actor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, buyIn)
}

func (h *handler) editBuyIn(c echo.Context) error {
	buyInID, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "invalid buy-in id")
	}
	var req amountRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	buyIn, err := h.ledger.EditBuyInAmount(c.Request().Context(), buyInID, actor(c), req.Amount)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, buyIn)
}

func (h *handler) deleteBuyIn(c echo.Context) error {
	buyInID, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "invalid buy-in id")
	}
	if err := h.ledger.DeleteBuyIn(c.Request().Context(), buyInID, actor(c)); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handler) recordCashOut(c echo.Context) error {
	sessionID, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "invalid session id")
	}
	var req ledgerEntryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.UserID == 0 {
		req.UserID = actor(c)
	}

	cashOut, err := h.ledger.RecordCashOut(c.Request().Context(), sessionID, actor(c), req.UserID, req.Amount)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, cashOut)
}

func (h *handler) editCashOut(c echo.Context) error {
	cashOutID, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "invalid cash-out id")
	}
	var req amountRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	cashOut, err := h.ledger.EditCashOutAmount(c.Request().Context(), cashOutID, actor(c), req.Amount)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, cashOut)
}

func (h *handler) deleteCashOut(c echo.Context) error {
	cashOutID, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "invalid cash-out id")
	}
	if err := h.ledger.DeleteCashOut(c.Request().Context(), cashOutID, actor(c)); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handler) closeSession(c echo.Context) error {
	sessionID, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "invalid session id")
	}
	var req closeSessionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	result, err := h.ledger.CloseSession(c.Request().Context(), sessionID, actor(c), req.FinalChips)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, auditResponse{AuditResult: result, Discrepancy: result.Discrepancy()})
}

func (h *handler) getSettlement(c echo.Context) error {
	sessionID, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "invalid session id")
	}
	settlement, err := h.ledger.GetSettlement(c.Request().Context(), sessionID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, settlement)
}
