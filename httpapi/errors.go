package httpapi

import (
	"errors"
	"net/http"

	"cashgame/domain"
	"cashgame/domain/money"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

// errorResponse is the body of every non-2xx reply
type errorResponse struct {
	Error string `json:"error"`
}

// auditMismatchResponse carries the audit figures of a refused close
type auditMismatchResponse struct {
	Error       string       `json:"error"`
	SessionID   int64        `json:"sessionId"`
	Pool        money.Amount `json:"pool"`
	TotalOut    money.Amount `json:"totalOut"`
	Discrepancy money.Amount `json:"discrepancy"`
}

// statusFor maps a ledger error to an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrAuditMismatch):
		return http.StatusUnprocessableEntity
	// ErrAlreadyResolved also matches ErrNotFound, so it must be checked first
	case errors.Is(err, domain.ErrAlreadyResolved),
		errors.Is(err, domain.ErrAlreadyClosed),
		errors.Is(err, domain.ErrSessionNotActive),
		errors.Is(err, domain.ErrSessionNotClosed):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotHost):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, money.ErrInvalidAmount),
		errors.Is(err, money.ErrTooPrecise),
		errors.Is(err, money.ErrOutOfRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders a ledger error as JSON
func writeError(c echo.Context, err error) error {
	var mismatch *domain.AuditMismatchError
	if errors.As(err, &mismatch) {
		return c.JSON(http.StatusUnprocessableEntity, auditMismatchResponse{
			Error:       "audit mismatch",
			SessionID:   mismatch.SessionID,
			Pool:        mismatch.Pool,
			TotalOut:    mismatch.TotalOut,
			Discrepancy: mismatch.Discrepancy(),
		})
	}

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithFields(log.Fields{
			"method": c.Request().Method,
			"path":   c.Path(),
			"error":  err,
		}).Error("Request failed")
		return c.JSON(status, errorResponse{Error: "internal error"})
	}

	return c.JSON(status, errorResponse{Error: err.Error()})
}

// badRequest replies 400 with msg
func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}
