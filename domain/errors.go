package domain

import (
	"errors"
	"fmt"

	"cashgame/domain/money"
)

// Ledger error taxonomy. Callers branch on these with errors.Is / errors.As.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
	ErrAlreadyClosed    = errors.New("session already closed")
	ErrSessionNotClosed = errors.New("session is not closed")
	ErrUnbalancedLedger = errors.New("unbalanced ledger")
	ErrNotHost          = errors.New("only the session host can do this")
	ErrAuditMismatch    = errors.New("audit mismatch")

	ErrSessionNotActive  = fmt.Errorf("%w: session is not active", ErrInvalidInput)
	ErrNonPositiveAmount = fmt.Errorf("%w: amount must be greater than zero", ErrInvalidInput)
	ErrNotSeated         = fmt.Errorf("%w: user is not seated in this session", ErrInvalidInput)

	// ErrAlreadyResolved is returned for a buy-in that exists but has left the
	// pending state. It also satisfies errors.Is(err, ErrNotFound).
	ErrAlreadyResolved error = alreadyResolvedError{}
)

type alreadyResolvedError struct{}

func (alreadyResolvedError) Error() string {
	return "buy-in already resolved"
}

func (alreadyResolvedError) Is(target error) bool {
	return target == ErrNotFound
}

// AuditMismatchError blocks a session close when money out does not match the pool
type AuditMismatchError struct {
	SessionID int64
	Pool      money.Amount
	TotalOut  money.Amount
}

func (e *AuditMismatchError) Error() string {
	return fmt.Sprintf("audit mismatch for session %d: pool %s, total out %s, discrepancy %s",
		e.SessionID, e.Pool, e.TotalOut, e.Discrepancy())
}

// Discrepancy is pool minus total out; positive means chips are missing
func (e *AuditMismatchError) Discrepancy() money.Amount {
	return e.Pool - e.TotalOut
}

func (e *AuditMismatchError) Is(target error) bool {
	return target == ErrAuditMismatch
}
