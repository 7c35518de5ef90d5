package application

import (
	"context"
	"errors"
	"fmt"

	"cashgame/domain"
	"cashgame/domain/entities"
	"cashgame/domain/interfaces"
	"cashgame/domain/money"
	"cashgame/domain/services"

	log "github.com/sirupsen/logrus"
)

// Metric outcome labels
const (
	auditOutcomePassed   = "passed"
	auditOutcomeMismatch = "mismatch"

	settlementOutcomeOK         = "ok"
	settlementOutcomeUnbalanced = "unbalanced"
)

// Ledger implements interfaces.LedgerService. Every call runs in its own unit of work:
// the domain services are built on the transaction-bound repositories, and buffered
// events are published only once the transaction commits.
type Ledger struct {
	uowFactory   UnitOfWorkFactory
	metrics      interfaces.LedgerMetrics
	tolerance    money.Amount
	calculator   *services.SettlementCalculator
	generateCode services.CodeGenerator
}

// LedgerOption customizes a Ledger
type LedgerOption func(*Ledger)

// WithCodeGenerator overrides how session share codes are generated
func WithCodeGenerator(generate services.CodeGenerator) LedgerOption {
	return func(l *Ledger) {
		l.generateCode = generate
	}
}

// NewLedger creates the ledger facade. metrics may be nil.
func NewLedger(uowFactory UnitOfWorkFactory, metrics interfaces.LedgerMetrics, tolerance money.Amount, opts ...LedgerOption) *Ledger {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if tolerance < 0 {
		tolerance = 0
	}

	l := &Ledger{
		uowFactory: uowFactory,
		metrics:    metrics,
		tolerance:  tolerance,
		calculator: services.NewSettlementCalculator(tolerance),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// inUnitOfWork runs fn inside a fresh unit of work and commits when fn succeeds.
// On failure the transaction is rolled back and fn's result is still returned,
// so callers can surface partial results such as a failed audit.
func inUnitOfWork[T any](ctx context.Context, f UnitOfWorkFactory, fn func(UnitOfWork) (T, error)) (T, error) {
	uow := f.Create()
	if err := uow.Begin(ctx); err != nil {
		var zero T
		return zero, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := uow.Rollback(); err != nil {
			log.WithError(err).Warn("Failed to roll back unit of work")
		}
	}()

	result, err := fn(uow)
	if err != nil {
		return result, err
	}

	if err := uow.Commit(); err != nil {
		var zero T
		return zero, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return result, nil
}

func (l *Ledger) userService(uow UnitOfWork) interfaces.UserService {
	return services.NewUserService(uow.UserRepository(), uow.EventBus())
}

func (l *Ledger) sessionService(uow UnitOfWork) interfaces.SessionService {
	return services.NewSessionService(
		uow.SessionRepository(),
		uow.SessionPlayerRepository(),
		uow.UserRepository(),
		uow.BuyInRepository(),
		uow.CashOutRepository(),
		uow.EventBus(),
		l.generateCode,
	)
}

func (l *Ledger) buyInService(uow UnitOfWork) interfaces.BuyInService {
	return services.NewBuyInService(
		uow.SessionRepository(),
		uow.SessionPlayerRepository(),
		uow.UserRepository(),
		uow.BuyInRepository(),
		uow.EventBus(),
	)
}

func (l *Ledger) cashOutService(uow UnitOfWork) interfaces.CashOutService {
	return services.NewCashOutService(
		uow.SessionRepository(),
		uow.SessionPlayerRepository(),
		uow.CashOutRepository(),
		uow.EventBus(),
	)
}

func (l *Ledger) reconciliationService(uow UnitOfWork) interfaces.ReconciliationService {
	return services.NewReconciliationService(
		uow.SessionRepository(),
		uow.SessionPlayerRepository(),
		uow.BuyInRepository(),
		uow.CashOutRepository(),
		uow.EventBus(),
		l.tolerance,
	)
}

func (l *Ledger) settlementService(uow UnitOfWork) interfaces.SettlementService {
	return services.NewSettlementService(
		uow.SessionRepository(),
		uow.SessionPlayerRepository(),
		uow.BuyInRepository(),
		l.calculator,
	)
}

// RegisterUser creates a user with a unique username
func (l *Ledger) RegisterUser(ctx context.Context, name, username string) (*entities.User, error) {
	return inUnitOfWork(ctx, l.uowFactory, func(uow UnitOfWork) (*entities.User, error) {
		return l.userService(uow).RegisterUser(ctx, name, username)
	})
}

// EnsureDiscordUser resolves or creates the user linked to a Discord account
func (l *Ledger) EnsureDiscordUser(ctx context.Context, discordID int64, displayName, username string) (*entities.User, error) {
	return inUnitOfWork(ctx, l.uowFactory, func(uow UnitOfWork) (*entities.User, error) {
		return l.userService(uow).EnsureDiscordUser(ctx, discordID, displayName, username)
	})
}

// CreateSession opens a session with the host seated as admin
func (l *Ledger) CreateSession(ctx context.Context, hostID int64, name string, blindValue money.Amount) (*entities.Session, error) {
	return inUnitOfWork(ctx, l.uowFactory, func(uow UnitOfWork) (*entities.Session, error) {
		return l.sessionService(uow).CreateSession(ctx, hostID, name, blindValue)
	})
}

// JoinSession seats a user by share code
func (l *Ledger) JoinSession(ctx context.Context, code string, userID int64) (*entities.SessionPlayer, error) {
	return inUnitOfWork(ctx, l.uowFactory, func(uow UnitOfWork) (*entities.SessionPlayer, error) {
		return l.sessionService(uow).JoinSession(ctx, code, userID)
	})
}

// ListSessions returns sessions newest first
func (l *Ledger) ListSessions(ctx context.Context, status *entities.SessionStatus, limit int) ([]*entities.Session, error) {
	return inUnitOfWork(ctx, l.uowFactory, func(uow UnitOfWork) ([]*entities.Session, error) {
		return l.sessionService(uow).ListSessions(ctx, status, limit)
	})
}

// GetSnapshot reads a session with its full ledger
func (l *Ledger) GetSnapshot(ctx context.Context, sessionID int64) (*entities.SessionSnapshot, error) {
	return inUnitOfWork(ctx, l.uowFactory, func(uow UnitOfWork) (*entities.SessionSnapshot, error) {
		return l.sessionService(uow).GetSnapshot(ctx, sessionID)
	})
}

// GetSnapshotByCode reads a session with its full ledger by share code
func (l *Ledger) GetSnapshotByCode(ctx context.Context, code string) (*entities.SessionSnapshot, error) {
	return inUnitOfWork(ctx, l.uowFactory, func(uow UnitOfWork) (*entities.SessionSnapshot, error) {
		return l.sessionService(uow).GetSnapshotByCode(ctx, code)
	})
}

// SubmitBuyIn records a buy-in for userID filed by actorID
func (l *Ledger) SubmitBuyIn(ctx context.Context, sessionID, actorID, userID int64, amount money.Amount) (*entities.BuyIn, error) {
	buyIn, err := inUnitOfWork(ctx, l.uowFactory, func(uow UnitOfWork) (*entities.BuyIn, error) {
		return l.buyInService(uow).RequestBuyIn(ctx, sessionID, actorID, userID, amount)
	})
	if err != nil {
		return nil, err
	}
	l.metrics.RecordBuyIn(string(buyIn.Status))
	return buyIn, nil
}

// ApproveBuyIn moves a pending buy-in into the pool
func (l *Ledger) ApproveBuyIn(ctx context.Context, buyInID, actorID int64) (*entities.BuyIn, error) {
	buyIn, err := inUnitOfWork(ctx, l.uowFactory, func(uow UnitOfWork) (*entities.BuyIn, error) {
		return l.buyInService(uow).Approve(ctx, buyInID, actorID)
	})
	if err != nil {
		return nil, err
	}
	l.metrics.RecordBuyInResolution(string(buyIn.Status))
	return buyIn, nil
}

// RejectBuyIn closes a pending buy-in without touching the pool
func (l *Ledger) RejectBuyIn(ctx context.Context, buyInID, actorID int64) (*entities.BuyIn, error) {
	buyIn, err := inUnitOfWork(ctx, l.uowFactory, func(uow UnitOfWork) (*entities.BuyIn, error) {
		return l.buyInService(uow).Reject(ctx, buyInID, actorID)
	})
	if err != nil {
		return nil, err
	}
	l.metrics.RecordBuyInResolution(string(buyIn.Status))
	return buyIn, nil
}

// EditBuyInAmount changes a buy-in amount
func (l *Ledger) EditBuyInAmount(ctx context.Context, buyInID, actorID int64, amount money.Amount) (*entities.BuyIn, error) {
	return inUnitOfWork(ctx, l.uowFactory, func(uow UnitOfWork) (*entities.BuyIn, error) {
		return l.buyInService(uow).EditAmount(ctx, buyInID, actorID, amount)
	})
}

// DeleteBuyIn removes a buy-in from the ledger
func (l *Ledger) DeleteBuyIn(ctx context.Context, buyInID, actorID int64) error {
	_, err := inUnitOfWork(ctx, l.uowFactory, func(uow UnitOfWork) (struct{}, error) {
		return struct{}{}, l.buyInService(uow).Delete(ctx, buyInID, actorID)
	})
	return err
}

// RecordCashOut records a mid-session withdrawal
func (l *Ledger) RecordCashOut(ctx context.Context, sessionID, actorID, userID int64, amount money.Amount) (*entities.CashOut, error) {
	cashOut, err := inUnitOfWork(ctx, l.uowFactory, func(uow UnitOfWork) (*entities.CashOut, error) {
		return l.cashOutService(uow).RecordCashOut(ctx, sessionID, actorID, userID, amount)
	})
	if err != nil {
		return nil, err
	}
	l.metrics.RecordCashOut()
	return cashOut, nil
}

// EditCashOutAmount changes a cash-out amount
func (l *Ledger) EditCashOutAmount(ctx context.Context, cashOutID, actorID int64, amount money.Amount) (*entities.CashOut, error) {
	return inUnitOfWork(ctx, l.uowFactory, func(uow UnitOfWork) (*entities.CashOut, error) {
		return l.cashOutService(uow).EditAmount(ctx, cashOutID, actorID, amount)
	})
}

// DeleteCashOut reverts a cash-out
func (l *Ledger) DeleteCashOut(ctx context.Context, cashOutID, actorID int64) error {
	_, err := inUnitOfWork(ctx, l.uowFactory, func(uow UnitOfWork) (struct{}, error) {
		return struct{}{}, l.cashOutService(uow).Delete(ctx, cashOutID, actorID)
	})
	return err
}

// CloseSession audits and closes a session. On an audit mismatch the figures are
// returned together with a *domain.AuditMismatchError and nothing is written.
func (l *Ledger) CloseSession(ctx context.Context, sessionID, actorID int64, finalChips map[int64]money.Amount) (*entities.AuditResult, error) {
	result, err := inUnitOfWork(ctx, l.uowFactory, func(uow UnitOfWork) (*entities.AuditResult, error) {
		return l.reconciliationService(uow).CloseSession(ctx, sessionID, actorID, finalChips)
	})

	switch {
	case err == nil:
		l.metrics.RecordAudit(auditOutcomePassed)
	case errors.Is(err, domain.ErrAuditMismatch):
		l.metrics.RecordAudit(auditOutcomeMismatch)
	}
	return result, err
}

// GetSettlement computes nets and transfers for a closed session
func (l *Ledger) GetSettlement(ctx context.Context, sessionID int64) (*entities.Settlement, error) {
	settlement, err := inUnitOfWork(ctx, l.uowFactory, func(uow UnitOfWork) (*entities.Settlement, error) {
		return l.settlementService(uow).GetSettlement(ctx, sessionID)
	})

	switch {
	case err == nil:
		l.metrics.RecordSettlement(settlementOutcomeOK)
	case errors.Is(err, domain.ErrUnbalancedLedger):
		l.metrics.RecordSettlement(settlementOutcomeUnbalanced)
	}
	return settlement, err
}

type noopMetrics struct{}

func (noopMetrics) RecordBuyIn(string)           {}
func (noopMetrics) RecordBuyInResolution(string) {}
func (noopMetrics) RecordCashOut()               {}
func (noopMetrics) RecordAudit(string)           {}
func (noopMetrics) RecordSettlement(string)      {}
