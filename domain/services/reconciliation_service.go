package services

import (
	"context"
	"fmt"

	"cashgame/domain"
	"cashgame/domain/entities"
	"cashgame/domain/events"
	"cashgame/domain/interfaces"
	"cashgame/domain/money"

	log "github.com/sirupsen/logrus"
)

// reconciliationService implements the ReconciliationService interface
type reconciliationService struct {
	sessionRepo    interfaces.SessionRepository
	playerRepo     interfaces.SessionPlayerRepository
	buyInRepo      interfaces.BuyInRepository
	cashOutRepo    interfaces.CashOutRepository
	eventPublisher interfaces.EventPublisher
	tolerance      money.Amount
}

// NewReconciliationService creates a new reconciliation service.
// tolerance is the largest |pool - totalOut| accepted at close.
func NewReconciliationService(
	sessionRepo interfaces.SessionRepository,
	playerRepo interfaces.SessionPlayerRepository,
	buyInRepo interfaces.BuyInRepository,
	cashOutRepo interfaces.CashOutRepository,
	eventPublisher interfaces.EventPublisher,
	tolerance money.Amount,
) interfaces.ReconciliationService {
	if tolerance < 0 {
		tolerance = 0
	}
	return &reconciliationService{
		sessionRepo:    sessionRepo,
		playerRepo:     playerRepo,
		buyInRepo:      buyInRepo,
		cashOutRepo:    cashOutRepo,
		eventPublisher: eventPublisher,
		tolerance:      tolerance,
	}
}

// CloseSession audits the session and, when money in matches money out,
// stores every player's final winnings and closes the session.
// Players missing from finalChips are treated as holding no chips.
func (s *reconciliationService) CloseSession(ctx context.Context, sessionID, actorID int64, finalChips map[int64]money.Amount) (*entities.AuditResult, error) {
	// Exclusive lock: waits for in-flight ledger writes and serializes racing closes
	session, err := s.sessionRepo.GetByIDForUpdate(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("session %d: %w", sessionID, domain.ErrNotFound)
	}
	if !session.IsHost(actorID) {
		return nil, domain.ErrNotHost
	}
	if session.IsClosed() {
		return nil, fmt.Errorf("session %d: %w", sessionID, domain.ErrAlreadyClosed)
	}

	players, err := s.playerRepo.GetBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session players: %w", err)
	}
	if err := validateFinalChips(players, finalChips); err != nil {
		return nil, err
	}

	buyIns, err := s.buyInRepo.GetBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get buy-ins: %w", err)
	}
	cashOuts, err := s.cashOutRepo.GetBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cash-outs: %w", err)
	}

	snapshot := &entities.SessionSnapshot{
		Session:  session,
		Players:  players,
		BuyIns:   buyIns,
		CashOuts: cashOuts,
	}

	result := &entities.AuditResult{
		SessionID:  sessionID,
		Pool:       snapshot.Pool(),
		AlreadyOut: snapshot.CashedOut(),
	}
	for _, p := range players {
		result.TableNow += finalChips[p.UserID]
	}
	result.TotalOut = result.AlreadyOut + result.TableNow

	if !result.Balanced(s.tolerance) {
		log.WithFields(log.Fields{
			"sessionID":   sessionID,
			"pool":        result.Pool.String(),
			"totalOut":    result.TotalOut.String(),
			"discrepancy": result.Discrepancy().String(),
		}).Info("Session close blocked by audit mismatch")
		return result, &domain.AuditMismatchError{
			SessionID: sessionID,
			Pool:      result.Pool,
			TotalOut:  result.TotalOut,
		}
	}

	cashedOutBy := make(map[int64]money.Amount, len(players))
	for _, c := range cashOuts {
		cashedOutBy[c.UserID] += c.Amount
	}
	for _, p := range players {
		extracted := cashedOutBy[p.UserID] + finalChips[p.UserID]
		if err := s.playerRepo.SetFinalWinnings(ctx, sessionID, p.UserID, extracted); err != nil {
			return nil, fmt.Errorf("failed to set final winnings for user %d: %w", p.UserID, err)
		}
	}

	closed, err := s.sessionRepo.MarkClosed(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to close session: %w", err)
	}
	if closed == nil {
		return nil, fmt.Errorf("session %d: %w", sessionID, domain.ErrAlreadyClosed)
	}

	event := events.SessionClosedEvent{
		SessionID: sessionID,
		Pool:      result.Pool,
		TotalOut:  result.TotalOut,
	}
	if closed.ClosedAt != nil {
		event.ClosedAt = *closed.ClosedAt
	}
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithFields(log.Fields{
			"sessionID": sessionID,
			"error":     err,
		}).Error("Failed to publish session closed event")
	}

	return result, nil
}

func validateFinalChips(players []*entities.SessionPlayer, finalChips map[int64]money.Amount) error {
	seated := make(map[int64]bool, len(players))
	for _, p := range players {
		seated[p.UserID] = true
	}
	for userID, chips := range finalChips {
		if chips < 0 {
			return fmt.Errorf("%w: negative chip count %s for user %d", domain.ErrInvalidInput, chips, userID)
		}
		if !seated[userID] {
			return fmt.Errorf("chip count for user %d: %w", userID, domain.ErrNotSeated)
		}
	}
	return nil
}
