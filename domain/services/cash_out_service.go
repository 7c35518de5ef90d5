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

// cashOutService implements the CashOutService interface
type cashOutService struct {
	sessionRepo    interfaces.SessionRepository
	playerRepo     interfaces.SessionPlayerRepository
	cashOutRepo    interfaces.CashOutRepository
	eventPublisher interfaces.EventPublisher
}

// NewCashOutService creates a new cash-out service
func NewCashOutService(
	sessionRepo interfaces.SessionRepository,
	playerRepo interfaces.SessionPlayerRepository,
	cashOutRepo interfaces.CashOutRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.CashOutService {
	return &cashOutService{
		sessionRepo:    sessionRepo,
		playerRepo:     playerRepo,
		cashOutRepo:    cashOutRepo,
		eventPublisher: eventPublisher,
	}
}

// RecordCashOut appends a mid-session withdrawal for a seated player.
// A cash-out is never matched against the player's own buy-ins.
func (s *cashOutService) RecordCashOut(ctx context.Context, sessionID, actorID, userID int64, amount money.Amount) (*entities.CashOut, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrNonPositiveAmount
	}

	if _, err := lockSessionForHost(ctx, s.sessionRepo, sessionID, actorID); err != nil {
		return nil, err
	}

	player, err := s.playerRepo.Get(ctx, sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session player: %w", err)
	}
	if player == nil {
		return nil, fmt.Errorf("user %d in session %d: %w", userID, sessionID, domain.ErrNotSeated)
	}

	cashOut := &entities.CashOut{
		SessionID: sessionID,
		UserID:    userID,
		Amount:    amount,
	}
	if err := s.cashOutRepo.Create(ctx, cashOut); err != nil {
		return nil, fmt.Errorf("failed to create cash-out: %w", err)
	}

	s.publish(events.CashOutRecordedEvent{
		CashOutID: cashOut.ID,
		SessionID: sessionID,
		UserID:    userID,
		Amount:    amount,
	})

	return cashOut, nil
}

// EditAmount changes a cash-out amount while the session is active
func (s *cashOutService) EditAmount(ctx context.Context, cashOutID, actorID int64, amount money.Amount) (*entities.CashOut, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrNonPositiveAmount
	}

	cashOut, err := s.getCashOut(ctx, cashOutID)
	if err != nil {
		return nil, err
	}

	if _, err := lockSessionForHost(ctx, s.sessionRepo, cashOut.SessionID, actorID); err != nil {
		return nil, err
	}

	updated, err := s.cashOutRepo.UpdateAmount(ctx, cashOutID, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to update cash-out amount: %w", err)
	}
	if updated == nil {
		return nil, fmt.Errorf("cash-out %d: %w", cashOutID, domain.ErrNotFound)
	}

	s.publish(events.CashOutAmendedEvent{
		CashOutID: cashOutID,
		SessionID: updated.SessionID,
		OldAmount: cashOut.Amount,
		NewAmount: updated.Amount,
	})

	return updated, nil
}

// Delete reverts a cash-out
func (s *cashOutService) Delete(ctx context.Context, cashOutID, actorID int64) error {
	cashOut, err := s.getCashOut(ctx, cashOutID)
	if err != nil {
		return err
	}

	if _, err := lockSessionForHost(ctx, s.sessionRepo, cashOut.SessionID, actorID); err != nil {
		return err
	}

	deleted, err := s.cashOutRepo.Delete(ctx, cashOutID)
	if err != nil {
		return fmt.Errorf("failed to delete cash-out: %w", err)
	}
	if !deleted {
		return fmt.Errorf("cash-out %d: %w", cashOutID, domain.ErrNotFound)
	}

	s.publish(events.CashOutDeletedEvent{
		CashOutID: cashOutID,
		SessionID: cashOut.SessionID,
		UserID:    cashOut.UserID,
		Amount:    cashOut.Amount,
	})

	return nil
}

func (s *cashOutService) getCashOut(ctx context.Context, cashOutID int64) (*entities.CashOut, error) {
	cashOut, err := s.cashOutRepo.GetByID(ctx, cashOutID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cash-out: %w", err)
	}
	if cashOut == nil {
		return nil, fmt.Errorf("cash-out %d: %w", cashOutID, domain.ErrNotFound)
	}
	return cashOut, nil
}

func (s *cashOutService) publish(event events.Event) {
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"error":     err,
		}).Error("Failed to publish cash-out event")
	}
}
