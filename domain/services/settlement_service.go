package services

import (
	"context"
	"fmt"

	"cashgame/domain"
	"cashgame/domain/entities"
	"cashgame/domain/interfaces"
)

// settlementService implements the SettlementService interface
type settlementService struct {
	sessionRepo interfaces.SessionRepository
	playerRepo  interfaces.SessionPlayerRepository
	buyInRepo   interfaces.BuyInRepository
	calculator  *SettlementCalculator
}

// NewSettlementService creates a new settlement service
func NewSettlementService(
	sessionRepo interfaces.SessionRepository,
	playerRepo interfaces.SessionPlayerRepository,
	buyInRepo interfaces.BuyInRepository,
	calculator *SettlementCalculator,
) interfaces.SettlementService {
	return &settlementService{
		sessionRepo: sessionRepo,
		playerRepo:  playerRepo,
		buyInRepo:   buyInRepo,
		calculator:  calculator,
	}
}

// GetSettlement recomputes the settlement of a closed session from stored rows
func (s *settlementService) GetSettlement(ctx context.Context, sessionID int64) (*entities.Settlement, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("session %d: %w", sessionID, domain.ErrNotFound)
	}
	if !session.IsClosed() {
		return nil, fmt.Errorf("session %d: %w", sessionID, domain.ErrSessionNotClosed)
	}

	players, err := s.playerRepo.GetBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session players: %w", err)
	}

	buyIns, err := s.buyInRepo.GetBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get buy-ins: %w", err)
	}

	return s.calculator.Calculate(session, players, buyIns)
}
