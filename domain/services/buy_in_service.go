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

// buyInService implements the BuyInService interface
type buyInService struct {
	sessionRepo    interfaces.SessionRepository
	playerRepo     interfaces.SessionPlayerRepository
	userRepo       interfaces.UserRepository
	buyInRepo      interfaces.BuyInRepository
	eventPublisher interfaces.EventPublisher
}

// NewBuyInService creates a new buy-in service
func NewBuyInService(
	sessionRepo interfaces.SessionRepository,
	playerRepo interfaces.SessionPlayerRepository,
	userRepo interfaces.UserRepository,
	buyInRepo interfaces.BuyInRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.BuyInService {
	return &buyInService{
		sessionRepo:    sessionRepo,
		playerRepo:     playerRepo,
		userRepo:       userRepo,
		buyInRepo:      buyInRepo,
		eventPublisher: eventPublisher,
	}
}

// RequestBuyIn records a buy-in, seating the user first if needed
func (s *buyInService) RequestBuyIn(ctx context.Context, sessionID, actorID, userID int64, amount money.Amount) (*entities.BuyIn, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrNonPositiveAmount
	}

	session, err := lockActiveSession(ctx, s.sessionRepo, sessionID)
	if err != nil {
		return nil, err
	}

	// Players file their own buy-ins; the host may file on anyone's behalf
	if actorID != userID && !session.IsHost(actorID) {
		return nil, domain.ErrNotHost
	}

	if err := s.ensureSeated(ctx, session, userID); err != nil {
		return nil, err
	}

	status := entities.BuyInStatusPending
	if session.IsHost(userID) {
		status = entities.BuyInStatusApproved
	}

	buyIn := &entities.BuyIn{
		SessionID: sessionID,
		UserID:    userID,
		Amount:    amount,
		Status:    status,
	}
	if err := s.buyInRepo.Create(ctx, buyIn); err != nil {
		return nil, fmt.Errorf("failed to create buy-in: %w", err)
	}

	s.publish(events.BuyInRequestedEvent{
		BuyInID:   buyIn.ID,
		SessionID: sessionID,
		UserID:    userID,
		Amount:    amount,
		Status:    string(status),
	})

	return buyIn, nil
}

// Approve moves a pending buy-in into the pool
func (s *buyInService) Approve(ctx context.Context, buyInID, actorID int64) (*entities.BuyIn, error) {
	return s.resolve(ctx, buyInID, actorID, entities.BuyInStatusApproved)
}

// Reject resolves a pending buy-in without adding it to the pool
func (s *buyInService) Reject(ctx context.Context, buyInID, actorID int64) (*entities.BuyIn, error) {
	return s.resolve(ctx, buyInID, actorID, entities.BuyInStatusRejected)
}

func (s *buyInService) resolve(ctx context.Context, buyInID, actorID int64, status entities.BuyInStatus) (*entities.BuyIn, error) {
	buyIn, err := s.getBuyIn(ctx, buyInID)
	if err != nil {
		return nil, err
	}

	session, err := lockSession(ctx, s.sessionRepo, buyIn.SessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsHost(actorID) {
		return nil, domain.ErrNotHost
	}
	if !buyIn.IsPending() {
		return nil, fmt.Errorf("buy-in %d is %s: %w", buyInID, buyIn.Status, domain.ErrAlreadyResolved)
	}
	if !session.IsActive() {
		return nil, fmt.Errorf("session %d: %w", session.ID, domain.ErrSessionNotActive)
	}

	// The conditional update is the arbiter between racing approve/reject/delete calls
	resolved, err := s.buyInRepo.Resolve(ctx, buyInID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve buy-in: %w", err)
	}
	if resolved == nil {
		current, err := s.buyInRepo.GetByID(ctx, buyInID)
		if err != nil {
			return nil, fmt.Errorf("failed to reload buy-in: %w", err)
		}
		if current == nil {
			return nil, fmt.Errorf("buy-in %d: %w", buyInID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("buy-in %d is %s: %w", buyInID, current.Status, domain.ErrAlreadyResolved)
	}

	s.publish(events.BuyInResolvedEvent{
		BuyInID:   resolved.ID,
		SessionID: resolved.SessionID,
		UserID:    resolved.UserID,
		Amount:    resolved.Amount,
		Status:    string(resolved.Status),
	})

	return resolved, nil
}

// EditAmount changes the amount of a buy-in while the session is active
func (s *buyInService) EditAmount(ctx context.Context, buyInID, actorID int64, amount money.Amount) (*entities.BuyIn, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrNonPositiveAmount
	}

	buyIn, err := s.getBuyIn(ctx, buyInID)
	if err != nil {
		return nil, err
	}

	if _, err := lockSessionForHost(ctx, s.sessionRepo, buyIn.SessionID, actorID); err != nil {
		return nil, err
	}

	updated, err := s.buyInRepo.UpdateAmount(ctx, buyInID, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to update buy-in amount: %w", err)
	}
	if updated == nil {
		return nil, fmt.Errorf("buy-in %d: %w", buyInID, domain.ErrNotFound)
	}

	s.publish(events.BuyInAmendedEvent{
		BuyInID:   buyInID,
		SessionID: updated.SessionID,
		OldAmount: buyIn.Amount,
		NewAmount: updated.Amount,
	})

	return updated, nil
}

// Delete removes a buy-in from the ledger as if it never existed
func (s *buyInService) Delete(ctx context.Context, buyInID, actorID int64) error {
	buyIn, err := s.getBuyIn(ctx, buyInID)
	if err != nil {
		return err
	}

	if _, err := lockSessionForHost(ctx, s.sessionRepo, buyIn.SessionID, actorID); err != nil {
		return err
	}

	deleted, err := s.buyInRepo.Delete(ctx, buyInID)
	if err != nil {
		return fmt.Errorf("failed to delete buy-in: %w", err)
	}
	if !deleted {
		return fmt.Errorf("buy-in %d: %w", buyInID, domain.ErrNotFound)
	}

	s.publish(events.BuyInDeletedEvent{
		BuyInID:   buyInID,
		SessionID: buyIn.SessionID,
		UserID:    buyIn.UserID,
		Amount:    buyIn.Amount,
		Status:    string(buyIn.Status),
	})

	return nil
}

func (s *buyInService) getBuyIn(ctx context.Context, buyInID int64) (*entities.BuyIn, error) {
	buyIn, err := s.buyInRepo.GetByID(ctx, buyInID)
	if err != nil {
		return nil, fmt.Errorf("failed to get buy-in: %w", err)
	}
	if buyIn == nil {
		return nil, fmt.Errorf("buy-in %d: %w", buyInID, domain.ErrNotFound)
	}
	return buyIn, nil
}

// ensureSeated auto-joins a user on their first buy-in
func (s *buyInService) ensureSeated(ctx context.Context, session *entities.Session, userID int64) error {
	player, err := s.playerRepo.Get(ctx, session.ID, userID)
	if err != nil {
		return fmt.Errorf("failed to get session player: %w", err)
	}
	if player != nil {
		return nil
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}

	role := entities.PlayerRolePlayer
	if session.IsHost(userID) {
		role = entities.PlayerRoleAdmin
	}

	_, created, err := s.playerRepo.AddIfAbsent(ctx, &entities.SessionPlayer{
		SessionID: session.ID,
		UserID:    userID,
		Name:      user.Name,
		Role:      role,
	})
	if err != nil {
		return fmt.Errorf("failed to seat player: %w", err)
	}
	if created {
		s.publish(events.PlayerJoinedEvent{SessionID: session.ID, UserID: userID, Role: string(role)})
	}
	return nil
}

func (s *buyInService) publish(event events.Event) {
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"error":     err,
		}).Error("Failed to publish buy-in event")
	}
}

// lockSession takes a shared lock on the session row.
// Writers hold the shared lock until commit, so a close cannot interleave with them.
func lockSession(ctx context.Context, repo interfaces.SessionRepository, sessionID int64) (*entities.Session, error) {
	session, err := repo.GetByIDForShare(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("session %d: %w", sessionID, domain.ErrNotFound)
	}
	return session, nil
}

// lockActiveSession is lockSession that also requires the session to be active
func lockActiveSession(ctx context.Context, repo interfaces.SessionRepository, sessionID int64) (*entities.Session, error) {
	session, err := lockSession(ctx, repo, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsActive() {
		return nil, fmt.Errorf("session %d: %w", sessionID, domain.ErrSessionNotActive)
	}
	return session, nil
}

// lockSessionForHost is lockActiveSession plus a host check for actorID
func lockSessionForHost(ctx context.Context, repo interfaces.SessionRepository, sessionID, actorID int64) (*entities.Session, error) {
	session, err := lockActiveSession(ctx, repo, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsHost(actorID) {
		return nil, domain.ErrNotHost
	}
	return session, nil
}
