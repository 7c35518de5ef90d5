package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"cashgame/domain"
	"cashgame/domain/entities"
	"cashgame/domain/events"
	"cashgame/domain/interfaces"
	"cashgame/domain/money"

	log "github.com/sirupsen/logrus"
)

const (
	sessionCodeLength   = 6
	sessionCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	maxCodeAttempts     = 5

	defaultListLimit = 50
	maxListLimit     = 200
)

// CodeGenerator produces candidate share codes
type CodeGenerator func() (string, error)

// RandomSessionCode returns a random 6-character upper-case alphanumeric code
func RandomSessionCode() (string, error) {
	var sb strings.Builder
	alphabetLen := big.NewInt(int64(len(sessionCodeAlphabet)))
	for i := 0; i < sessionCodeLength; i++ {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", err
		}
		sb.WriteByte(sessionCodeAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

// sessionService implements the SessionService interface
type sessionService struct {
	sessionRepo    interfaces.SessionRepository
	playerRepo     interfaces.SessionPlayerRepository
	userRepo       interfaces.UserRepository
	buyInRepo      interfaces.BuyInRepository
	cashOutRepo    interfaces.CashOutRepository
	eventPublisher interfaces.EventPublisher
	generateCode   CodeGenerator
}

// NewSessionService creates a new session service. A nil generator uses RandomSessionCode.
func NewSessionService(
	sessionRepo interfaces.SessionRepository,
	playerRepo interfaces.SessionPlayerRepository,
	userRepo interfaces.UserRepository,
	buyInRepo interfaces.BuyInRepository,
	cashOutRepo interfaces.CashOutRepository,
	eventPublisher interfaces.EventPublisher,
	generateCode CodeGenerator,
) interfaces.SessionService {
	if generateCode == nil {
		generateCode = RandomSessionCode
	}
	return &sessionService{
		sessionRepo:    sessionRepo,
		playerRepo:     playerRepo,
		userRepo:       userRepo,
		buyInRepo:      buyInRepo,
		cashOutRepo:    cashOutRepo,
		eventPublisher: eventPublisher,
		generateCode:   generateCode,
	}
}

// CreateSession opens a new session and seats the host as admin
func (s *sessionService) CreateSession(ctx context.Context, hostID int64, name string, blindValue money.Amount) (*entities.Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: session name is required", domain.ErrInvalidInput)
	}
	if blindValue < 0 {
		return nil, fmt.Errorf("%w: blind value cannot be negative", domain.ErrInvalidInput)
	}

	host, err := s.userRepo.GetByID(ctx, hostID)
	if err != nil {
		return nil, fmt.Errorf("failed to get host: %w", err)
	}
	if host == nil {
		return nil, fmt.Errorf("user %d: %w", hostID, domain.ErrNotFound)
	}

	code, err := s.uniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	session := &entities.Session{
		Name:       name,
		Code:       code,
		CreatedBy:  hostID,
		Status:     entities.SessionStatusActive,
		BlindValue: blindValue,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if _, _, err := s.playerRepo.AddIfAbsent(ctx, &entities.SessionPlayer{
		SessionID: session.ID,
		UserID:    hostID,
		Name:      host.Name,
		Role:      entities.PlayerRoleAdmin,
	}); err != nil {
		return nil, fmt.Errorf("failed to seat host: %w", err)
	}

	s.publish(events.SessionCreatedEvent{
		SessionID: session.ID,
		Code:      session.Code,
		HostID:    hostID,
		Name:      session.Name,
	})
	s.publish(events.PlayerJoinedEvent{
		SessionID: session.ID,
		UserID:    hostID,
		Role:      string(entities.PlayerRoleAdmin),
	})

	log.WithFields(log.Fields{
		"sessionID": session.ID,
		"code":      session.Code,
		"hostID":    hostID,
	}).Info("Session created")

	return session, nil
}

func (s *sessionService) uniqueCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.generateCode()
		if err != nil {
			return "", fmt.Errorf("failed to generate session code: %w", err)
		}
		existing, err := s.sessionRepo.GetByCode(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check session code: %w", err)
		}
		if existing == nil {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique session code after %d attempts", maxCodeAttempts)
}

// JoinSession seats a user in an active session by its share code
func (s *sessionService) JoinSession(ctx context.Context, code string, userID int64) (*entities.SessionPlayer, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, fmt.Errorf("%w: session code is required", domain.ErrInvalidInput)
	}

	session, err := s.sessionRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("session %q: %w", code, domain.ErrNotFound)
	}

	existing, err := s.playerRepo.Get(ctx, session.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session player: %w", err)
	}
	if existing != nil {
		return existing, nil
	}
	if !session.IsActive() {
		return nil, fmt.Errorf("session %d: %w", session.ID, domain.ErrSessionNotActive)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}

	role := entities.PlayerRolePlayer
	if session.IsHost(userID) {
		role = entities.PlayerRoleAdmin
	}

	player, created, err := s.playerRepo.AddIfAbsent(ctx, &entities.SessionPlayer{
		SessionID: session.ID,
		UserID:    userID,
		Name:      user.Name,
		Role:      role,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to seat player: %w", err)
	}
	if created {
		s.publish(events.PlayerJoinedEvent{SessionID: session.ID, UserID: userID, Role: string(role)})
	}

	return player, nil
}

// ListSessions returns sessions newest first
func (s *sessionService) ListSessions(ctx context.Context, status *entities.SessionStatus, limit int) ([]*entities.Session, error) {
	if status != nil && !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown session status %q", domain.ErrInvalidInput, *status)
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	sessions, err := s.sessionRepo.List(ctx, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// GetSnapshot reads everything recorded for a session
func (s *sessionService) GetSnapshot(ctx context.Context, sessionID int64) (*entities.SessionSnapshot, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("session %d: %w", sessionID, domain.ErrNotFound)
	}
	return s.snapshot(ctx, session)
}

// GetSnapshotByCode reads everything recorded for a session found by share code
func (s *sessionService) GetSnapshotByCode(ctx context.Context, code string) (*entities.SessionSnapshot, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	session, err := s.sessionRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("session %q: %w", code, domain.ErrNotFound)
	}
	return s.snapshot(ctx, session)
}

func (s *sessionService) snapshot(ctx context.Context, session *entities.Session) (*entities.SessionSnapshot, error) {
	players, err := s.playerRepo.GetBySession(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session players: %w", err)
	}
	buyIns, err := s.buyInRepo.GetBySession(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get buy-ins: %w", err)
	}
	cashOuts, err := s.cashOutRepo.GetBySession(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cash-outs: %w", err)
	}

	return &entities.SessionSnapshot{
		Session:  session,
		Players:  players,
		BuyIns:   buyIns,
		CashOuts: cashOuts,
	}, nil
}

func (s *sessionService) publish(event events.Event) {
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"error":     err,
		}).Error("Failed to publish session event")
	}
}
