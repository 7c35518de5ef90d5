package services

import (
	"context"
	"fmt"
	"strings"

	"cashgame/domain"
	"cashgame/domain/entities"
	"cashgame/domain/events"
	"cashgame/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

const maxUsernameLength = 64

// userService implements the UserService interface
type userService struct {
	userRepo       interfaces.UserRepository
	eventPublisher interfaces.EventPublisher
}

// NewUserService creates a new user service
func NewUserService(userRepo interfaces.UserRepository, eventPublisher interfaces.EventPublisher) interfaces.UserService {
	return &userService{
		userRepo:       userRepo,
		eventPublisher: eventPublisher,
	}
}

// RegisterUser creates a user with a unique username
func (s *userService) RegisterUser(ctx context.Context, name, username string) (*entities.User, error) {
	name = strings.TrimSpace(name)
	username = strings.TrimSpace(username)
	if name == "" || username == "" {
		return nil, fmt.Errorf("%w: name and username are required", domain.ErrInvalidInput)
	}
	if len(username) > maxUsernameLength {
		return nil, fmt.Errorf("%w: username longer than %d characters", domain.ErrInvalidInput, maxUsernameLength)
	}

	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: username %q is taken", domain.ErrInvalidInput, username)
	}

	return s.create(ctx, &entities.User{Name: name, Username: username})
}

// GetUser retrieves a user by ID
func (s *userService) GetUser(ctx context.Context, userID int64) (*entities.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}
	return user, nil
}

// EnsureDiscordUser returns the user linked to a Discord account, creating one on first use.
// When the Discord username is already registered, the Discord ID is appended to keep it unique.
func (s *userService) EnsureDiscordUser(ctx context.Context, discordID int64, displayName, username string) (*entities.User, error) {
	user, err := s.userRepo.GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by discord id: %w", err)
	}
	if user != nil {
		return user, nil
	}

	username = strings.TrimSpace(username)
	if username == "" {
		username = fmt.Sprintf("discord-%d", discordID)
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = username
	}

	taken, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if taken != nil {
		username = fmt.Sprintf("%s-%d", username, discordID)
	}

	return s.create(ctx, &entities.User{
		Name:      displayName,
		Username:  username,
		DiscordID: &discordID,
	})
}

func (s *userService) create(ctx context.Context, user *entities.User) (*entities.User, error) {
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.eventPublisher.Publish(events.UserRegisteredEvent{UserID: user.ID, Username: user.Username}); err != nil {
		log.WithFields(log.Fields{
			"userID": user.ID,
			"error":  err,
		}).Error("Failed to publish user registered event")
	}

	return user, nil
}
