package common

import (
	"errors"
	"fmt"

	"cashgame/domain"
	"cashgame/domain/money"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// BotError represents a structured error with user-facing and internal messages
type BotError struct {
	UserMessage string // Message shown to Discord user
	LogMessage  string // Internal message for logging
	Err         error  // Underlying error
}

// Error implements the error interface
func (e *BotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.LogMessage, e.Err)
	}
	return e.LogMessage
}

// Unwrap returns the underlying error
func (e *BotError) Unwrap() error {
	return e.Err
}

// NewUserError creates an error for user-caused issues
func NewUserError(userMessage string) *BotError {
	return &BotError{
		UserMessage: userMessage,
		LogMessage:  userMessage,
	}
}

// UserMessageFor turns a ledger error into text fit for the table.
// The second return is false when the error is not the user's doing.
func UserMessageFor(err error) (string, bool) {
	var botErr *BotError
	if errors.As(err, &botErr) && botErr.UserMessage != "" {
		return botErr.UserMessage, true
	}

	var mismatch *domain.AuditMismatchError
	switch {
	case errors.As(err, &mismatch):
		return fmt.Sprintf("The books do not balance: pool %s, counted %s, off by %s.",
			mismatch.Pool, mismatch.TotalOut, mismatch.Discrepancy()), true
	case errors.Is(err, domain.ErrAlreadyResolved):
		return "That buy-in has already been approved or rejected.", true
	case errors.Is(err, domain.ErrNotFound):
		return "Nothing found with that code or ID.", true
	case errors.Is(err, domain.ErrNotHost):
		return "Only the table host can do that.", true
	case errors.Is(err, domain.ErrAlreadyClosed):
		return "This table is already closed.", true
	case errors.Is(err, domain.ErrSessionNotActive):
		return "This table is closed to new entries.", true
	case errors.Is(err, domain.ErrSessionNotClosed):
		return "The table has to be closed before it can be settled.", true
	case errors.Is(err, domain.ErrNotSeated):
		return "That player is not seated at this table.", true
	case errors.Is(err, domain.ErrNonPositiveAmount):
		return "Amounts must be greater than zero.", true
	case errors.Is(err, money.ErrTooPrecise):
		return "Amounts can have at most two decimal places.", true
	case errors.Is(err, money.ErrInvalidAmount), errors.Is(err, money.ErrOutOfRange):
		return "That is not a valid amount.", true
	case errors.Is(err, domain.ErrInvalidInput):
		return err.Error(), true
	default:
		return "Something went wrong. Please try again later.", false
	}
}

// RespondWithError sends an ephemeral error message as an interaction response
func RespondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	RespondWithMessage(s, i, fmt.Sprintf("❌ %s", message), true)
}

// HandleError logs err and tells the user what went wrong
func HandleError(s *discordgo.Session, i *discordgo.InteractionCreate, command string, err error) {
	message, userCaused := UserMessageFor(err)

	entry := log.WithFields(log.Fields{
		"user_id": InteractionUserID(i),
		"command": command,
		"error":   err.Error(),
	})
	if userCaused {
		entry.Debug("Bot command rejected")
	} else {
		entry.Error("Unexpected error in bot command")
	}

	RespondWithError(s, i, message)
}
