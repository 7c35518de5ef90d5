package table

import (
	"context"
	"fmt"
	"sync"

	"cashgame/bot/common"
	"cashgame/domain/entities"
	"cashgame/domain/events"
	"cashgame/domain/interfaces"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Feature handles the /table command family
type Feature struct {
	session *discordgo.Session
	ledger  interfaces.LedgerService

	// channels remembers where each session is being played so
	// pending buy-ins can be announced to the host
	mu       sync.RWMutex
	channels map[int64]string
}

func New(dg *discordgo.Session, ledger interfaces.LedgerService) *Feature {
	return &Feature{
		session:  dg,
		ledger:   ledger,
		channels: make(map[int64]string),
	}
}

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		common.RespondWithError(s, i, "Please choose a subcommand.")
		return
	}

	sub := data.Options[0]
	opts := optionMap(sub.Options)
	switch sub.Name {
	case "create":
		f.handleCreate(s, i, opts)
	case "join":
		f.handleJoin(s, i, opts)
	case "buyin":
		f.handleBuyIn(s, i, opts)
	case "approve":
		f.handleResolve(s, i, opts, true)
	case "reject":
		f.handleResolve(s, i, opts, false)
	case "cashout":
		f.handleCashOut(s, i, opts)
	case "close":
		f.handleClose(s, i, opts)
	case "status":
		f.handleStatus(s, i, opts)
	case "settle":
		f.handleSettle(s, i, opts)
	default:
		common.RespondWithError(s, i, "Unknown subcommand.")
	}
}

// HandleBuyInRequested announces pending buy-ins in the channel the table is played in
func (f *Feature) HandleBuyInRequested(ctx context.Context, event events.Event) error {
	e, ok := event.(events.BuyInRequestedEvent)
	if !ok || e.Status != string(entities.BuyInStatusPending) {
		return nil
	}

	channelID, ok := f.channelFor(e.SessionID)
	if !ok {
		return nil
	}

	snapshot, err := f.ledger.GetSnapshot(ctx, e.SessionID)
	if err != nil {
		return fmt.Errorf("failed to load session %d: %w", e.SessionID, err)
	}

	name := fmt.Sprintf("Player %d", e.UserID)
	if p := snapshot.Player(e.UserID); p != nil {
		name = p.Name
	}

	content := fmt.Sprintf("🪙 **%s** wants to buy in for **%s** at `%s`. Host: `/table approve id:%d` or `/table reject id:%d`",
		name, common.FormatAmount(e.Amount), snapshot.Session.Code, e.BuyInID, e.BuyInID)
	if _, err := f.session.ChannelMessageSend(channelID, content); err != nil {
		return fmt.Errorf("failed to announce buy-in %d: %w", e.BuyInID, err)
	}

	log.WithFields(log.Fields{
		"buyInID":   e.BuyInID,
		"sessionID": e.SessionID,
		"channelID": channelID,
	}).Debug("Announced pending buy-in")
	return nil
}

func (f *Feature) remember(sessionID int64, channelID string) {
	if channelID == "" {
		return
	}
	f.mu.Lock()
	f.channels[sessionID] = channelID
	f.mu.Unlock()
}

func (f *Feature) channelFor(sessionID int64) (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	channelID, ok := f.channels[sessionID]
	return channelID, ok
}

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}
