package bot

import (
	"fmt"

	"cashgame/bot/features/table"
	"cashgame/domain/events"
	"cashgame/domain/interfaces"
	"cashgame/infrastructure"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token   string
	GuildID string
}

// HandlerRegistrar receives in-process handlers for committed ledger events
type HandlerRegistrar interface {
	RegisterLocalHandler(eventType events.EventType, handler infrastructure.EventHandler)
}

// Bot manages the Discord session and the table feature
type Bot struct {
	config  Config
	session *discordgo.Session
	ledger  interfaces.LedgerService

	table *table.Feature

	registeredCommands []*discordgo.ApplicationCommand
}

// New creates a bot, opens the gateway connection and registers slash commands
func New(config Config, ledger interfaces.LedgerService, registrar HandlerRegistrar) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds

	bot := &Bot{
		config:  config,
		session: dg,
		ledger:  ledger,
		table:   table.New(dg, ledger),
	}

	if registrar != nil {
		registrar.RegisterLocalHandler(events.EventTypeBuyInRequested, bot.table.HandleBuyInRequested)
	}

	dg.AddHandler(bot.handleCommands)
	dg.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.WithField("user", r.User.Username).Info("Discord bot connected")
	})

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	return bot, nil
}

// Close removes guild commands and shuts down the gateway connection
func (b *Bot) Close() error {
	if b.config.GuildID != "" && b.session.State != nil && b.session.State.User != nil {
		for _, cmd := range b.registeredCommands {
			if err := b.session.ApplicationCommandDelete(b.session.State.User.ID, b.config.GuildID, cmd.ID); err != nil {
				log.WithError(err).WithField("command", cmd.Name).Warn("Failed to remove slash command")
			}
		}
	}
	return b.session.Close()
}

// handleCommands routes slash commands to the owning feature
func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "table":
		b.table.HandleCommand(s, i)
	}
}
