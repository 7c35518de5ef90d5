package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cashgame/application"
	"cashgame/bot"
	"cashgame/config"
	"cashgame/database"
	"cashgame/domain/interfaces"
	"cashgame/domain/services"
	"cashgame/httpapi"
	"cashgame/infrastructure"
	"cashgame/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// Run wires the ledger and serves it over HTTP and, when configured, Discord
func Run(ctx context.Context) error {
	cfg := config.Get()
	SetupLogging(cfg)
	log.WithField("environment", cfg.Environment).Info("Starting cash game ledger...")

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	// Initialize metrics
	metrics := observability.NewMetricsProvider(cfg)
	if err := metrics.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	// Initialize event publishing
	var publisher interfaces.EventPublisher = infrastructure.NewNoopEventPublisher()
	var natsClient *infrastructure.NATSClient
	if cfg.NATSEnabled {
		log.WithField("servers", cfg.NATSServers).Info("Connecting to NATS...")
		natsClient = infrastructure.NewNATSClient(cfg.NATSServers)
		if err := natsClient.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		mapper := infrastructure.NewEventSubjectMapper()
		if err := infrastructure.EnsureLedgerStream(natsClient, mapper); err != nil {
			natsClient.Close()
			return fmt.Errorf("failed to ensure ledger stream: %w", err)
		}
		publisher = infrastructure.NewNATSEventPublisher(natsClient, mapper, metrics)
		log.Info("NATS event publishing enabled")
	}

	// Initialize unit of work factory and ledger
	uowFactory := infrastructure.NewUnitOfWorkFactory(db, publisher)
	ledger := application.NewLedger(uowFactory, metrics, cfg.AuditTolerance)

	// Start the integrity sweep
	sweep := application.NewIntegritySweep(
		uowFactory,
		services.NewSettlementCalculator(cfg.AuditTolerance),
		metrics,
		cfg.IntegritySweepSchedule,
		cfg.IntegritySweepLookback,
	)
	if err := sweep.Start(ctx); err != nil {
		return err
	}

	// Initialize Discord bot
	var discordBot *bot.Bot
	if cfg.DiscordEnabled() {
		log.Info("Initializing Discord bot...")
		discordBot, err = bot.New(bot.Config{
			Token:   cfg.DiscordToken,
			GuildID: cfg.DiscordGuildID,
		}, ledger, uowFactory)
		if err != nil {
			sweep.Stop()
			return fmt.Errorf("failed to initialize Discord bot: %w", err)
		}
		log.Info("Discord bot initialized successfully")
	}

	// Start HTTP API
	server := httpapi.NewServer(ledger, cfg.HTTPAddr)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			runErr = fmt.Errorf("http server stopped: %w", err)
		}
	}

	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Warn("Error shutting down HTTP API")
	}
	if discordBot != nil {
		if err := discordBot.Close(); err != nil {
			log.WithError(err).Warn("Error closing Discord bot")
		}
	}
	sweep.Stop()
	if natsClient != nil {
		if err := natsClient.Close(); err != nil {
			log.WithError(err).Warn("Error closing NATS connection")
		}
	}
	if err := metrics.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Error shutting down metrics")
	}

	log.Info("Shutdown completed")
	return runErr
}
