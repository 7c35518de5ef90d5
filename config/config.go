package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"cashgame/database"
	"cashgame/domain/money"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string `envconfig:"DATABASE_URL"`
	DatabaseName string `envconfig:"DATABASE_NAME"`

	// HTTP API configuration
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	// Discord configuration (bot is disabled when the token is empty)
	DiscordToken   string `envconfig:"DISCORD_TOKEN"`
	DiscordGuildID string `envconfig:"DISCORD_GUILD_ID"`

	// NATS configuration
	NATSServers string `envconfig:"NATS_SERVERS" default:"nats://nats:4222"`
	NATSEnabled bool   `envconfig:"NATS_ENABLED" default:"false"`

	// Ledger configuration
	AuditToleranceRaw      string        `envconfig:"AUDIT_TOLERANCE" default:"0.10"`
	AuditTolerance         money.Amount  `ignored:"true"`
	IntegritySweepSchedule string        `envconfig:"INTEGRITY_SWEEP_SCHEDULE" default:"@hourly"`
	IntegritySweepLookback time.Duration `envconfig:"INTEGRITY_SWEEP_LOOKBACK" default:"24h"`

	// OpenTelemetry configuration
	OTelEnabled              bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTelExporterType         string `envconfig:"OTEL_EXPORTER_TYPE" default:"console"` // console, otlp, none
	OTelOTLPEndpoint         string `envconfig:"OTEL_OTLP_ENDPOINT" default:"otel-collector:4317"`
	OTelServiceName          string `envconfig:"OTEL_SERVICE_NAME" default:"cashgame"`
	OTelExportIntervalMillis int    `envconfig:"OTEL_EXPORT_INTERVAL_MILLIS" default:"60000"`

	// Environment
	Environment string `envconfig:"ENVIRONMENT" default:"development"` // "development", "production" or "test"
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// DiscordEnabled reports whether the Discord surface should be started
func (c *Config) DiscordEnabled() bool {
	return strings.TrimSpace(c.DiscordToken) != ""
}

// load loads configuration from environment variables
func load() (*Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	tolerance, err := money.ParseNonNegative(config.AuditToleranceRaw)
	if err != nil {
		return nil, fmt.Errorf("invalid AUDIT_TOLERANCE %q: %w", config.AuditToleranceRaw, err)
	}
	config.AuditTolerance = tolerance

	// Set default environment if explicitly blank
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		switch config.OTelExporterType {
		case "console", "otlp", "none":
		default:
			return nil, fmt.Errorf("OTEL_EXPORTER_TYPE must be one of console, otlp, none")
		}
	}

	return &config, nil
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:            "test",
		LogLevel:               "debug",
		HTTPAddr:               ":0",
		AuditToleranceRaw:      "0.10",
		AuditTolerance:         money.DefaultTolerance,
		IntegritySweepSchedule: "@hourly",
		IntegritySweepLookback: 24 * time.Hour,
		OTelExporterType:       "none",
		OTelServiceName:        "cashgame-test",
	}
}
