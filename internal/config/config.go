package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	MongoDB   MongoDBConfig
	WhatsApp  WhatsAppConfig
	Sheets    SheetsConfig
	Scheduler SchedulerConfig
	Drafts    DraftConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// WhatsAppConfig contains credentials for the Meta WhatsApp Cloud API used
// to send tenant reminders. ReminderTemplate names the approved template used
// for expiry reminders. Reminders are disabled when AccessToken is empty.
type WhatsAppConfig struct {
	AccessToken      string
	PhoneNumberID    string
	BaseURL          string
	APIVersion       string
	ReminderTemplate string
	LanguageCode     string
}

// Enabled reports whether reminder delivery is configured.
func (c WhatsAppConfig) Enabled() bool {
	return c.AccessToken != ""
}

// SheetsConfig points at the spreadsheet receiving the occupancy ledger.
// The ledger is disabled when SpreadsheetID is empty.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether the ledger export is configured.
func (c SheetsConfig) Enabled() bool {
	return c.SpreadsheetID != ""
}

// SchedulerConfig holds the cron expressions of background jobs.
type SchedulerConfig struct {
	ReminderSchedule   string
	DraftSweepSchedule string
	Timezone           string
}

// DraftConfig controls how long unsaved building drafts are kept.
type DraftConfig struct {
	TTL time.Duration
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	ttl, err := time.ParseDuration(getenvWithDefault("DRAFT_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("DRAFT_TTL: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "leap"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:      os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID:    os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:          getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:       getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			ReminderTemplate: getenvWithDefault("WHATSAPP_REMINDER_TEMPLATE", "occupancy_expiring"),
			LanguageCode:     getenvWithDefault("WHATSAPP_LANGUAGE_CODE", "en"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		Scheduler: SchedulerConfig{
			ReminderSchedule:   getenvWithDefault("REMINDER_CRON_SCHEDULE", "0 8 * * *"),
			DraftSweepSchedule: getenvWithDefault("DRAFT_SWEEP_CRON_SCHEDULE", "@hourly"),
			Timezone:           getenvWithDefault("TIMEZONE", "Africa/Kampala"),
		},
		Drafts: DraftConfig{
			TTL: ttl,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.MongoDB.URI == "" {
		return errors.New("MONGODB_URI must be provided")
	}
	if c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if c.WhatsApp.Enabled() {
		switch {
		case c.WhatsApp.PhoneNumberID == "":
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided when WHATSAPP_TOKEN is set")
		case c.WhatsApp.BaseURL == "":
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		case c.WhatsApp.APIVersion == "":
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	if c.Sheets.Enabled() && c.Sheets.CredentialsPath == "" {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided when GOOGLE_SHEET_DATABASE_ID is set")
	}

	if c.Scheduler.ReminderSchedule == "" {
		return errors.New("REMINDER_CRON_SCHEDULE must be provided")
	}
	if c.Scheduler.DraftSweepSchedule == "" {
		return errors.New("DRAFT_SWEEP_CRON_SCHEDULE must be provided")
	}
	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE is invalid: %w", err)
	}

	if c.Drafts.TTL <= 0 {
		return errors.New("DRAFT_TTL must be positive")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
