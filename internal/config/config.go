package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string // development, production

	// Database
	DatabaseURL string

	// Groq (OpenAI-compatible chat completions)
	GroqAPIKey        string
	GroqBaseURL       string
	GroqModel         string
	GroqFallbackModel string

	// Market data (Financial Modeling Prep)
	FMPAPIKey string

	// Email
	ToEmail        string
	FromEmail      string
	FromName       string
	SendGridAPIKey string
	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string

	// Slack
	SlackBotToken string
	SlackChannel  string

	// Reports
	ReportsDir string

	// Scheduling
	MarketTimezone   string
	ResearchSchedule string
	RunTimeout       time.Duration

	// Trigger endpoint
	CronSecret         string
	RateLimitPerMinute int
}

// Load reads .env (if present), then environment variables with flag
// overrides for the common server knobs. Load itself never fails; call
// Validate before running the pipeline.
func Load() *Config {
	// Load .env file if it exists (don't error if missing)
	_ = godotenv.Load()

	cfg := &Config{}

	flag.StringVar(&cfg.Port, "port", getEnv("PORT", "8080"), "Server port")
	flag.StringVar(&cfg.Env, "env", getEnv("ENV", "development"), "Environment (development, production)")
	flag.StringVar(&cfg.DatabaseURL, "database-url", getEnv("DATABASE_URL", "marketbrief.db"), "Database (sqlite path or postgres:// URL)")

	cfg.GroqAPIKey = getEnv("GROQ_API_KEY", "")
	cfg.GroqBaseURL = getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1")
	cfg.GroqModel = getEnv("GROQ_MODEL", "openai/gpt-oss-120b")
	cfg.GroqFallbackModel = getEnv("GROQ_FALLBACK_MODEL", "llama-3.3-70b-versatile")

	cfg.FMPAPIKey = getEnv("FMP_API_KEY", "")

	cfg.ToEmail = getEnv("TO_EMAIL", "")
	cfg.FromEmail = getEnv("FROM_EMAIL", "")
	cfg.FromName = getEnv("FROM_NAME", "Market Research Agent")
	cfg.SendGridAPIKey = getEnv("SENDGRID_API_KEY", "")
	cfg.SMTPHost = getEnv("SMTP_HOST", "smtp.gmail.com")
	cfg.SMTPPort = getEnvInt("SMTP_PORT", 587)
	cfg.SMTPUsername = getEnv("SMTP_USERNAME", "")
	cfg.SMTPPassword = getEnv("SMTP_PASSWORD", "")

	cfg.SlackBotToken = getEnv("SLACK_BOT_TOKEN", "")
	cfg.SlackChannel = getEnv("SLACK_CHANNEL", "")

	cfg.ReportsDir = getEnv("REPORTS_DIR", "reports")

	cfg.MarketTimezone = getEnv("MARKET_TIMEZONE", "America/New_York")
	cfg.ResearchSchedule = getEnv("RESEARCH_SCHEDULE", "30 9 * * 1-5")
	cfg.RunTimeout = getEnvDuration("RUN_TIMEOUT", 10*time.Minute)

	cfg.CronSecret = getEnv("CRON_SECRET", "")
	cfg.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", 10)

	flag.Parse()

	if cfg.SMTPUsername == "" {
		cfg.SMTPUsername = cfg.FromEmail
	}

	return cfg
}

// Validate checks the configuration needed to run the research pipeline.
func (c *Config) Validate() error {
	if c.GroqAPIKey == "" {
		return fmt.Errorf("GROQ_API_KEY is required")
	}
	if c.EmailConfigured() && c.ToEmail == "" {
		return fmt.Errorf("TO_EMAIL is required when email delivery is configured")
	}
	if c.SlackBotToken != "" && c.SlackChannel == "" {
		return fmt.Errorf("SLACK_CHANNEL is required when SLACK_BOT_TOKEN is set")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("MARKET_TIMEZONE: %w", err)
	}
	return nil
}

// EmailConfigured reports whether any email delivery channel is usable.
func (c *Config) EmailConfigured() bool {
	return c.SendGridAPIKey != "" || c.SMTPPassword != ""
}

// Location resolves the configured market time zone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.MarketTimezone)
}

// PostgresURL reports whether the database URL points at Postgres rather
// than a sqlite file.
func (c *Config) PostgresURL() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") ||
		strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
