package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/kyvra-tech/hackathon-registration-backend/internal/models"
)

type Config struct {
	Database     DatabaseConfig
	Server       ServerConfig
	Sheets       SheetsConfig
	Email        models.EmailConfig
	Admin        AdminConfig
	RateLimit    RateLimitConfig
	Telegram     TelegramConfig
	Scheduler    SchedulerConfig
	Cache        CacheConfig
	Registration RegistrationConfig
	Logger       LoggerConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the lib/pq connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
	Version        string
	HSTS           bool
}

// SheetsConfig points at the registration spreadsheet. Credentials come either
// from a service account file or from a client email + private key pair.
type SheetsConfig struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
	ClientEmail     string
	PrivateKey      string
}

type AdminConfig struct {
	Token string
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type TelegramConfig struct {
	Token  string
	ChatID int64
}

// Enabled reports whether digest notifications can be sent
func (t TelegramConfig) Enabled() bool {
	return t.Token != "" && t.ChatID != 0
}

type SchedulerConfig struct {
	DigestSchedule      string
	HeaderCheckSchedule string
	JobTimeout          time.Duration
}

type CacheConfig struct {
	TTL time.Duration
}

type RegistrationConfig struct {
	EventName   string
	EmailLedger bool
	// TrustedProxies are the reverse proxies whose X-Forwarded-For is honoured
	// when rate limiting by client IP
	TrustedProxies []string
}

type LoggerConfig struct {
	Level  string
	Format string
}

// Load reads the environment (and .env when present) and validates the result
func Load() (*Config, error) {
	cfg := LoadEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnv reads the environment without validating, for tools that only need
// part of the settings
func LoadEnv() *Config {
	if err := godotenv.Load(); err != nil {
		// It's okay if .env file doesn't exist in production
	}

	port, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	serverPort, _ := strconv.Atoi(getEnv("SERVER_PORT", "4622"))
	smtpPort, _ := strconv.Atoi(getEnv("EMAIL_PORT", "587"))
	rateRequests, _ := strconv.Atoi(getEnv("RATE_LIMIT_REQUESTS", "10"))
	chatID, _ := strconv.ParseInt(getEnv("TELEGRAM_CHAT_ID", "0"), 10, 64)

	rateWindow, _ := time.ParseDuration(getEnv("RATE_LIMIT_WINDOW", "1m"))
	jobTimeout, _ := time.ParseDuration(getEnv("JOB_TIMEOUT", "5m"))
	cacheTTL, _ := time.ParseDuration(getEnv("CACHE_TTL", "5m"))

	user := strings.TrimSpace(os.Getenv("EMAIL_USER"))

	return &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     port,
			User:     getEnv("DB_USER", "hackathon_user"),
			Password: getEnv("DB_PASSWORD", "hackathon_password"),
			DBName:   getEnv("DB_NAME", "hackathon_registration"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           serverPort,
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
			Version:        getEnv("APP_VERSION", "1.0.0"),
			HSTS:           getEnv("HSTS_ENABLED", "false") == "true",
		},
		Sheets: SheetsConfig{
			SpreadsheetID:   strings.TrimSpace(os.Getenv("GOOGLE_SHEET_ID")),
			SheetName:       getEnv("GOOGLE_SHEET_NAME", "Registrations"),
			CredentialsFile: strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")),
			ClientEmail:     strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_EMAIL")),
			PrivateKey:      strings.ReplaceAll(os.Getenv("GOOGLE_PRIVATE_KEY"), `\n`, "\n"),
		},
		Email: models.EmailConfig{
			Host:               getEnv("EMAIL_HOST", "smtp.gmail.com"),
			Port:               smtpPort,
			Secure:             getEnv("EMAIL_SECURE", "false") == "true",
			User:               user,
			Password:           os.Getenv("EMAIL_PASSWORD"),
			FromName:           getEnv("EMAIL_FROM_NAME", "UCET Hacks 2025"),
			FromEmail:          getEnv("EMAIL_FROM", user),
			CC:                 strings.TrimSpace(os.Getenv("EMAIL_CC")),
			InsecureSkipVerify: getEnv("EMAIL_TLS_SKIP_VERIFY", "false") == "true",
		},
		Admin: AdminConfig{
			Token: strings.TrimSpace(os.Getenv("ADMIN_TOKEN")),
		},
		RateLimit: RateLimitConfig{
			Requests: rateRequests,
			Window:   rateWindow,
		},
		Telegram: TelegramConfig{
			Token:  strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
			ChatID: chatID,
		},
		Scheduler: SchedulerConfig{
			DigestSchedule:      getEnv("DIGEST_SCHEDULE", "0 8 * * *"),
			HeaderCheckSchedule: getEnv("HEADER_CHECK_SCHEDULE", "@every 6h"),
			JobTimeout:          jobTimeout,
		},
		Cache: CacheConfig{
			TTL: cacheTTL,
		},
		Registration: RegistrationConfig{
			EventName:      getEnv("EVENT_NAME", "UCET Hacks 2025"),
			EmailLedger:    getEnv("EMAIL_LEDGER_ENABLED", "true") == "true",
			TrustedProxies: splitList(os.Getenv("TRUSTED_PROXIES")),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

// Validate checks the settings the service cannot start without
func (c *Config) Validate() error {
	if c.Sheets.SpreadsheetID == "" {
		return fmt.Errorf("GOOGLE_SHEET_ID is empty")
	}
	if c.Sheets.CredentialsFile == "" && (c.Sheets.ClientEmail == "" || c.Sheets.PrivateKey == "") {
		return fmt.Errorf("either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_CLIENT_EMAIL and GOOGLE_PRIVATE_KEY must be set")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("SERVER_PORT must be positive")
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	out := []string{}
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
