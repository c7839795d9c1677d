package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the service
type Config struct {
	Database DatabaseConfig
	Telegram TelegramConfig
	Bot      BotConfig
	Worker   WorkerConfig
	HTTP     HTTPConfig
	Logging  LoggingConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// TelegramConfig holds MTProto account configuration
type TelegramConfig struct {
	APIID      int
	APIHash    string
	Phone      string
	SessionDir string
}

// BotConfig holds the notification bot configuration
type BotConfig struct {
	Token string
}

// WorkerConfig holds the join processor timing configuration
type WorkerConfig struct {
	IdleInterval time.Duration
	Cooldown     time.Duration
	JoinTimeout  time.Duration
}

// HTTPConfig holds the health/metrics server configuration
type HTTPConfig struct {
	Port string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	apiID, err := strconv.Atoi(getEnv("TELEGRAM_API_ID", "0"))
	if err != nil {
		return nil, fmt.Errorf("TELEGRAM_API_ID must be an integer: %w", err)
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DATABASE_HOST", "localhost"),
			Port:     getEnv("DATABASE_PORT", "5432"),
			User:     getEnv("DATABASE_USER", "tgwrapper_user"),
			Password: getEnv("DATABASE_PASSWORD", "tgwrapper_pass"),
			DBName:   getEnv("DATABASE_NAME", "tgwrapper_db"),
			SSLMode:  getEnv("DATABASE_SSLMODE", "disable"),
		},
		Telegram: TelegramConfig{
			APIID:      apiID,
			APIHash:    getEnv("TELEGRAM_API_HASH", ""),
			Phone:      getEnv("TELEGRAM_PHONE", ""),
			SessionDir: getEnv("TELEGRAM_SESSION_DIR", "./sessions"),
		},
		Bot: BotConfig{
			Token: getEnv("BOT_TOKEN", ""),
		},
		Worker: WorkerConfig{
			IdleInterval: getDuration("WORKER_IDLE_INTERVAL", 10*time.Second),
			Cooldown:     getDuration("WORKER_COOLDOWN", 30*time.Second),
			JoinTimeout:  getDuration("WORKER_JOIN_TIMEOUT", time.Minute),
		},
		HTTP: HTTPConfig{
			Port: getEnv("HTTP_PORT", "8080"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DATABASE_HOST is required")
	}

	if c.Database.User == "" {
		return fmt.Errorf("DATABASE_USER is required")
	}

	if c.Database.DBName == "" {
		return fmt.Errorf("DATABASE_NAME is required")
	}

	if c.Telegram.APIID == 0 {
		return fmt.Errorf("TELEGRAM_API_ID is required")
	}

	if c.Telegram.APIHash == "" {
		return fmt.Errorf("TELEGRAM_API_HASH is required")
	}

	if c.Telegram.Phone == "" {
		return fmt.Errorf("TELEGRAM_PHONE is required")
	}

	if c.Bot.Token == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}

	return nil
}

// Out is the fx provider splitting Config into its sections.
func Out() (*Config, *DatabaseConfig, *TelegramConfig, *BotConfig, *WorkerConfig, *HTTPConfig, *LoggingConfig, error) {
	cfg, err := Load()
	if err != nil {
		return nil, nil, nil, nil, nil, nil, nil, err
	}
	return cfg, &cfg.Database, &cfg.Telegram, &cfg.Bot, &cfg.Worker, &cfg.HTTP, &cfg.Logging, nil
}

// GetDSN returns database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getDuration gets a duration environment variable with default value
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
