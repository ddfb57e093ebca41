package config

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Config holds all application configuration
type Config struct {
	BotToken      string `env:"BOT_TOKEN,required" validate:"required"`
	LogLevel      string `env:"LOG_LEVEL,default=info" validate:"oneof=debug info warn warning error"`
	RetentionDays int    `env:"RETENTION_DAYS,default=60" validate:"gt=0"`

	Telegram TelegramConfig
	Database DatabaseConfig
}

// TelegramConfig holds MTProto client settings used for user lookups
type TelegramConfig struct {
	APIID          int           `env:"API_ID,required" validate:"gt=0"`
	APIHash        string        `env:"API_HASH,required" validate:"len=32,hexadecimal"`
	SessionPath    string        `env:"SESSION_PATH,default=session.json" validate:"required"`
	LookupCooldown time.Duration `env:"LOOKUP_COOLDOWN,default=100ms" validate:"gte=0"`
	FloodWaitRetry bool          `env:"FLOOD_WAIT_RETRY,default=false"`
	StartTimeout   time.Duration `env:"CLIENT_START_TIMEOUT,default=30s" validate:"gt=0"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string `env:"DB_HOST,default=localhost"`
	Port     string `env:"DB_PORT,default=5432"`
	Name     string `env:"DB_NAME,default=whoisbot"`
	User     string `env:"DB_USER,default=whoisbot"`
	Password string `env:"DB_PASSWORD,required" validate:"required"`
}

// Load reads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}
