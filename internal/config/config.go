package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// бэкенды хранения документа
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

type Config struct {
	AppPort   string `env:"APP_PORT" envDefault:"8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	StoreBackend        string `env:"STORE_BACKEND" envDefault:"file"`
	StoreKey            string `env:"STORE_KEY" envDefault:"earn_ads_app_data"`
	StoreDir            string `env:"STORE_DIR" envDefault:"./data"`
	StoreResetOnCorrupt bool   `env:"STORE_RESET_ON_CORRUPT" envDefault:"false"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"./data/earnads.db"`

	AdminEmail string        `env:"ADMIN_EMAIL" envDefault:"admin@earnads.com"`
	JWTSecret  string        `env:"JWT_SECRET"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	AdDuration time.Duration `env:"AD_DURATION" envDefault:"15s"`
	OTPEnabled bool          `env:"OTP_ENABLED" envDefault:"true"`
	OTPTTL     time.Duration `env:"OTP_TTL" envDefault:"5m"`

	RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"20"`
	AllowedOrigin      string `env:"ALLOWED_ORIGIN"`

	BotToken             string        `env:"BOT_TOKEN"`
	AdminBotEnabled      bool          `env:"ADMIN_BOT_ENABLED" envDefault:"false"`
	AdminTelegramIDs     []int64       `env:"ADMIN_TELEGRAM_IDS" envSeparator:","`
	PendingRemindAfter   time.Duration `env:"PENDING_REMIND_AFTER" envDefault:"24h"`
	PendingCheckInterval time.Duration `env:"PENDING_CHECK_INTERVAL" envDefault:"30m"`
}

// Load читает .env (если есть) и переменные окружения
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse только переменные окружения, без .env
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory, BackendFile, BackendSQLite:
	case BackendRedis:
		if c.RedisAddr == "" {
			return errors.New("STORE_BACKEND=redis requires REDIS_ADDR")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("STORE_BACKEND=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.AdminBotEnabled && c.BotToken == "" {
		return errors.New("ADMIN_BOT_ENABLED requires BOT_TOKEN")
	}
	if c.AdDuration < time.Second {
		return errors.New("AD_DURATION must be at least 1s")
	}
	return nil
}

func (c *Config) JSONLogs() bool {
	return strings.EqualFold(c.LogFormat, "json")
}
