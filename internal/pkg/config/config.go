package config

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	MarketplaceURL string        `env:"MARKETPLACE_URL, default=http://localhost:4000/api" validate:"required,url"`
	Env            string        `env:"ENV,             default=development"`
	LogLevel       string        `env:"LOG_LEVEL,       default=info"`
	PollInterval   time.Duration `env:"POLL_INTERVAL,   default=20s"`
	PageSize       int           `env:"PAGE_SIZE,       default=50" validate:"gt=0"`

	// CredentialsPath is the file-backed credential store location, used
	// when no Redis address is configured.
	CredentialsPath string `env:"CREDENTIALS_PATH, default=.portal/credentials.json"`

	// TerminalID scopes shared credentials per workstation in kiosk
	// deployments.
	TerminalID string `env:"TERMINAL_ID, default=default"`

	// StatusAddr is the local status API listen address. Keep it on
	// loopback: the endpoint is a UI convenience, not a security boundary.
	StatusAddr string `env:"STATUS_ADDR, default=127.0.0.1:7878"`

	Redis   RedisConfig
	Archive ArchiveConfig
}

// RedisConfig enables the shared-terminal credential store when Addr is set.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// ArchiveConfig enables the offline notification archive when URI is set.
type ArchiveConfig struct {
	URI      string `env:"ARCHIVE_MONGO_URI"`
	Database string `env:"ARCHIVE_MONGO_DB, default=portal_client"`
}

// Load reads configuration from environment variables using go-envconfig and
// validates it.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	if err := validator.New().Struct(cfg); err != nil {
		panic(fmt.Sprintf("config: invalid configuration: %v", err))
	}
	return &cfg
}
