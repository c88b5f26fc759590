package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type OAuthProvider struct {
	Key         string `env:"KEY"`
	Secret      string `env:"SECRET"`
	CallbackURL string `env:"CALLBACK_URL"`
}

type Config struct {
	Addr              string        `env:"TORVI_ADDR" envDefault:":8080"`
	DatabasePath      string        `env:"TORVI_DATABASE_PATH" envDefault:"torvi.db"`
	JWTSecret         string        `env:"TORVI_JWT_SECRET"`
	AccessTokenTTL    time.Duration `env:"TORVI_ACCESS_TOKEN_TTL" envDefault:"15m"`
	AnonymousTokenTTL time.Duration `env:"TORVI_ANONYMOUS_TOKEN_TTL" envDefault:"24h"`
	HeartbeatInterval time.Duration `env:"TORVI_HEARTBEAT_INTERVAL" envDefault:"30s"`
	BroadcastBuffer   int           `env:"TORVI_BROADCAST_BUFFER" envDefault:"100"`
	CleanupInterval   time.Duration `env:"TORVI_CLEANUP_INTERVAL" envDefault:"1m"`
	SessionLifetime   time.Duration `env:"TORVI_SESSION_LIFETIME" envDefault:"24h"`

	Discord OAuthProvider `envPrefix:"DISCORD_"`
	Google  OAuthProvider `envPrefix:"GOOGLE_"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("TORVI_JWT_SECRET is required")
	}
	if c.HeartbeatInterval <= 0 {
		return errors.New("TORVI_HEARTBEAT_INTERVAL must be positive")
	}
	if c.CleanupInterval <= 0 {
		return errors.New("TORVI_CLEANUP_INTERVAL must be positive")
	}
	if c.BroadcastBuffer <= 0 {
		return errors.New("TORVI_BROADCAST_BUFFER must be positive")
	}
	return nil
}
