package token

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config controls token signing for the service.
//
// The secret is read once at startup; every token signed before a secret
// change becomes unverifiable afterwards, so rotations should wait out the
// configured TTL.
type Config struct {
	Secret string        `env:"ACCOUNTHUB_TOKEN_SECRET"`
	TTL    time.Duration `env:"ACCOUNTHUB_TOKEN_TTL"    envDefault:"1h"`
}

// LoadConfigFromEnv reads token configuration from the environment.
func LoadConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse token env: %w", err)
	}
	cfg.Secret = strings.TrimSpace(cfg.Secret)
	if cfg.Secret == "" {
		return Config{}, fmt.Errorf("ACCOUNTHUB_TOKEN_SECRET is required")
	}
	if cfg.TTL <= 0 {
		return Config{}, fmt.Errorf("token ttl must be positive")
	}
	return cfg, nil
}
