package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/crypto/bcrypt"
)

// Config holds everything the process needs at startup. It is parsed once
// in main and handed to the services that need it; nothing reads the
// environment after that.
type Config struct {
	Port        string        `env:"PORT" envDefault:"3000"`
	DatabaseDSN string        `env:"DATABASE_DSN"`
	JWTSecret   string        `env:"JWT_SECRET"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" envDefault:"30m"`
	BcryptCost  int           `env:"BCRYPT_COST" envDefault:"10"`

	ClientURL      string   `env:"CLIENT_URL"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
}

func Load() (*Config, error) {
	var cfg Config

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set")
	}

	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	return &cfg, nil
}

// Origins returns the CORS allow-list: the development defaults plus
// anything configured through the environment.
func (c *Config) Origins() []string {
	origins := []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}

	if c.ClientURL != "" {
		origins = append(origins, c.ClientURL)
	}

	origins = append(origins, c.AllowedOrigins...)

	return origins
}
