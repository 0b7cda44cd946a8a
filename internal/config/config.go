package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"tinkoff-pay/internal/tinkoff"

	"github.com/joho/godotenv"
)

const (
	DefaultCurrency = "RUB"
	DefaultPort     = "8080"
	DefaultTimeout  = 30 * time.Second
)

var ErrMissingCredentials = errors.New("TINKOFF_TERMINAL_KEY and TINKOFF_SECRET_KEY must be set")

type Config struct {
	AppEnv  string
	AppPort string

	TinkoffTerminalKey     string
	TinkoffSecretKey       string
	TinkoffAPIURL          string
	TinkoffDefaultCurrency string
	TinkoffTimeout         time.Duration
}

// Load reads the environment (and a .env file when present).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:                 os.Getenv("APP_ENV"),
		AppPort:                getEnv("APP_PORT", DefaultPort),
		TinkoffTerminalKey:     os.Getenv("TINKOFF_TERMINAL_KEY"),
		TinkoffSecretKey:       os.Getenv("TINKOFF_SECRET_KEY"),
		TinkoffAPIURL:          getEnv("TINKOFF_API_URL", tinkoff.DefaultAPIURL),
		TinkoffDefaultCurrency: getEnv("TINKOFF_DEFAULT_CURRENCY", DefaultCurrency),
		TinkoffTimeout:         DefaultTimeout,
	}

	if raw := os.Getenv("TINKOFF_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid TINKOFF_TIMEOUT %q: %w", raw, err)
		}
		cfg.TinkoffTimeout = d
	}

	if cfg.TinkoffTerminalKey == "" || cfg.TinkoffSecretKey == "" {
		return nil, ErrMissingCredentials
	}

	return cfg, nil
}

func LoadConfig() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatal("Environment variables not loaded properly: ", err)
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
