// Package config loads SDK configuration from the environment, with
// optional .env file support.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds everything the CLI and service constructors need.
type Config struct {
	// BaseURL is the platform API root, e.g. https://api.knbio.example/v1.
	BaseURL string

	// Auth endpoints and client credentials.
	RegisterURL  string
	LoginURL     string
	TokenURL     string
	ClientID     string
	ClientSecret string

	// Timeout bounds each API request.
	Timeout time.Duration

	// RFQThreshold is the order total above which orders become RFQs.
	RFQThreshold float64

	LogLevel  string
	LogFormat string
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		BaseURL:      "http://localhost:8080/api/v1",
		RegisterURL:  "http://localhost:8080/auth/register",
		LoginURL:     "http://localhost:8080/auth/login",
		TokenURL:     "http://localhost:8080/auth/token",
		Timeout:      10 * time.Second,
		RFQThreshold: 100000,
		LogLevel:     "info",
		LogFormat:    "auto",
	}
}

// Load builds the configuration from defaults, an optional .env file in
// the working directory, and AGRIAQUA_* environment variables, in that
// order of precedence (later wins).
func Load() (Config, error) {
	cfg := Defaults()

	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("Loaded environment from .env file")
	}

	applyString := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}

	applyString("AGRIAQUA_BASE_URL", &cfg.BaseURL)
	applyString("AGRIAQUA_REGISTER_URL", &cfg.RegisterURL)
	applyString("AGRIAQUA_LOGIN_URL", &cfg.LoginURL)
	applyString("AGRIAQUA_TOKEN_URL", &cfg.TokenURL)
	applyString("AGRIAQUA_CLIENT_ID", &cfg.ClientID)
	applyString("AGRIAQUA_CLIENT_SECRET", &cfg.ClientSecret)
	applyString("AGRIAQUA_LOG_LEVEL", &cfg.LogLevel)
	applyString("AGRIAQUA_LOG_FORMAT", &cfg.LogFormat)

	if v := strings.TrimSpace(os.Getenv("AGRIAQUA_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid AGRIAQUA_TIMEOUT %q: %w", v, err)
		}
		cfg.Timeout = d
	}

	if v := strings.TrimSpace(os.Getenv("AGRIAQUA_RFQ_THRESHOLD")); v != "" {
		threshold, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid AGRIAQUA_RFQ_THRESHOLD %q: %w", v, err)
		}
		cfg.RFQThreshold = threshold
	}

	return cfg, nil
}
