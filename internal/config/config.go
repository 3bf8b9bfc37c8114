// Package config loads the server configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// Transports served by cmd/mcp-server.
const (
	TransportHTTP  = "http"
	TransportStdio = "stdio"
)

// Config holds the server configuration.
type Config struct {
	// Server
	Transport string `env:"MCP_TRANSPORT" envDefault:"http"`
	Addr      string `env:"MCP_ADDR" envDefault:":8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`

	// Sessions
	SessionTimeout  time.Duration `env:"SESSION_TIMEOUT" envDefault:"1h"`
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"5m"`
	RequireSession  bool          `env:"REQUIRE_SESSION" envDefault:"true"`

	// Observability
	MetricsInterval time.Duration `env:"METRICS_INTERVAL" envDefault:"15s"`

	// Chain data provider
	Noves NovesConfig
}

// NovesConfig configures the Noves API client.
type NovesConfig struct {
	APIKey       string        `env:"NOVES_API_KEY"`
	TranslateURL string        `env:"NOVES_TRANSLATE_URL" envDefault:"https://translate.noves.fi"`
	PricingURL   string        `env:"NOVES_PRICING_URL" envDefault:"https://pricing.noves.fi"`
	Timeout      time.Duration `env:"NOVES_TIMEOUT" envDefault:"30s"`
	// RateLimit is in requests per second; 0 disables limiting.
	RateLimit float64 `env:"NOVES_RATE_LIMIT" envDefault:"5"`
	Burst     int     `env:"NOVES_BURST" envDefault:"5"`
}

// DefaultConfig returns the configuration used when no variables are set.
func DefaultConfig() Config {
	return Config{
		Transport:       TransportHTTP,
		Addr:            ":8080",
		LogLevel:        "info",
		SessionTimeout:  time.Hour,
		CleanupInterval: 5 * time.Minute,
		RequireSession:  true,
		MetricsInterval: 15 * time.Second,
		Noves: NovesConfig{
			TranslateURL: "https://translate.noves.fi",
			PricingURL:   "https://pricing.noves.fi",
			Timeout:      30 * time.Second,
			RateLimit:    5,
			Burst:        5,
		},
	}
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (Config, error) {
	return load(env.Options{})
}

func load(opts env.Options) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse environment variables: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration.
func (c Config) Validate() error {
	switch c.Transport {
	case TransportHTTP, TransportStdio:
	default:
		return fmt.Errorf("invalid transport %q: must be %s or %s", c.Transport, TransportHTTP, TransportStdio)
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil || c.LogLevel == "" {
		return fmt.Errorf("invalid log level: %q", c.LogLevel)
	}

	if c.SessionTimeout <= 0 {
		return fmt.Errorf("session timeout must be positive, got %v", c.SessionTimeout)
	}
	if c.CleanupInterval <= 0 {
		return fmt.Errorf("cleanup interval must be positive, got %v", c.CleanupInterval)
	}
	if c.MetricsInterval <= 0 {
		return fmt.Errorf("metrics interval must be positive, got %v", c.MetricsInterval)
	}

	for name, raw := range map[string]string{"translate": c.Noves.TranslateURL, "pricing": c.Noves.PricingURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid %s URL: %q", name, raw)
		}
	}
	if c.Noves.Timeout <= 0 {
		return fmt.Errorf("provider timeout must be positive, got %v", c.Noves.Timeout)
	}
	if c.Noves.RateLimit < 0 {
		return fmt.Errorf("provider rate limit must not be negative, got %v", c.Noves.RateLimit)
	}
	if c.Noves.RateLimit > 0 && c.Noves.Burst < 1 {
		return fmt.Errorf("provider burst must be at least 1, got %d", c.Noves.Burst)
	}

	return nil
}
