package config

import (
	"fmt"
	"time"

	"github.com/truestate/sales/internal/env"
)

// ServerConfig holds all configuration for the server binary.
type ServerConfig struct {
	Database        DatabaseConfig
	Storage         StorageConfig
	HTTP            HTTPConfig
	Query           QueryConfig
	Observability   ObservabilityConfig
	ShutdownTimeout time.Duration `env:"SALES_SHUTDOWN_TIMEOUT" default:"10s"`
}

// HTTPConfig holds HTTP server configuration.
// Zero values fall back to the HTTP server's own defaults.
type HTTPConfig struct {
	Host              string        `env:"SALES_HTTP_HOST"`
	Port              string        `env:"SALES_HTTP_PORT"`
	ReadTimeout       time.Duration `env:"SALES_HTTP_READ_TIMEOUT"`
	WriteTimeout      time.Duration `env:"SALES_HTTP_WRITE_TIMEOUT"`
	IdleTimeout       time.Duration `env:"SALES_HTTP_IDLE_TIMEOUT"`
	ReadHeaderTimeout time.Duration `env:"SALES_HTTP_READ_HEADER_TIMEOUT"`
	RequestTimeout    time.Duration `env:"SALES_HTTP_REQUEST_TIMEOUT"`
	MaxHeaderBytes    int           `env:"SALES_HTTP_MAX_HEADER_BYTES"`
	MaxBodyBytes      int64         `env:"SALES_HTTP_MAX_BODY_BYTES"`

	// CORSOrigins lists allowed browser origins; "*" allows any.
	CORSOrigins []string `env:"SALES_CORS_ORIGINS"`
}

// QueryConfig holds sales query defaults.
type QueryConfig struct {
	DefaultPageSize int `env:"SALES_DEFAULT_PAGE_SIZE" default:"10"`
}

// Validate validates query configuration.
func (c *QueryConfig) Validate() error {
	if c.DefaultPageSize < 1 {
		return fmt.Errorf("SALES_DEFAULT_PAGE_SIZE must be >= 1, got %d", c.DefaultPageSize)
	}
	return nil
}

// ObservabilityConfig holds observability configuration.
type ObservabilityConfig struct {
	OTelEnabled bool   `env:"SALES_OTEL_ENABLED"`
	ServiceName string `env:"OTEL_SERVICE_NAME"`
}

// Validate checks settings that depend on more than one section.
func (c *ServerConfig) Validate() error {
	if c.Storage.Type == StoragePostgres && c.Database.DSN == "" {
		return ErrDSNRequired
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SALES_SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}

// LoadServerConfig loads and validates server configuration from environment.
func LoadServerConfig() (*ServerConfig, error) {
	cfg := &ServerConfig{}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}

	return cfg, nil
}
