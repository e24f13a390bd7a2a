package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// EnvPrefix is the prefix shared by every environment variable the bridge reads.
const EnvPrefix = "CORTEX_BRIDGE"

// Config holds the configuration for the extension bridge.
// Environment variables are automatically parsed from the CORTEX_BRIDGE_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`
	ServiceName string      `envconfig:"SERVICE_NAME" default:"cortex-extension-bridge"`
	LogLevel    string      `envconfig:"LOG_LEVEL" default:"info"`

	// HTTP Configuration. The bridge only ever binds loopback by default.
	HTTPHost string `envconfig:"HTTP_HOST" default:"127.0.0.1"`
	HTTPPort int    `envconfig:"HTTP_PORT" default:"8080"`

	// Store sizing
	ActivityLogCapacity  int `envconfig:"ACTIVITY_LOG_CAPACITY" default:"1000"`
	ExtensionLogCapacity int `envconfig:"EXTENSION_LOG_CAPACITY" default:"100"`
	SubscriberBacklog    int `envconfig:"SUBSCRIBER_BACKLOG" default:"100"`

	// An extension counts as connected while its newest mirrored event is younger than this.
	LivenessWindowSeconds int `envconfig:"LIVENESS_WINDOW_SECONDS" default:"60"`

	// Stats reporter cron spec; empty disables the reporter.
	StatsSchedule string `envconfig:"STATS_SCHEDULE" default:"@every 1m"`

	MCPEnabled bool `envconfig:"MCP_ENABLED" default:"true"`

	BindRetrySeconds       int `envconfig:"BIND_RETRY_SECONDS" default:"10"`
	ShutdownTimeoutSeconds int `envconfig:"SHUTDOWN_TIMEOUT_SECONDS" default:"10"`
}

// Validate rejects values the bridge cannot run with.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP_PORT: %d", c.HTTPPort)
	}
	if c.HTTPHost == "" {
		return fmt.Errorf("HTTP_HOST is required")
	}
	if c.ServiceName == "" {
		return fmt.Errorf("SERVICE_NAME is required")
	}
	if c.ActivityLogCapacity < 1 {
		return fmt.Errorf("invalid ACTIVITY_LOG_CAPACITY: %d", c.ActivityLogCapacity)
	}
	if c.ExtensionLogCapacity < 1 {
		return fmt.Errorf("invalid EXTENSION_LOG_CAPACITY: %d", c.ExtensionLogCapacity)
	}
	if c.SubscriberBacklog < 1 {
		return fmt.Errorf("invalid SUBSCRIBER_BACKLOG: %d", c.SubscriberBacklog)
	}
	if c.LivenessWindowSeconds < 1 {
		return fmt.Errorf("invalid LIVENESS_WINDOW_SECONDS: %d", c.LivenessWindowSeconds)
	}
	switch c.Environment {
	case EnvDevelopment, EnvTesting, EnvProduction:
	default:
		return fmt.Errorf("unsupported ENVIRONMENT: %s", c.Environment)
	}
	return nil
}

// New creates a new Config by parsing environment variables
// Environment variables should be prefixed with CORTEX_BRIDGE_
// Example: CORTEX_BRIDGE_HTTP_PORT, CORTEX_BRIDGE_STATS_SCHEDULE
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Str("service", cfg.ServiceName).
		Str("addr", cfg.GetHTTPAddr()).
		Int("activity_capacity", cfg.ActivityLogCapacity).
		Int("extension_capacity", cfg.ExtensionLogCapacity).
		Int("subscriber_backlog", cfg.SubscriberBacklog).
		Str("stats_schedule", cfg.StatsSchedule).
		Bool("mcp_enabled", cfg.MCPEnabled).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	return &Config{
		Environment:            EnvTesting,
		ServiceName:            "cortex-extension-bridge",
		LogLevel:               "debug",
		HTTPHost:               "127.0.0.1",
		HTTPPort:               8080,
		ActivityLogCapacity:    1000,
		ExtensionLogCapacity:   100,
		SubscriberBacklog:      100,
		LivenessWindowSeconds:  60,
		StatsSchedule:          "",
		MCPEnabled:             true,
		BindRetrySeconds:       1,
		ShutdownTimeoutSeconds: 2,
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return net.JoinHostPort(c.HTTPHost, strconv.Itoa(c.HTTPPort))
}

// GetBaseURL returns the URL clients use to reach the bridge.
func (c *Config) GetBaseURL() string {
	return "http://" + c.GetHTTPAddr()
}

// LivenessWindow returns LivenessWindowSeconds as a duration.
func (c *Config) LivenessWindow() time.Duration {
	return time.Duration(c.LivenessWindowSeconds) * time.Second
}

// ShutdownTimeout returns ShutdownTimeoutSeconds as a duration.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// BindRetryWindow returns BindRetrySeconds as a duration.
func (c *Config) BindRetryWindow() time.Duration {
	return time.Duration(c.BindRetrySeconds) * time.Second
}
