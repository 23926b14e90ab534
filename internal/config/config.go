package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment overrides, e.g. CAMPAIGNER_GATEWAY_API_KEY
const EnvPrefix = "CAMPAIGNER_"

// Config is the main configuration structure
type Config struct {
	Server    ServerConfig    `yaml:"server" envPrefix:"SERVER_"`
	Storage   StorageConfig   `yaml:"storage" envPrefix:"STORAGE_"`
	Gateway   GatewayConfig   `yaml:"gateway" envPrefix:"GATEWAY_"`
	Dispatch  DispatchConfig  `yaml:"dispatch" envPrefix:"DISPATCH_"`
	Scheduler SchedulerConfig `yaml:"scheduler" envPrefix:"SCHEDULER_"`
	Metrics   MetricsConfig   `yaml:"metrics" envPrefix:"METRICS_"`
	Logging   LoggingConfig   `yaml:"logging" envPrefix:"LOGGING_"`
}

// ServerConfig contains HTTP API settings
type ServerConfig struct {
	ListenAddr      string        `yaml:"listen_addr" env:"LISTEN_ADDR"` // Default: :8080
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	AllowedIPs      []string      `yaml:"allowed_ips" env:"ALLOWED_IPS"`           // empty = everyone
	EnableRelay     bool          `yaml:"enable_relay" env:"ENABLE_RELAY"`         // serve /api/send-email and /api/domains
	NotificationCap int           `yaml:"notification_cap" env:"NOTIFICATION_CAP"` // Default: 100
}

// StorageConfig contains state persistence settings
type StorageConfig struct {
	Path string `yaml:"path" env:"PATH"` // Default: ./data/campaigner.db
}

// GatewayConfig selects and configures the delivery provider
type GatewayConfig struct {
	Kind    string        `yaml:"kind" env:"KIND"`       // resend, smtp
	Mode    string        `yaml:"mode" env:"MODE"`       // direct, relay (resend only)
	BaseURL string        `yaml:"base_url" env:"BASE_URL"`
	APIKey  string        `yaml:"api_key" env:"API_KEY"` // seeds settings when the state has no key
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
	SMTP    SMTPConfig    `yaml:"smtp" envPrefix:"SMTP_"`
}

// SMTPConfig contains SMTP submission settings
type SMTPConfig struct {
	Addr        string     `yaml:"addr" env:"ADDR"`
	Username    string     `yaml:"username" env:"USERNAME"`
	Hostname    string     `yaml:"hostname" env:"HOSTNAME"`
	StartTLS    string     `yaml:"starttls" env:"STARTTLS"` // required, none. Default: required
	FromDomains []string   `yaml:"from_domains" env:"FROM_DOMAINS"`
	DKIM        DKIMConfig `yaml:"dkim" envPrefix:"DKIM_"`
}

// DKIMConfig contains DKIM signing settings
type DKIMConfig struct {
	Enabled  bool   `yaml:"enabled" env:"ENABLED"`
	Domain   string `yaml:"domain" env:"DOMAIN"`
	Selector string `yaml:"selector" env:"SELECTOR"`
	KeyFile  string `yaml:"key_file" env:"KEY_FILE"`
}

// DispatchConfig contains send loop settings
type DispatchConfig struct {
	CampaignPacing time.Duration `yaml:"campaign_pacing" env:"CAMPAIGN_PACING"` // Default: 150ms
	AdhocPacing    time.Duration `yaml:"adhoc_pacing" env:"ADHOC_PACING"`       // Default: 120ms
	SendTimeout    time.Duration `yaml:"send_timeout" env:"SEND_TIMEOUT"`       // Default: 30s
}

// SchedulerConfig contains scheduled send settings
type SchedulerConfig struct {
	Enabled  *bool         `yaml:"enabled" env:"ENABLED"`   // Default: true
	Interval time.Duration `yaml:"interval" env:"INTERVAL"` // Default: 30s
}

// MetricsConfig contains Prometheus metrics settings
type MetricsConfig struct {
	Enabled        bool          `yaml:"enabled" env:"ENABLED"`
	ListenAddr     string        `yaml:"listen_addr" env:"LISTEN_ADDR"` // Default: :9090
	Path           string        `yaml:"path" env:"PATH"`               // Default: /metrics
	AllowedIPs     []string      `yaml:"allowed_ips" env:"ALLOWED_IPS"`
	UpdateInterval time.Duration `yaml:"update_interval" env:"UPDATE_INTERVAL"` // Default: 15s
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `yaml:"level" env:"LEVEL"`   // debug, info, warn, error
	Format     string `yaml:"format" env:"FORMAT"` // json, text
	File       string `yaml:"file" env:"FILE"`     // empty = stdout
	MaxSizeMB  int    `yaml:"max_size_mb" env:"MAX_SIZE_MB"`
	MaxBackups int    `yaml:"max_backups" env:"MAX_BACKUPS"`
	MaxAgeDays int    `yaml:"max_age_days" env:"MAX_AGE_DAYS"`
}

// Load reads the YAML file at path (optional), applies defaults, then
// environment overrides from the process and an optional .env file, and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadDotEnv loads .env from the working directory if present. Variables
// already set in the process win.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// setDefaults sets default values for configuration
func (c *Config) setDefaults() {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.NotificationCap == 0 {
		c.Server.NotificationCap = 100
	}

	if c.Storage.Path == "" {
		c.Storage.Path = "./data/campaigner.db"
	}

	if c.Gateway.Kind == "" {
		c.Gateway.Kind = "resend"
	}
	if c.Gateway.Mode == "" {
		c.Gateway.Mode = "direct"
	}
	if c.Gateway.Timeout == 0 {
		c.Gateway.Timeout = 30 * time.Second
	}
	if c.Gateway.SMTP.Hostname == "" {
		hostname, _ := os.Hostname()
		c.Gateway.SMTP.Hostname = hostname
	}
	if c.Gateway.SMTP.StartTLS == "" {
		c.Gateway.SMTP.StartTLS = "required"
	}

	if c.Dispatch.CampaignPacing == 0 {
		c.Dispatch.CampaignPacing = 150 * time.Millisecond
	}
	if c.Dispatch.AdhocPacing == 0 {
		c.Dispatch.AdhocPacing = 120 * time.Millisecond
	}
	if c.Dispatch.SendTimeout == 0 {
		c.Dispatch.SendTimeout = 30 * time.Second
	}

	if c.Scheduler.Enabled == nil {
		enabled := true
		c.Scheduler.Enabled = &enabled
	}
	if c.Scheduler.Interval == 0 {
		c.Scheduler.Interval = 30 * time.Second
	}

	if c.Metrics.ListenAddr == "" {
		c.Metrics.ListenAddr = ":9090"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.UpdateInterval == 0 {
		c.Metrics.UpdateInterval = 15 * time.Second
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = 100
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging.level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid logging.format: %s (must be json or text)", c.Logging.Format)
	}

	if err := c.validateGateway(); err != nil {
		return err
	}

	if c.Dispatch.CampaignPacing < 0 || c.Dispatch.AdhocPacing < 0 {
		return fmt.Errorf("dispatch pacing must not be negative")
	}
	if c.Dispatch.SendTimeout < 0 {
		return fmt.Errorf("dispatch.send_timeout must not be negative")
	}
	if c.Scheduler.Interval < time.Second {
		return fmt.Errorf("scheduler.interval must be at least 1s, got %s", c.Scheduler.Interval)
	}

	return nil
}

// validateGateway validates provider settings
func (c *Config) validateGateway() error {
	g := c.Gateway
	switch g.Kind {
	case "resend":
		switch g.Mode {
		case "direct":
		case "relay":
			if g.BaseURL == "" {
				return fmt.Errorf("gateway.base_url is required in relay mode")
			}
		default:
			return fmt.Errorf("invalid gateway.mode: %s (must be direct or relay)", g.Mode)
		}
	case "smtp":
		if g.SMTP.Addr == "" {
			return fmt.Errorf("gateway.smtp.addr is required for the smtp gateway")
		}
		switch g.SMTP.StartTLS {
		case "required", "none":
		default:
			return fmt.Errorf("invalid gateway.smtp.starttls: %s (must be required or none)", g.SMTP.StartTLS)
		}
		if d := g.SMTP.DKIM; d.Enabled {
			if d.Domain == "" || d.Selector == "" || d.KeyFile == "" {
				return fmt.Errorf("gateway.smtp.dkim requires domain, selector and key_file when enabled")
			}
		}
	default:
		return fmt.Errorf("invalid gateway.kind: %s (must be resend or smtp)", g.Kind)
	}
	return nil
}

// SchedulerEnabled reports whether the scheduler loop should run
func (c *Config) SchedulerEnabled() bool {
	return c.Scheduler.Enabled == nil || *c.Scheduler.Enabled
}
