// Package config loads application configuration from defaults, an
// optional YAML file, and CASEVAULT_-prefixed environment variables, in
// that order of precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the top-level application configuration.
type Config struct {
	Database  DatabaseConfig  `koanf:"database"`
	Messaging MessagingConfig `koanf:"messaging"`
	Logging   LoggingConfig   `koanf:"logging"`
	Linkage   LinkageConfig   `koanf:"linkage"`
	Consent   ConsentConfig   `koanf:"consent"`
	Documents DocumentsConfig `koanf:"documents"`
	Lethality LethalityConfig `koanf:"lethality"`
}

type DatabaseConfig struct {
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	WALMode      bool   `koanf:"wal_mode"`
	AutoMigrate  bool   `koanf:"auto_migrate"`
}

type MessagingConfig struct {
	Enabled    bool   `koanf:"enabled"`
	URL        string `koanf:"url"`
	StreamName string `koanf:"stream_name"`
	MaxAge     string `koanf:"max_age"`
}

type LoggingConfig struct {
	Level string `koanf:"level"` // debug | info | warn | error
}

// LinkageConfig governs project linkage transition validation.
type LinkageConfig struct {
	// MaxTransitionGapDays is the largest allowed gap between transitional
	// housing exit and permanent housing move-in.
	MaxTransitionGapDays int `koanf:"max_transition_gap_days"`
}

// ConsentConfig governs consent defaults.
type ConsentConfig struct {
	// DefaultDurationMonths applies when a grant carries no explicit expiry.
	DefaultDurationMonths int `koanf:"default_duration_months"`
}

// DocumentsConfig governs document lifecycle derived predicates.
type DocumentsConfig struct {
	// ExpiryWarningDays is the lookahead window for expiring-soon checks.
	ExpiryWarningDays int `koanf:"expiry_warning_days"`
}

// LethalityConfig carries the risk-level cutoffs for the structured
// assessment tools. Weights are instrument-defined and fixed in code;
// cutoffs are exposed for agency calibration.
type LethalityConfig struct {
	OdaraExtreme  int `koanf:"odara_extreme"`
	OdaraHigh     int `koanf:"odara_high"`
	OdaraModerate int `koanf:"odara_moderate"`
	OdaraLow      int `koanf:"odara_low"`

	DangerExtreme  int `koanf:"danger_extreme"`
	DangerHigh     int `koanf:"danger_high"`
	DangerModerate int `koanf:"danger_moderate"`
	DangerLow      int `koanf:"danger_low"`
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be > 0")
	}
	if c.Database.MaxIdleConns <= 0 {
		return fmt.Errorf("database.max_idle_conns must be > 0")
	}
	if c.Messaging.Enabled && strings.TrimSpace(c.Messaging.URL) == "" {
		return fmt.Errorf("messaging.url is required when messaging is enabled")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level %q", c.Logging.Level)
	}
	if c.Linkage.MaxTransitionGapDays < 0 {
		return fmt.Errorf("linkage.max_transition_gap_days must be >= 0")
	}
	if c.Consent.DefaultDurationMonths <= 0 {
		return fmt.Errorf("consent.default_duration_months must be > 0")
	}
	if c.Documents.ExpiryWarningDays <= 0 {
		return fmt.Errorf("documents.expiry_warning_days must be > 0")
	}
	if !descending(c.Lethality.OdaraExtreme, c.Lethality.OdaraHigh, c.Lethality.OdaraModerate, c.Lethality.OdaraLow) {
		return fmt.Errorf("lethality odara cutoffs must be strictly descending")
	}
	if !descending(c.Lethality.DangerExtreme, c.Lethality.DangerHigh, c.Lethality.DangerModerate, c.Lethality.DangerLow) {
		return fmt.Errorf("lethality danger cutoffs must be strictly descending")
	}
	return nil
}

func descending(values ...int) bool {
	for i := 1; i < len(values); i++ {
		if values[i] >= values[i-1] {
			return false
		}
	}
	return true
}

// Load parses config from defaults, then an optional YAML file, then
// CASEVAULT_ environment variables (double underscore maps to a dot).
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"database.dsn":                    "casevault.db",
		"database.max_open_conns":         25,
		"database.max_idle_conns":         5,
		"database.wal_mode":               true,
		"database.auto_migrate":           true,
		"messaging.enabled":               false,
		"messaging.url":                   "nats://127.0.0.1:4222",
		"messaging.stream_name":           "CASEVAULT_EVENTS",
		"messaging.max_age":               "168h",
		"logging.level":                   "info",
		"linkage.max_transition_gap_days": 30,
		"consent.default_duration_months": 12,
		"documents.expiry_warning_days":   30,
		"lethality.odara_extreme":         7,
		"lethality.odara_high":            5,
		"lethality.odara_moderate":        3,
		"lethality.odara_low":             1,
		"lethality.danger_extreme":        14,
		"lethality.danger_high":           9,
		"lethality.danger_moderate":       5,
		"lethality.danger_low":            2,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("CASEVAULT_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "CASEVAULT_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the built-in configuration without reading any file or
// environment.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(err)
	}
	return cfg
}
