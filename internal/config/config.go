// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults and Load(ctx) to layer overrides.
// - External errors must be wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"runtime"
	"strings"
)

// Live store backends.
const (
	LiveStoreMemory = "memory"
	LiveStoreRedis  = "redis"
)

// Archive drivers. An empty driver disables the results archive.
const (
	ArchiveNone     = ""
	ArchivePostgres = "postgres"
	ArchiveSQLite   = "sqlite3"
)

// Knockout handling for an odd team out.
const (
	OddTeamDrop     = "drop"
	OddTeamWalkover = "walkover"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log backend: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the completed-result queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of result workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the remembered (match, event id) pairs.
	DedupeSize int `koanf:"dedupe_size"`

	// LiveStore selects the live store backend.
	LiveStore   string `koanf:"live_store"`
	RedisAddr   string `koanf:"redis_addr"`
	RedisPrefix string `koanf:"redis_prefix"`

	// ArchiveDriver and ArchiveDSN configure the SQL results archive.
	ArchiveDriver string `koanf:"archive_driver"`
	ArchiveDSN    string `koanf:"archive_dsn"`

	// KafkaBrokers enables result notifications when non-empty.
	KafkaBrokers []string `koanf:"kafka_brokers"`
	KafkaTopic   string   `koanf:"kafka_topic"`

	// MaxOvers and MaxWickets end an innings automatically; 0 disables the limit.
	MaxOvers   int `koanf:"max_overs"`
	MaxWickets int `koanf:"max_wickets"`

	// Points awarded per completed match.
	WinPoints  int `koanf:"win_points"`
	TiePoints  int `koanf:"tie_points"`
	LossPoints int `koanf:"loss_points"`

	// KnockoutOddTeam is drop or walkover.
	KnockoutOddTeam string `koanf:"knockout_odd_team"`

	// PublishRetries and PublishBackoffMS bound live store retries.
	PublishRetries   int `koanf:"publish_retries"`
	PublishBackoffMS int `koanf:"publish_backoff_ms"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		QueueSize:        1_024,
		WorkerCount:      runtime.NumCPU(),
		DedupeSize:       100_000,
		LiveStore:        LiveStoreMemory,
		RedisAddr:        "localhost:6379",
		RedisPrefix:      "scorebook",
		ArchiveDriver:    ArchiveNone,
		KafkaTopic:       "match-results",
		MaxOvers:         0,
		MaxWickets:       0,
		WinPoints:        2,
		TiePoints:        1,
		LossPoints:       0,
		KnockoutOddTeam:  OddTeamDrop,
		PublishRetries:   3,
		PublishBackoffMS: 50,
	}
}

// Validate checks field ranges and enum values.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q must be text or json", ErrInvalidConfig, c.LogFormat)
	}
	if c.QueueSize <= 0 || c.WorkerCount <= 0 || c.DedupeSize <= 0 {
		return fmt.Errorf("%w: queue_size, worker_count and dedupe_size must be positive", ErrInvalidConfig)
	}
	switch c.LiveStore {
	case LiveStoreMemory:
	case LiveStoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%w: redis_addr is required for the redis live store", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: live_store %q must be memory or redis", ErrInvalidConfig, c.LiveStore)
	}
	switch c.ArchiveDriver {
	case ArchiveNone:
	case ArchivePostgres, ArchiveSQLite:
		if c.ArchiveDSN == "" {
			return fmt.Errorf("%w: archive_dsn is required for driver %s", ErrInvalidConfig, c.ArchiveDriver)
		}
	default:
		return fmt.Errorf("%w: archive_driver %q must be postgres or sqlite3", ErrInvalidConfig, c.ArchiveDriver)
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return fmt.Errorf("%w: kafka_topic is required when kafka_brokers is set", ErrInvalidConfig)
	}
	if c.MaxOvers < 0 || c.MaxWickets < 0 {
		return fmt.Errorf("%w: max_overs and max_wickets must not be negative", ErrInvalidConfig)
	}
	if c.WinPoints < c.TiePoints || c.TiePoints < c.LossPoints {
		return fmt.Errorf("%w: points must satisfy win >= tie >= loss", ErrInvalidConfig)
	}
	switch c.KnockoutOddTeam {
	case OddTeamDrop, OddTeamWalkover:
	default:
		return fmt.Errorf("%w: knockout_odd_team %q must be drop or walkover", ErrInvalidConfig, c.KnockoutOddTeam)
	}
	if c.PublishRetries < 0 || c.PublishBackoffMS < 0 {
		return fmt.Errorf("%w: publish_retries and publish_backoff_ms must not be negative", ErrInvalidConfig)
	}
	return nil
}
