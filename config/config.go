package config

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvDB       = "TRADEJOURNAL_DB"
	EnvLogLevel = "TRADEJOURNAL_LOG_LEVEL"
	EnvTimezone = "TRADEJOURNAL_TZ"
)

// MaxRolloverEvery is the longest allowed gap between day checks.
const MaxRolloverEvery = time.Minute

// Config represents the complete application configuration
type Config struct {
	Storage  StorageConfig  `json:"storage" yaml:"storage"`
	Schedule ScheduleConfig `json:"schedule" yaml:"schedule"`
	Log      LogConfig      `json:"log" yaml:"log"`
	Timezone string         `json:"timezone,omitempty" yaml:"timezone,omitempty"` // IANA name, empty = local
}

// StorageConfig says where the journal lives
type StorageConfig struct {
	DBPath       string `json:"db_path" yaml:"db_path"`
	SnapshotKeep int    `json:"snapshot_keep" yaml:"snapshot_keep"`
}

// ScheduleConfig holds the background job intervals
type ScheduleConfig struct {
	RolloverEvery string `json:"rollover_every" yaml:"rollover_every"` // e.g., "1m"
	BackupEvery   string `json:"backup_every" yaml:"backup_every"`     // e.g., "5m", "0" disables
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`   // debug|info|warn|error
	Format string `json:"format" yaml:"format"` // text|json
}

// Rollover returns the rollover check interval.
func (s ScheduleConfig) Rollover() (time.Duration, error) {
	return time.ParseDuration(s.RolloverEvery)
}

// Backup returns the snapshot interval; 0 means no automatic snapshots.
func (s ScheduleConfig) Backup() (time.Duration, error) {
	if s.BackupEvery == "" || s.BackupEvery == "0" {
		return 0, nil
	}
	return time.ParseDuration(s.BackupEvery)
}

// LoadFromFile loads configuration from a file (JSON or YAML)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// ApplyEnv loads .env from the working directory when present and lets
// the environment override file values.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()

	if v := os.Getenv(EnvDB); v != "" {
		c.Storage.DBPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvTimezone); v != "" {
		c.Timezone = v
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required")
	}
	if c.Storage.SnapshotKeep < 1 {
		return fmt.Errorf("storage.snapshot_keep must be at least 1")
	}
	every, err := c.Schedule.Rollover()
	if err != nil {
		return fmt.Errorf("schedule.rollover_every: %w", err)
	}
	if every <= 0 || every > MaxRolloverEvery {
		return fmt.Errorf("schedule.rollover_every must be positive and at most %s", MaxRolloverEvery)
	}
	backup, err := c.Schedule.Backup()
	if err != nil {
		return fmt.Errorf("schedule.backup_every: %w", err)
	}
	if backup < 0 {
		return fmt.Errorf("schedule.backup_every must not be negative")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if f := c.Log.Format; f != "" && f != "text" && f != "json" {
		return fmt.Errorf("log.format must be 'text' or 'json'")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone; empty means the local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone: %s", c.Timezone)
	}
	return loc, nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			DBPath:       "./tradejournal.db",
			SnapshotKeep: 20,
		},
		Schedule: ScheduleConfig{
			RolloverEvery: "1m",
			BackupEvery:   "5m",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("log.level must be debug, info, warn or error")
}

// NewLogger builds the process logger.
func NewLogger(lc LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := ParseLevel(lc.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
