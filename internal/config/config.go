// Package config handles application configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/alienxp03/warrant/internal/engine"
	"github.com/alienxp03/warrant/internal/scheduler"
)

// Config represents the application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Log       LogConfig       `yaml:"log"`
	Game      GameConfig      `yaml:"game"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Session   SessionConfig   `yaml:"session"`
}

// ServerConfig holds server settings.
type ServerConfig struct {
	Port        int    `yaml:"port" env:"SERVER_PORT"`
	AdminToken  string `yaml:"admin_token,omitempty" env:"ADMIN_TOKEN"`
	EventBuffer int    `yaml:"event_buffer" env:"EVENT_BUFFER"`
}

// StorageConfig holds database settings.
type StorageConfig struct {
	Path string `yaml:"path" env:"DB_PATH"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"` // text or json
}

// GameConfig holds the tunable game rules.
type GameConfig struct {
	CriticPassFloor int `yaml:"critic_pass_floor" env:"CRITIC_PASS_FLOOR"`
}

// SchedulerConfig holds pairing settings.
type SchedulerConfig struct {
	MaxAttempts int    `yaml:"max_attempts" env:"SCHEDULER_MAX_ATTEMPTS"`
	Exhaustion  string `yaml:"exhaustion" env:"SCHEDULER_EXHAUSTION"`
	Seed        int64  `yaml:"seed" env:"SCHEDULER_SEED"`
}

// SessionConfig holds session display settings.
type SessionConfig struct {
	Timezone string `yaml:"timezone" env:"TIMEZONE"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8182,
			EventBuffer: 32,
		},
		Storage: StorageConfig{
			Path: defaultDBPath(),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Game: GameConfig{
			CriticPassFloor: 8,
		},
		Scheduler: SchedulerConfig{
			MaxAttempts: scheduler.DefaultMaxAttempts,
			Exhaustion:  string(scheduler.PolicyFail),
		},
		Session: SessionConfig{
			Timezone: "UTC",
		},
	}
}

// Load loads configuration from the default path.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from a specific path, then applies .env and
// process environment overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// No config file, proceed with defaults
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	dotenv, err := LoadEnv(".env")
	if err != nil && !os.IsNotExist(err) {
		slog.Warn("Ignoring unreadable .env file", "error", err)
	}
	if err := ApplyEnvOverrides(cfg, mergeEnviron(dotenv)); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values the rest of the program relies on.
func (c *Config) Validate() error {
	switch scheduler.Policy(c.Scheduler.Exhaustion) {
	case scheduler.PolicyFail, scheduler.PolicyRelax:
	default:
		return fmt.Errorf("scheduler.exhaustion must be %q or %q, got %q",
			scheduler.PolicyFail, scheduler.PolicyRelax, c.Scheduler.Exhaustion)
	}
	if c.Game.CriticPassFloor < 0 {
		return fmt.Errorf("game.critic_pass_floor cannot be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Save saves the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo saves the configuration to a specific path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Location resolves the session timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Session.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid session.timezone %q: %w", c.Session.Timezone, err)
	}
	return loc, nil
}

// EngineOptions converts the configuration into engine options.
func (c *Config) EngineOptions() (engine.Options, error) {
	loc, err := c.Location()
	if err != nil {
		return engine.Options{}, err
	}
	opts := engine.DefaultOptions()
	opts.Rules.CriticPassFloor = c.Game.CriticPassFloor
	opts.Scheduler = scheduler.Options{
		MaxAttempts: c.Scheduler.MaxAttempts,
		Exhaustion:  scheduler.Policy(c.Scheduler.Exhaustion),
	}
	opts.Seed = c.Scheduler.Seed
	opts.Timezone = loc
	return opts, nil
}

// SlogLevel maps the configured level name onto slog.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// NewLogger builds the configured slog handler writing to stderr.
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// DBPath returns the storage path with a leading ~ expanded.
func (c *Config) DBPath() string {
	path := c.Storage.Path
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return path
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "warrant.db"
	}
	return filepath.Join(home, ".warrant", "warrant.db")
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "warrant.yaml"
	}
	return filepath.Join(home, ".warrant", "config.yaml")
}

// GenerateExample generates an example configuration file.
func GenerateExample() string {
	example := `# warrant configuration file
# Place this file at ~/.warrant/config.yaml
# Every value can be overridden by a WARRANT_* environment variable
# or a .env file in the working directory.

server:
  port: 8182               # WARRANT_SERVER_PORT
  admin_token: ""          # WARRANT_ADMIN_TOKEN, required for /api/admin when set
  event_buffer: 32         # live update buffer per client

storage:
  path: ~/.warrant/warrant.db   # WARRANT_DB_PATH

log:
  level: info              # debug, info, warn, error
  format: text             # text or json

game:
  critic_pass_floor: 8     # moves logged before the critic may pass

scheduler:
  max_attempts: 10000      # shuffles tried before pairing gives up
  exhaustion: fail         # fail or relax when a pair has seen every scenario
  seed: 0                  # 0 draws a random seed

session:
  timezone: UTC            # used for exported dates
`
	return example
}
