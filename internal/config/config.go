package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// FileName is the project config file looked up in the working directory.
const FileName = "wardrobe.yaml"

const (
	defaultTick     = 100 * time.Millisecond
	defaultInterval = 3 * time.Second
)

type ProjectConfig struct {
	Project  string         `yaml:"project"`
	Version  int            `yaml:"version"`
	Database DatabaseConfig `yaml:"database"`
	World    string         `yaml:"world" env:"WARDROBE_WORLD"`
	Monitor  MonitorConfig  `yaml:"monitor"`
	Log      LogConfig      `yaml:"log"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn" env:"WARDROBE_DATABASE_DSN"`
}

type MonitorConfig struct {
	Interval time.Duration `yaml:"interval" env:"WARDROBE_MONITOR_INTERVAL"`
	Tick     time.Duration `yaml:"tick" env:"WARDROBE_MONITOR_TICK"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"WARDROBE_LOG_LEVEL"`
	Format string `yaml:"format" env:"WARDROBE_LOG_FORMAT"`
	Extra  bool   `yaml:"extra" env:"WARDROBE_LOG_EXTRA"`
}

// LoadProjectConfig reads path, applies WARDROBE_* environment overrides and
// fills defaults.
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: parse env: %w", err)
	}

	applyDefaults(&cfg)
	if err := validateProjectConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *ProjectConfig) {
	if cfg.Monitor.Tick == 0 {
		cfg.Monitor.Tick = defaultTick
	}
	if cfg.Monitor.Interval == 0 {
		cfg.Monitor.Interval = defaultInterval
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return fmt.Errorf("database dsn is required")
	}
	if _, err := Backend(cfg.Database.DSN); err != nil {
		return err
	}
	if cfg.Monitor.Tick < 0 || cfg.Monitor.Interval < 0 {
		return fmt.Errorf("monitor durations must be positive")
	}
	if cfg.Monitor.Interval < cfg.Monitor.Tick {
		return fmt.Errorf("monitor interval %s is shorter than tick %s", cfg.Monitor.Interval, cfg.Monitor.Tick)
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("unsupported log format: %s", cfg.Log.Format)
	}
	return nil
}

// Backend names the store implementation a DSN selects.
func Backend(dsn string) (string, error) {
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		return "sqlite", nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "postgres", nil
	default:
		return "", fmt.Errorf("unsupported database dsn scheme: %s", dsn)
	}
}

// Scaffold renders a starter config for project.
func Scaffold(project string) string {
	return fmt.Sprintf(`project: %s
version: 1

database:
  # quote DSNs that end in a colon, e.g. "sqlite://:memory:"
  dsn: sqlite://./wardrobe.db

world: ./world.yaml

monitor:
  interval: 3s
  tick: 100ms

log:
  level: info
  format: console
  extra: false
`, project)
}
