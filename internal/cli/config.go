package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ChuLiYu/autoves/internal/controller"
	"github.com/ChuLiYu/autoves/internal/worker"
	"github.com/ChuLiYu/autoves/pkg/types"
	"github.com/xyproto/env/v2"
	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration structure
// Maps config file fields through YAML tags
type Config struct {
	Compiler struct {
		Executable  string        `yaml:"executable"`
		DefaultMode string        `yaml:"default_mode"`
		Timeout     time.Duration `yaml:"timeout"` // 0 = wait forever
	} `yaml:"compiler"`

	Watch struct {
		Interval time.Duration `yaml:"interval"`
	} `yaml:"watch"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Metrics struct {
		Enabled bool `yaml:"enabled"`
		Port    int  `yaml:"port"`
	} `yaml:"metrics"`

	Health struct {
		Enabled bool `yaml:"enabled"`
		Port    int  `yaml:"port"`
	} `yaml:"health"`
}

// Environment variables that override the config file
const (
	EnvCompiler    = "AUTOVES_COMPILER"
	EnvDefaultMode = "AUTOVES_DEFAULT_MODE"
	EnvIntervalMs  = "AUTOVES_INTERVAL_MS"
	EnvLogLevel    = "AUTOVES_LOG_LEVEL"
)

func defaultConfig() *Config {
	var cfg Config
	cfg.Compiler.Executable = worker.DefaultExecutable
	cfg.Compiler.DefaultMode = types.DefaultMode.String()
	cfg.Watch.Interval = controller.DefaultInterval
	cfg.Log.Level = "warn"
	cfg.Metrics.Port = 9090
	cfg.Health.Port = 50051
	return &cfg
}

// loadConfig reads path on top of the defaults. An empty path means
// defaults only; a named file that cannot be read is an error.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	return cfg, nil
}

// applyEnv overrides config values from the environment
func applyEnv(cfg *Config) {
	cfg.Compiler.Executable = env.Str(EnvCompiler, cfg.Compiler.Executable)
	cfg.Compiler.DefaultMode = env.Str(EnvDefaultMode, cfg.Compiler.DefaultMode)
	cfg.Log.Level = env.Str(EnvLogLevel, cfg.Log.Level)

	// 未設定時保留 YAML 的精度（例如 1500us）
	if env.Has(EnvIntervalMs) {
		ms := env.Int(EnvIntervalMs, int(cfg.Watch.Interval/time.Millisecond))
		cfg.Watch.Interval = time.Duration(ms) * time.Millisecond
	}
}

func (c *Config) validate() error {
	var errs []error
	if c.Compiler.Executable == "" {
		errs = append(errs, errors.New("compiler.executable must not be empty"))
	}
	if _, err := types.ParseMode(c.Compiler.DefaultMode); err != nil {
		errs = append(errs, fmt.Errorf("compiler.default_mode: %w", err))
	}
	if c.Compiler.Timeout < 0 {
		errs = append(errs, errors.New("compiler.timeout must not be negative"))
	}
	if c.Watch.Interval <= 0 {
		errs = append(errs, errors.New("watch.interval must be positive"))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}

// defaultMode is only called after validate
func (c *Config) defaultMode() types.Mode {
	m, _ := types.ParseMode(c.Compiler.DefaultMode)
	return m
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(s))
	return level, err
}
