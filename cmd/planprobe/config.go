package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// =============================================================================
// Config Types
// =============================================================================

// Config holds all application configuration.
type Config struct {
	Terraform TerraformConfig `mapstructure:"terraform"`
	Params    ParamsConfig    `mapstructure:"params"`
	Log       LogConfig       `mapstructure:"log"`
}

// TerraformConfig holds how the terraform binary is run.
type TerraformConfig struct {
	Binary string `mapstructure:"binary"`
	Mode   string `mapstructure:"mode"` // in_place or isolated
}

// ParamsConfig selects the provider for baseline parameters.
type ParamsConfig struct {
	// Provider is "identity" (flags only) or "file".
	Provider string `mapstructure:"provider"`
	// File is the parameter file read by the file provider.
	File string `mapstructure:"file"`
	// EnvPrefix prefixes parameter environment variables for the file provider.
	EnvPrefix string `mapstructure:"env_prefix"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// =============================================================================
// Config Loading
// =============================================================================

// LoadConfig loads configuration from file and environment.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("terraform.binary", "terraform")
	v.SetDefault("terraform.mode", "in_place")
	v.SetDefault("params.provider", "identity")
	v.SetDefault("params.file", "")
	v.SetDefault("params.env_prefix", "PLANPROBE")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")

	// Load from file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			// Only return error if file was explicitly specified and is invalid
			if _, ok := err.(viper.ConfigParseError); ok {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
			// File not found is OK, we'll use defaults
		}
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("PLANPROBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// A parameter file implies the file provider
	if cfg.Params.File != "" && cfg.Params.Provider == "identity" {
		cfg.Params.Provider = "file"
	}

	return &cfg, nil
}

// =============================================================================
// Logger Setup
// =============================================================================

// SetupLogger creates a logger with the configured level and format.
// Logs go to w, which is stderr in practice so stdout carries only the plan.
func SetupLogger(cfg *Config, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}
