package config

import (
	"fmt"
	"time"

	"github.com/longkey1/aichat/internal/aichat"
	"github.com/spf13/viper"
)

// Config holds the configuration for the chat client
type Config struct {
	// Root URL of the AI service (e.g., "http://localhost:8080")
	BaseURL string `toml:"base_url" mapstructure:"base_url"`

	// Default delivery mode: normal, stream or sse
	Mode string `toml:"mode" mapstructure:"mode"`

	// Per-send timeout (0 = disabled)
	Timeout time.Duration `toml:"timeout" mapstructure:"timeout"`

	// Where saved sessions are written
	HistoryDir string `toml:"history_dir" mapstructure:"history_dir"`

	// Number of days "sessions clear" keeps by default (default: 30)
	HistoryRetentionDays int `toml:"history_retention_days" mapstructure:"history_retention_days"`

	// debug, info, warn or error
	LogLevel string `toml:"log_level" mapstructure:"log_level"`

	// Directories holding TOML prompt templates; later directories win
	PromptDirs []string `toml:"prompt_dirs" mapstructure:"prompt_dirs"`
}

// GetMode parses the configured delivery mode
func (c *Config) GetMode() (aichat.Mode, error) {
	if c.Mode == "" {
		return aichat.DefaultMode, nil
	}
	return aichat.ParseMode(c.Mode)
}

// NewDefaultConfig returns a new Config with default values
func NewDefaultConfig(historyDir string) *Config {
	return &Config{
		BaseURL:              "http://localhost:8080",
		Mode:                 string(aichat.DefaultMode),
		Timeout:              60 * time.Second,
		HistoryDir:           historyDir,
		HistoryRetentionDays: 30,
		LogLevel:             "info",
	}
}

// LoadConfig loads configuration from viper
func LoadConfig() (*Config, error) {
	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %v", err)
	}

	config.BaseURL = expandEnvVars(config.BaseURL)

	if config.HistoryDir != "" {
		absPath, err := ResolvePath(config.HistoryDir)
		if err != nil {
			return nil, fmt.Errorf("error resolving history directory path '%s': %v", config.HistoryDir, err)
		}
		config.HistoryDir = absPath
	}

	for i, dir := range config.PromptDirs {
		absPath, err := ResolvePath(dir)
		if err != nil {
			return nil, fmt.Errorf("error resolving prompt directory path '%s': %v", dir, err)
		}
		config.PromptDirs[i] = absPath
	}

	if _, err := config.GetMode(); err != nil {
		return nil, err
	}
	if config.Timeout < 0 {
		return nil, fmt.Errorf("timeout cannot be negative: %s", config.Timeout)
	}

	return config, nil
}
