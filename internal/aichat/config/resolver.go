package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// expandEnvVars replaces $VAR and ${VAR} references anywhere in value.
// Unset variables expand to the empty string.
func expandEnvVars(value string) string {
	if !strings.Contains(value, "$") {
		return value
	}
	return os.Expand(value, os.Getenv)
}

// GetBaseURL returns the validated base URL of the AI service without a trailing slash
func (c *Config) GetBaseURL() (string, error) {
	if c.BaseURL == "" {
		return "", fmt.Errorf("base URL is not configured. Set it in config file (base_url) or environment variable (AICHAT_BASE_URL)")
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid base URL %q: scheme must be http or https", c.BaseURL)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid base URL %q: missing host", c.BaseURL)
	}

	return strings.TrimRight(c.BaseURL, "/"), nil
}

// ResolvePath makes path absolute. Relative paths are taken relative to the
// directory of the config file in use, or to the working directory without one.
func ResolvePath(path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}

	base := "."
	if configFile := viper.ConfigFileUsed(); configFile != "" {
		base = filepath.Dir(configFile)
	}

	abs, err := filepath.Abs(filepath.Join(base, path))
	if err != nil {
		return "", fmt.Errorf("error resolving path %q: %w", path, err)
	}
	return abs, nil
}
