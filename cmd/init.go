package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/longkey1/aichat/internal/aichat/config"
	"github.com/spf13/cobra"
)

// fileConfig is the on-disk layout of config.toml. Durations are written in
// their string form ("60s"), which viper decodes back into time.Duration.
type fileConfig struct {
	BaseURL              string   `toml:"base_url"`
	Mode                 string   `toml:"mode"`
	Timeout              string   `toml:"timeout"`
	HistoryDir           string   `toml:"history_dir"`
	HistoryRetentionDays int      `toml:"history_retention_days"`
	LogLevel             string   `toml:"log_level"`
	PromptDirs           []string `toml:"prompt_dirs"`
}

func newFileConfig(cfg *config.Config) fileConfig {
	return fileConfig{
		BaseURL:              cfg.BaseURL,
		Mode:                 cfg.Mode,
		Timeout:              cfg.Timeout.String(),
		HistoryDir:           cfg.HistoryDir,
		HistoryRetentionDays: cfg.HistoryRetentionDays,
		LogLevel:             cfg.LogLevel,
		PromptDirs:           cfg.PromptDirs,
	}
}

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the configuration file",
	Long: `Initialize the configuration file with default settings.
The config file will be created at $HOME/.config/aichat/config.toml by default.
You can specify a different location using the --config option.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %v", err)
		}

		configFile := filepath.Join(home, ".config", "aichat", "config.toml")
		if cfgFile != "" {
			configFile = cfgFile
		}

		configDir := filepath.Dir(configFile)
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %v", err)
		}

		if _, err := os.Stat(configFile); err == nil {
			return fmt.Errorf("config file already exists at: %s", configFile)
		}

		// Relative history_dir is resolved against the config file directory
		cfg := config.NewDefaultConfig("history")
		cfg.PromptDirs = []string{"prompts"}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("failed to create config file: %v", err)
		}
		defer f.Close()

		encoder := toml.NewEncoder(f)
		if err := encoder.Encode(newFileConfig(cfg)); err != nil {
			return fmt.Errorf("failed to encode config: %v", err)
		}

		historyDir := filepath.Join(configDir, cfg.HistoryDir)
		if err := os.MkdirAll(historyDir, 0755); err != nil {
			return fmt.Errorf("failed to create history directory: %v", err)
		}

		promptsDir := filepath.Join(configDir, cfg.PromptDirs[0])
		if err := os.MkdirAll(promptsDir, 0755); err != nil {
			return fmt.Errorf("failed to create prompts directory: %v", err)
		}

		fmt.Printf("Configuration file created at: %s\n", configFile)
		fmt.Printf("History directory created at: %s\n", historyDir)
		fmt.Printf("Prompts directory created at: %s\n", promptsDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
