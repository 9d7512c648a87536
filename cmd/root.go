/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/longkey1/aichat/internal/aichat/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "aichat",
	Short: "A terminal chat client for an AI service",
	Long: `aichat is a command-line chat client for an AI service exposing
/ai/chat, /ai/stream and /ai/sseChat endpoints.
Replies can be delivered at once (normal), as a chunked stream (stream)
or as Server-Sent Events (sse).
You can configure the tool using a TOML configuration file.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/aichat/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("base-url", "", "Base URL of the AI service (e.g., http://localhost:8080)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Per-message timeout (e.g., 30s, 0 disables)")

	viper.BindPFlag("base_url", rootCmd.PersistentFlags().Lookup("base-url"))
	viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetEnvPrefix("AICHAT")
	viper.AutomaticEnv()

	home, err := os.UserHomeDir()
	cobra.CheckErr(err)
	userConfigDir := filepath.Join(home, ".config", "aichat")

	defaultConfig := config.NewDefaultConfig("")

	viper.SetDefault("base_url", defaultConfig.BaseURL)
	viper.SetDefault("mode", defaultConfig.Mode)
	viper.SetDefault("timeout", defaultConfig.Timeout)
	viper.SetDefault("history_dir", defaultConfig.HistoryDir)
	viper.SetDefault("history_retention_days", defaultConfig.HistoryRetentionDays)
	viper.SetDefault("log_level", defaultConfig.LogLevel)
	viper.SetDefault("prompt_dirs", []string{filepath.Join(userConfigDir, "prompts")})

	viper.BindEnv("base_url", "AICHAT_BASE_URL")
	viper.BindEnv("mode", "AICHAT_MODE")
	viper.BindEnv("timeout", "AICHAT_TIMEOUT")
	viper.BindEnv("history_dir", "AICHAT_HISTORY_DIR")
	viper.BindEnv("log_level", "AICHAT_LOG_LEVEL")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
	} else {
		// Load system-wide config first (lower priority)
		systemConfigPaths := []string{
			"/etc/aichat",
			"/usr/local/etc/aichat",
		}
		for _, path := range systemConfigPaths {
			viper.AddConfigPath(path)
		}
		viper.SetConfigType("toml")
		viper.SetConfigName("config")

		systemConfigLoaded := false
		if err := viper.ReadInConfig(); err == nil {
			systemConfigLoaded = true
			if verbose {
				fmt.Fprintln(os.Stderr, "Loaded system-wide config:", viper.ConfigFileUsed())
			}
		}

		// Load user config (higher priority) - merge with system config
		viper.AddConfigPath(userConfigDir)
		if systemConfigLoaded {
			if err := viper.MergeInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					fmt.Fprintf(os.Stderr, "Error merging user config file: %v\n", err)
				}
			} else if verbose {
				fmt.Fprintln(os.Stderr, "Merged user config:", viper.ConfigFileUsed())
			}
		} else {
			if err := viper.ReadInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
				}
			}
		}
	}

	if verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		fmt.Fprintln(os.Stderr, "Environment variables:")
		fmt.Fprintln(os.Stderr, "  AICHAT_BASE_URL:", viper.GetString("base_url"))
		fmt.Fprintln(os.Stderr, "  AICHAT_MODE:", viper.GetString("mode"))
		fmt.Fprintln(os.Stderr, "  AICHAT_TIMEOUT:", viper.GetDuration("timeout"))
		fmt.Fprintln(os.Stderr, "  AICHAT_HISTORY_DIR:", viper.GetString("history_dir"))
		fmt.Fprintln(os.Stderr, "Prompt directories:", viper.GetStringSlice("prompt_dirs"))
	}
}
