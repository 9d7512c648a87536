package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/longkey1/aichat/internal/aichat/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const configFields = "configfile, base_url, mode, timeout, history_dir, history_retention_days, log_level, prompt_dirs"

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config [field]",
	Short: "Display current configuration",
	Long: `Display the current configuration values.
This command shows all configuration values loaded from the config file and environment variables.

If a field name is specified, only that field's value is displayed.
Available fields: ` + configFields + `

Examples:
  aichat config              # Show all configuration
  aichat config base_url     # Show only the AI service URL
  aichat config mode         # Show only the delivery mode
  aichat config history_dir  # Show only the history directory`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		if len(args) > 0 {
			value, ok := configField(cfg, args[0])
			if !ok {
				fmt.Fprintf(os.Stderr, "Unknown field: %s\n", args[0])
				fmt.Fprintf(os.Stderr, "Available fields: %s\n", configFields)
				os.Exit(1)
			}
			fmt.Println(value)
			return
		}

		fmt.Printf("ConfigFile: %s\n", viper.ConfigFileUsed())
		fmt.Printf("BaseURL: %s\n", cfg.BaseURL)
		fmt.Printf("Mode: %s\n", cfg.Mode)
		fmt.Printf("Timeout: %s\n", cfg.Timeout)
		fmt.Printf("HistoryDirectory: %s\n", cfg.HistoryDir)
		fmt.Printf("HistoryRetentionDays: %d\n", cfg.HistoryRetentionDays)
		fmt.Printf("LogLevel: %s\n", cfg.LogLevel)
		fmt.Printf("PromptDirectories: %s\n", strings.Join(cfg.PromptDirs, ","))
	},
}

// configField returns the display value of a single field
func configField(cfg *config.Config, name string) (string, bool) {
	switch strings.ToLower(name) {
	case "configfile":
		return viper.ConfigFileUsed(), true
	case "base_url", "baseurl":
		return cfg.BaseURL, true
	case "mode":
		return cfg.Mode, true
	case "timeout":
		return cfg.Timeout.String(), true
	case "history_dir", "historydir":
		return cfg.HistoryDir, true
	case "history_retention_days", "historyretentiondays":
		return fmt.Sprint(cfg.HistoryRetentionDays), true
	case "log_level", "loglevel":
		return cfg.LogLevel, true
	case "prompt_dirs", "promptdirs":
		return strings.Join(cfg.PromptDirs, ","), true
	}
	return "", false
}

func init() {
	rootCmd.AddCommand(configCmd)
}
