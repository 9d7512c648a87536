/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"

	"github.com/longkey1/aichat/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Show version information: version number, git commit, build time and Go version.

With --verbose, the AI service and delivery mode the client is configured for
are printed as well.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		short, _ := cmd.Flags().GetBool("short")
		writeVersion(cmd.OutOrStdout(), short, verbose)
		return nil
	},
}

func writeVersion(w io.Writer, short, detailed bool) {
	if short {
		fmt.Fprintln(w, version.Short())
		return
	}

	fmt.Fprintln(w, version.Info())
	if !detailed {
		return
	}

	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = "(none)"
	}
	fmt.Fprintf(w, "Service: %s\n", viper.GetString("base_url"))
	fmt.Fprintf(w, "Mode: %s\n", viper.GetString("mode"))
	fmt.Fprintf(w, "Config: %s\n", configFile)
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().BoolP("short", "s", false, "Show only version number")
}
