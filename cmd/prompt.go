/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"

	"github.com/longkey1/aichat/internal/aichat/config"
	"github.com/longkey1/aichat/internal/aichat/prompt"
	"github.com/spf13/cobra"
)

var withDir bool

// promptCmd represents the prompt command
var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "List available prompt templates",
	Long: `List the prompt templates found in the configured prompt directories (prompt_dirs).

A prompt file is a TOML file with a system and a user part:

  system = "You are a {{role}}. Answer briefly."
  user = "{{input}}"

{{input}} is replaced by the message, other placeholders by --arg key:value.
The rendered text is sent as the message input.

Prompt names are paths relative to their directory without the extension:
a file at <prompt_dir>/review/go.toml is used with --prompt review/go.
When a name exists in several directories, the last directory wins.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return listPrompts(cmd.OutOrStdout(), prompt.NewLibrary(cfg.PromptDirs), withDir)
	},
}

func listPrompts(out io.Writer, lib *prompt.Library, showDir bool) error {
	entries, err := lib.List()
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No prompt templates found.")
		fmt.Fprintln(out, "Create .toml files in the following directories:")
		for _, dir := range lib.Dirs() {
			fmt.Fprintf(out, "  - %s\n", dir)
		}
		return nil
	}

	fmt.Fprintf(out, "Available prompt templates (%d found):\n\n", len(entries))
	for _, entry := range entries {
		if showDir {
			fmt.Fprintf(out, "  %s (from %s)\n", entry.Name, entry.Dir)
		} else {
			fmt.Fprintf(out, "  %s\n", entry.Name)
		}
	}
	fmt.Fprintln(out, "\nUse a prompt template with: aichat chat --prompt <name> [--arg key:value] [message]")
	return nil
}

func init() {
	rootCmd.AddCommand(promptCmd)
	promptCmd.Flags().BoolVar(&withDir, "with-dir", false, "Show the directory each prompt was found in")
}
