package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/longkey1/aichat/internal/aichat/config"
	"github.com/longkey1/aichat/internal/aichat/session"
	"github.com/longkey1/aichat/internal/aichat/terminal"
	"github.com/spf13/cobra"
)

var (
	startMode  string
	startName  string
	exportFile string
	assumeYes  bool
)

// sessionsCmd represents the sessions command
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage conversation sessions",
	Long: `Manage saved conversation sessions.

Sessions are referenced by a short ID (minimum 4 characters), a full UUID,
or "latest" for the most recently updated session.`,
}

// loadStore reads the configuration and opens the session store
func loadStore() (*config.Config, *session.Store, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	store, err := openStore(cfg, newLogger(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("opening session store: %w", err)
	}
	return cfg, store, nil
}

// findSession resolves a session reference and adds a hint when nothing matched
func findSession(store *session.Store, ref string) (*session.Session, error) {
	sess, err := store.Find(ref)
	if errors.Is(err, session.ErrNotFound) {
		return nil, fmt.Errorf("%w\n\nRun 'aichat sessions list' to see available sessions", err)
	}
	return sess, err
}

// confirm asks a yes/no question on the command's streams; --yes answers it
func confirm(cmd *cobra.Command, question string) bool {
	if assumeYes {
		return true
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", question)
	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// sessionsListCmd represents the sessions list command
var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all sessions",
	Long:  `List all saved sessions, most recently updated first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := loadStore()
		if err != nil {
			return err
		}

		sessions, err := store.List()
		if err != nil {
			return fmt.Errorf("listing sessions: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No sessions found.")
			fmt.Fprintln(out, "\nStart a new session with:\n  aichat sessions start")
			return nil
		}

		writeSessionTable(out, sessions)
		fmt.Fprintln(out, "\nUse 'aichat sessions show <id>' to view session details.")
		return nil
	},
}

func writeSessionTable(out io.Writer, sessions []session.Session) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODE\tUPDATED\tMESSAGES\tNAME")
	for _, sess := range sessions {
		name := sess.Name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			sess.GetShortID(),
			sess.Mode,
			sess.UpdatedAt.Format("2006-01-02 15:04"),
			sess.MessageCount(),
			name,
		)
	}
	w.Flush()
}

// sessionsShowCmd represents the sessions show command
var sessionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show session details and history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := loadStore()
		if err != nil {
			return err
		}
		sess, err := findSession(store, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Session: %s\n", sess.ID)
		if sess.Name != "" {
			fmt.Fprintf(out, "Name: %s\n", sess.Name)
		}
		fmt.Fprintf(out, "Mode: %s\n", sess.Mode)
		if sess.BaseURL != "" {
			fmt.Fprintf(out, "Service: %s\n", sess.BaseURL)
		}
		fmt.Fprintf(out, "Created: %s\n", sess.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "Updated: %s\n", sess.UpdatedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "Messages: %d\n\n", sess.MessageCount())

		if sess.MessageCount() == 0 {
			fmt.Fprintln(out, "No messages in this session.")
			return nil
		}

		view := terminal.NewView(out, nil)
		for _, msg := range sess.Messages {
			view.AddMessage(msg)
		}
		view.EndLine()

		fmt.Fprintf(out, "\nContinue this session with:\n  aichat sessions start %s\n", sess.GetShortID())
		return nil
	},
}

// sessionsDeleteCmd represents the sessions delete command
var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a session",
	Long: `Delete a saved session permanently.

Warning: This action cannot be undone.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := loadStore()
		if err != nil {
			return err
		}
		sess, err := findSession(store, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !confirm(cmd, fmt.Sprintf("Delete session %s (%d messages)?", sess.GetDisplayName(), sess.MessageCount())) {
			fmt.Fprintln(out, "Deletion cancelled.")
			return nil
		}

		if err := store.Delete(sess.ID); err != nil {
			return fmt.Errorf("deleting session: %w", err)
		}
		fmt.Fprintf(out, "Session %s deleted.\n", sess.GetShortID())
		return nil
	},
}

// sessionsRenameCmd represents the sessions rename command
var sessionsRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := loadStore()
		if err != nil {
			return err
		}
		sess, err := findSession(store, args[0])
		if err != nil {
			return err
		}

		sess.Name = strings.TrimSpace(args[1])
		if err := store.Save(sess); err != nil {
			return fmt.Errorf("saving session: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Session %s renamed to %q.\n", sess.GetShortID(), sess.Name)
		return nil
	},
}

// sessionsExportCmd represents the sessions export command
var sessionsExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a session as a JSON chat history",
	Long: `Export the messages of a session as a JSON chat history:

  [{"type": "user", "text": "...", "time": "09:05"}, {"type": "ai", ...}]

The file defaults to chat-history-YYYY-MM-DD.json in the current directory.
Use --output - to write to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := loadStore()
		if err != nil {
			return err
		}
		sess, err := findSession(store, args[0])
		if err != nil {
			return err
		}

		if exportFile == "-" {
			return session.WriteTranscript(cmd.OutOrStdout(), sess)
		}

		path, err := exportTranscript(sess, exportFile)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Chat history exported to: %s\n", path)
		return nil
	},
}

// exportTranscript writes the transcript of sess to path, or to the default
// file name in the current directory when path is empty
func exportTranscript(sess *session.Session, path string) (string, error) {
	if path == "" {
		path = session.TranscriptFileName(time.Now())
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}

	if err := session.WriteTranscript(f, sess); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

// sessionsClearCmd represents the sessions clear command
var sessionsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete old sessions",
	Long: `Delete old sessions permanently.

By default, deletes sessions created more than history_retention_days days ago.
Use --before to pick another date, or --all to delete every session.

Examples:
  aichat sessions clear                      # Apply the retention period
  aichat sessions clear --before 2024-01-01  # Sessions created before 2024-01-01
  aichat sessions clear --before 2024-12     # Sessions created before 2024-12-01
  aichat sessions clear --all                # All sessions`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, store, err := loadStore()
		if err != nil {
			return err
		}

		before, _ := cmd.Flags().GetString("before")
		all, _ := cmd.Flags().GetBool("all")

		var cutoff time.Time
		switch {
		case all:
		case before != "":
			if cutoff, err = parseDate(before); err != nil {
				return err
			}
		default:
			cutoff = time.Now().AddDate(0, 0, -cfg.HistoryRetentionDays)
		}

		sessions, err := store.List()
		if err != nil {
			return fmt.Errorf("listing sessions: %w", err)
		}

		out := cmd.OutOrStdout()
		targets := selectSessionsToDelete(sessions, all, cutoff)
		if len(targets) == 0 {
			fmt.Fprintln(out, "No sessions to delete.")
			return nil
		}

		question := fmt.Sprintf("Delete all %d sessions?", len(targets))
		if !all {
			question = fmt.Sprintf("Delete %d sessions created before %s?", len(targets), cutoff.Format("2006-01-02"))
		}
		if !confirm(cmd, question) {
			fmt.Fprintln(out, "Deletion cancelled.")
			return nil
		}

		var errs []error
		for _, sess := range targets {
			if err := store.Delete(sess.ID); err != nil {
				errs = append(errs, fmt.Errorf("session %s: %w", sess.GetShortID(), err))
			}
		}
		fmt.Fprintf(out, "Deleted %d of %d sessions.\n", len(targets)-len(errs), len(targets))
		return errors.Join(errs...)
	},
}

// selectSessionsToDelete returns every session when all is set, otherwise the
// sessions created before cutoff
func selectSessionsToDelete(sessions []session.Session, all bool, cutoff time.Time) []session.Session {
	if all {
		return sessions
	}
	var selected []session.Session
	for _, sess := range sessions {
		if sess.CreatedAt.Before(cutoff) {
			selected = append(selected, sess)
		}
	}
	return selected
}

// parseDate accepts YYYY-MM-DD, YYYY-MM or YYYY; a partial date means its first day
func parseDate(value string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD, YYYY-MM or YYYY)", value)
}

// sessionsStartCmd represents the sessions start command
var sessionsStartCmd = &cobra.Command{
	Use:   "start [session-id]",
	Short: "Start an interactive session",
	Long: `Start an interactive chat session, or continue a saved one.

The session is saved after every message.

Examples:
  aichat sessions start              # New session
  aichat sessions start --mode sse   # New session delivering replies over SSE
  aichat sessions start latest       # Continue the most recent session`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, store, err := loadStore()
		if err != nil {
			return err
		}

		mode, err := resolveMode(startMode, cmd.Flags().Changed("mode"), cfg)
		if err != nil {
			return err
		}

		var sess *session.Session
		if len(args) > 0 {
			if sess, err = findSession(store, args[0]); err != nil {
				return err
			}
			if cmd.Flags().Changed("mode") {
				sess.SetMode(mode)
			}
		} else {
			sess = session.NewSession(mode)
			sess.Name = startName
		}

		log := newLogger(cfg)
		defer log.Sync()

		adapter, err := newAdapter(cfg, log)
		if err != nil {
			return fmt.Errorf("creating adapter: %w", err)
		}
		sess.BaseURL = adapter.BaseURL()

		repl := &interactive{
			sess:    sess,
			adapter: adapter,
			view:    terminal.NewView(os.Stdout, statusWriter(), terminal.WithUserEcho(false)),
			in:      os.Stdin,
			out:     os.Stdout,
			prompt:  os.Stderr,
			save:    store.Save,
			parent:  cmd.Context(),
		}
		return repl.run()
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(
		sessionsListCmd,
		sessionsShowCmd,
		sessionsDeleteCmd,
		sessionsRenameCmd,
		sessionsExportCmd,
		sessionsClearCmd,
		sessionsStartCmd,
	)

	sessionsStartCmd.Flags().StringVarP(&startMode, "mode", "m", "", "Delivery mode: normal, stream or sse (default from config)")
	sessionsStartCmd.Flags().StringVar(&startName, "name", "", "Name for the new session")

	sessionsExportCmd.Flags().StringVarP(&exportFile, "output", "o", "", "Export file (default chat-history-YYYY-MM-DD.json, '-' for stdout)")

	sessionsDeleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
	sessionsClearCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
	sessionsClearCmd.Flags().String("before", "", "Delete sessions created before this date (YYYY-MM-DD, YYYY-MM or YYYY)")
	sessionsClearCmd.Flags().Bool("all", false, "Delete all sessions regardless of the retention period")
}
