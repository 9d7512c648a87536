/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/longkey1/aichat/internal/aichat"
	"github.com/longkey1/aichat/internal/aichat/config"
	"github.com/longkey1/aichat/internal/aichat/delivery"
	"github.com/longkey1/aichat/internal/aichat/prompt"
	"github.com/longkey1/aichat/internal/aichat/session"
	"github.com/longkey1/aichat/internal/aichat/terminal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	chatMode    string
	useEditor   bool
	sessionID   string
	saveSession bool
	sessionName string
	promptName  string
	promptArgs  []string
)

// chatRequest is one invocation of the chat command
type chatRequest struct {
	message    string
	mode       string
	modeSet    bool
	sessionID  string
	save       bool
	name       string
	promptName string
	promptArgs []string
}

func (r chatRequest) validate() error {
	if r.sessionID != "" && r.save {
		return fmt.Errorf("cannot specify both --session and --save")
	}
	if len(r.promptArgs) > 0 && r.promptName == "" {
		return fmt.Errorf("--arg requires --prompt")
	}
	return nil
}

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Send a message to the AI service",
	Long: `Send a message to the AI service and print the reply.

For interactive multi-turn conversations, use 'aichat sessions start' instead.

If no message is provided as an argument, it reads from stdin.
If --editor flag is set, it opens the default editor (from EDITOR environment variable) to compose the message.
With --prompt, the message is rendered through a prompt template first (see 'aichat prompt').

Delivery modes:
  normal  one request, the reply is printed once it is complete (/ai/chat)
  stream  the reply is printed chunk by chunk as it arrives (/ai/stream)
  sse     the reply is printed event by event from an event stream (/ai/sseChat)

A blank message is ignored: nothing is sent and nothing is printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := chatRequest{
			mode:       chatMode,
			modeSet:    cmd.Flags().Changed("mode"),
			sessionID:  sessionID,
			save:       saveSession,
			name:       sessionName,
			promptName: promptName,
			promptArgs: promptArgs,
		}
		if err := req.validate(); err != nil {
			return err
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		switch {
		case useEditor:
			req.message, err = getMessageFromEditor()
			if err != nil {
				return fmt.Errorf("getting message from editor: %w", err)
			}
		case len(args) > 0:
			req.message = strings.Join(args, " ")
		default:
			input, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading from stdin: %w", err)
			}
			req.message = string(input)
		}

		ctx, stop := interruptContext(cmd.Context())
		defer stop()

		return runChat(ctx, cfg, req, cmd.OutOrStdout(), statusWriter(), cmd.ErrOrStderr())
	},
}

// runChat sends one message and prints the reply to out. The typing indicator
// goes to status (nil disables it) and notices to notice.
func runChat(ctx context.Context, cfg *config.Config, req chatRequest, out, status, notice io.Writer) error {
	if err := req.validate(); err != nil {
		return err
	}

	if aichat.IsBlank(req.message) {
		if verbose {
			fmt.Fprintln(notice, "Empty message, nothing sent.")
		}
		return nil
	}

	mode, err := resolveMode(req.mode, req.modeSet, cfg)
	if err != nil {
		return err
	}

	text := strings.TrimSpace(req.message)
	if req.promptName != "" {
		text, err = prompt.NewLibrary(cfg.PromptDirs).Format(req.promptName, text, req.promptArgs)
		if err != nil {
			return fmt.Errorf("formatting prompt: %w", err)
		}
	}

	log := newLogger(cfg)
	defer log.Sync()

	store, err := openStore(cfg, log)
	if err != nil {
		return fmt.Errorf("opening session store: %w", err)
	}

	var sess *session.Session
	if req.sessionID != "" {
		if sess, err = findSession(store, req.sessionID); err != nil {
			return err
		}
		if req.modeSet {
			sess.SetMode(mode)
		}
		if verbose {
			fmt.Fprintf(notice, "Continuing session: %s\n", sess.GetShortID())
		}
	} else {
		sess = session.NewSession(mode)
		sess.Name = req.name
	}

	adapter, err := newAdapter(cfg, log)
	if err != nil {
		return fmt.Errorf("creating adapter: %w", err)
	}
	sess.BaseURL = adapter.BaseURL()

	log.Debug("Sending message",
		zap.String("session", sess.GetShortID()),
		zap.String("mode", string(sess.Mode)),
		zap.String("base_url", sess.BaseURL),
		zap.String("prompt", req.promptName),
	)

	view := terminal.NewView(out, status, terminal.WithUserEcho(false))
	result, err := adapter.Send(ctx, sess, view, text)
	if err != nil {
		return fmt.Errorf("sending message: %w", err)
	}

	if req.sessionID != "" || req.save {
		if err := store.Save(sess); err != nil {
			return fmt.Errorf("saving session: %w", err)
		}
		if req.save {
			fmt.Fprintf(notice, "\nSession saved: %s\n", sess.GetShortID())
			fmt.Fprintf(notice, "Continue with:\n  aichat chat -s %s \"your message\"\n", sess.GetShortID())
		}
	}

	if result.State == delivery.StateFailed {
		return fmt.Errorf("delivery failed: %w", result.Err)
	}
	return nil
}

// getMessageFromEditor opens the default editor and returns the edited message
func getMessageFromEditor() (string, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		return "", fmt.Errorf("EDITOR environment variable is not set")
	}

	tmpFile, err := os.CreateTemp("", "aichat-*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %v", err)
	}
	tmpFile.Close()
	defer os.Remove(tmpFile.Name())

	cmd := exec.Command(editor, tmpFile.Name())
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to open editor: %v", err)
	}

	content, err := os.ReadFile(tmpFile.Name())
	if err != nil {
		return "", fmt.Errorf("failed to read edited content: %v", err)
	}

	return strings.TrimSpace(string(content)), nil
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVarP(&chatMode, "mode", "m", "", "Delivery mode: normal, stream or sse (default from config)")
	chatCmd.Flags().BoolVarP(&useEditor, "editor", "e", false, "Use default editor (from EDITOR environment variable) to compose message")

	// Session flags
	chatCmd.Flags().StringVarP(&sessionID, "session", "s", "", "Continue a saved session (short or full UUID, or 'latest')")
	chatCmd.Flags().BoolVar(&saveSession, "save", false, "Save this exchange as a new session")
	chatCmd.Flags().StringVar(&sessionName, "session-name", "", "Name for the new session (optional)")

	// Prompt flags
	chatCmd.Flags().StringVarP(&promptName, "prompt", "p", "", "Prompt template to render the message with (see 'aichat prompt')")
	chatCmd.Flags().StringArrayVarP(&promptArgs, "arg", "a", nil, "Prompt template argument in key:value form (repeatable)")
}
