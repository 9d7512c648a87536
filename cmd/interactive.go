package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/longkey1/aichat/internal/aichat"
	"github.com/longkey1/aichat/internal/aichat/delivery"
	"github.com/longkey1/aichat/internal/aichat/session"
	"github.com/longkey1/aichat/internal/aichat/terminal"
)

// interactive is a read-eval-print loop over one session
type interactive struct {
	sess    *session.Session
	adapter *delivery.Adapter
	view    *terminal.View
	in      io.Reader
	out     io.Writer // transcript
	prompt  io.Writer // prompt, help and notices
	save    func(*session.Session) error
	parent  context.Context
}

// run reads messages until /exit or end of input
func (r *interactive) run() error {
	if r.parent == nil {
		r.parent = context.Background()
	}

	fmt.Fprintf(r.prompt, "\n=== Interactive Session [%s] ===\n", r.sess.GetShortID())
	fmt.Fprintf(r.prompt, "Service: %s\n", r.adapter.BaseURL())
	fmt.Fprintf(r.prompt, "Mode: %s\n", r.sess.Mode)
	fmt.Fprintf(r.prompt, "Type '/help' for commands, '/exit' or 'Ctrl+D' to quit\n")
	fmt.Fprintf(r.prompt, "===================================\n\n")

	if r.sess.MessageCount() == 0 {
		r.welcome()
	} else {
		fmt.Fprintf(r.prompt, "Continuing conversation with %d messages.\n\n", r.sess.MessageCount())
	}

	scanner := bufio.NewScanner(r.in)
	for {
		fmt.Fprint(r.prompt, "You> ")

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("input error: %w", err)
			}
			fmt.Fprintln(r.prompt, "\nGoodbye!")
			return nil
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if r.command(input) {
				continue
			}
			return nil
		}

		r.sendMessage(input)
	}
}

// welcome greets the user. The greeting is part of the conversation so that
// exports start with it.
func (r *interactive) welcome() {
	msg := aichat.NewMessage(aichat.SenderAssistant, session.WelcomeText)
	r.view.AddMessage(msg)
	r.view.EndLine()
	r.sess.AddMessage(msg)
}

// sendMessage delivers one message and saves the session afterwards
func (r *interactive) sendMessage(input string) {
	ctx, stop := interruptContext(r.parent)
	defer stop()

	result, err := r.adapter.Send(ctx, r.sess, r.view, input)
	if err != nil {
		if !errors.Is(err, delivery.ErrEmptyMessage) {
			fmt.Fprintf(r.prompt, "Error: %v\n", err)
		}
		return
	}
	if result.Err != nil && verbose {
		fmt.Fprintf(r.prompt, "Delivery failed: %v\n", result.Err)
	}

	if r.save == nil {
		return
	}
	if err := r.save(r.sess); err != nil {
		fmt.Fprintf(r.prompt, "Warning: failed to save session: %v\n", err)
	}
}

// command processes a slash command.
// Returns true to continue the loop, false to exit
func (r *interactive) command(input string) bool {
	fields := strings.Fields(input)
	name := strings.ToLower(fields[0])
	arg := ""
	if len(fields) > 1 {
		arg = strings.Join(fields[1:], " ")
	}

	switch name {
	case "/help", "/h":
		fmt.Fprintln(r.prompt, "\nAvailable commands:")
		fmt.Fprintln(r.prompt, "  /help, /h          - Show this help message")
		fmt.Fprintln(r.prompt, "  /info, /i          - Show session information")
		fmt.Fprintln(r.prompt, "  /mode, /m <mode>   - Switch delivery mode (normal, stream, sse)")
		fmt.Fprintln(r.prompt, "  /clear, /c         - Clear the conversation")
		fmt.Fprintln(r.prompt, "  /export, /e [file] - Export the chat history as JSON")
		fmt.Fprintln(r.prompt, "  /exit, /quit       - Exit interactive mode")
		fmt.Fprintln(r.prompt, "  Ctrl+D             - Exit interactive mode")
		fmt.Fprintln(r.prompt, "")
		return true

	case "/info", "/i":
		fmt.Fprintln(r.prompt, "\nSession Information:")
		fmt.Fprintf(r.prompt, "  ID: %s\n", r.sess.GetShortID())
		fmt.Fprintf(r.prompt, "  Full ID: %s\n", r.sess.ID)
		if r.sess.Name != "" {
			fmt.Fprintf(r.prompt, "  Name: %s\n", r.sess.Name)
		}
		fmt.Fprintf(r.prompt, "  Mode: %s\n", r.sess.Mode)
		fmt.Fprintf(r.prompt, "  Service: %s\n", r.adapter.BaseURL())
		fmt.Fprintf(r.prompt, "  Messages: %d\n", r.sess.MessageCount())
		fmt.Fprintf(r.prompt, "  Created: %s\n", r.sess.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprintln(r.prompt, "")
		return true

	case "/mode", "/m":
		if arg == "" {
			fmt.Fprintf(r.prompt, "Current mode: %s (available: %s)\n", r.sess.Mode, modeList())
			return true
		}
		mode, err := aichat.ParseMode(arg)
		if err != nil {
			fmt.Fprintf(r.prompt, "Error: %v\n", err)
			return true
		}
		r.sess.SetMode(mode)
		fmt.Fprintf(r.prompt, "Switched to %s mode.\n", mode)
		return true

	case "/clear", "/c":
		r.sess.Clear()
		fmt.Fprint(r.out, "\033[H\033[2J")
		r.welcome()
		return true

	case "/export", "/e":
		path, err := exportTranscript(r.sess, arg)
		if err != nil {
			fmt.Fprintf(r.prompt, "Error: %v\n", err)
			return true
		}
		fmt.Fprintf(r.prompt, "Chat history exported to: %s\n", path)
		return true

	case "/exit", "/quit", "/q":
		fmt.Fprintln(r.prompt, "Goodbye!")
		return false

	default:
		fmt.Fprintf(r.prompt, "Unknown command: %s (type '/help' for available commands)\n", name)
		return true
	}
}

func modeList() string {
	names := make([]string, 0, len(aichat.Modes()))
	for _, m := range aichat.Modes() {
		names = append(names, string(m))
	}
	return strings.Join(names, ", ")
}
