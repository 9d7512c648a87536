// Package terminal renders a conversation on a text terminal.
package terminal

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/longkey1/aichat/internal/aichat"
	"github.com/longkey1/aichat/internal/aichat/delivery"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// Styles used for the transcript
type Styles struct {
	Time      lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
	Error     lipgloss.Style
}

// NewStyles builds the default styles for the given renderer
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Time:      r.NewStyle().Faint(true),
		User:      r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Assistant: r.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		Error:     r.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

// View writes the transcript to out and the typing indicator to status.
// It implements delivery.View.
type View struct {
	mu           sync.Mutex
	out          io.Writer
	status       io.Writer
	styles       Styles
	echoUser     bool
	inputEnabled bool
	open         *slot
	spinner      chan struct{}
	spinnerDone  sync.WaitGroup
}

// Option configures a View
type Option func(*View)

// WithUserEcho controls whether user messages are printed.
// Interactive prompts already show what the user typed.
func WithUserEcho(enabled bool) Option {
	return func(v *View) {
		v.echoUser = enabled
	}
}

// WithStyles replaces the default styles
func WithStyles(styles Styles) Option {
	return func(v *View) {
		v.styles = styles
	}
}

// NewView creates a view. A nil status writer disables the typing indicator.
func NewView(out, status io.Writer, opts ...Option) *View {
	v := &View{
		out:          out,
		status:       status,
		styles:       NewStyles(lipgloss.NewRenderer(out)),
		echoUser:     true,
		inputEnabled: true,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// EndLine terminates the element currently open for streaming
func (v *View) EndLine() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closeOpenLocked()
}

// InputEnabled reports whether the user may type the next message
func (v *View) InputEnabled() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.inputEnabled
}

// SetInputEnabled locks or unlocks input. Unlocking also ends the line of the
// element being streamed, if any.
func (v *View) SetInputEnabled(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.inputEnabled = enabled
	if enabled {
		v.closeOpenLocked()
	}
}

// ShowTyping starts the spinner on the status writer
func (v *View) ShowTyping() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.status == nil || v.spinner != nil {
		return
	}

	stop := make(chan struct{})
	v.spinner = stop
	v.spinnerDone.Add(1)
	go func() {
		defer v.spinnerDone.Done()
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()
		i := 0
		for {
			fmt.Fprintf(v.status, "\r%s Waiting for response...", spinnerFrames[i])
			i = (i + 1) % len(spinnerFrames)
			select {
			case <-stop:
				// Clear the spinner line
				fmt.Fprint(v.status, "\r\033[K")
				return
			case <-ticker.C:
			}
		}
	}()
}

// HideTyping stops the spinner and waits until its line is cleared
func (v *View) HideTyping() {
	v.mu.Lock()
	stop := v.spinner
	v.spinner = nil
	v.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	v.spinnerDone.Wait()
}

// AddMessage prints a message header and its text. Assistant messages stay
// open so that streamed chunks continue on the same line.
func (v *View) AddMessage(msg aichat.Message) delivery.Slot {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closeOpenLocked()

	if msg.Sender == aichat.SenderUser && !v.echoUser {
		return &slot{view: v, text: msg.Text, closed: true}
	}

	label := v.styles.User.Render(msg.Sender.Label() + ">")
	if msg.Sender == aichat.SenderAssistant {
		label = v.styles.Assistant.Render(msg.Sender.Label() + ">")
	}
	stamp := v.styles.Time.Render("[" + msg.Timestamp.Format("15:04") + "]")
	fmt.Fprintf(v.out, "%s %s %s", stamp, label, msg.Text)

	s := &slot{view: v, text: msg.Text}
	if msg.Sender == aichat.SenderAssistant {
		v.open = s
	} else {
		fmt.Fprintln(v.out)
		s.closed = true
	}
	return s
}

func (v *View) closeOpenLocked() {
	if v.open == nil {
		return
	}
	if !v.open.closed {
		fmt.Fprintln(v.out)
		v.open.closed = true
	}
	v.open = nil
}

// slot is one printed message
type slot struct {
	view   *View
	text   string
	failed bool
	closed bool
}

// Append prints the chunk right after the text already shown
func (s *slot) Append(chunk string) {
	s.view.mu.Lock()
	defer s.view.mu.Unlock()
	if s.closed {
		return
	}
	s.text += chunk
	fmt.Fprint(s.view.out, chunk)
}

// Fail marks the element as errored
func (s *slot) Fail(fallback string) {
	s.view.mu.Lock()
	defer s.view.mu.Unlock()
	if s.failed {
		return
	}
	s.failed = true

	if s.text == "" {
		s.text = fallback
		if !s.closed {
			fmt.Fprint(s.view.out, s.view.styles.Error.Render(fallback))
		}
		return
	}
	if !s.closed {
		fmt.Fprintln(s.view.out)
		fmt.Fprint(s.view.out, s.view.styles.Error.Render("! "+fallback))
	}
}
