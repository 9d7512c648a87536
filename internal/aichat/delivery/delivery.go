// Package delivery sends a user message to the AI service and renders the
// assistant reply. Three modes are supported: normal (one request, one
// complete reply), stream (a chunked text body rendered as it arrives) and
// sse (a text/event-stream whose message events are rendered as they arrive).
//
// Example usage:
//
//	adapter, err := delivery.New(delivery.Options{BaseURL: "http://localhost:8080"}, logger)
//	sess := session.NewSession(aichat.ModeStream)
//	result, err := adapter.Send(ctx, sess, view, "hello")
package delivery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/longkey1/aichat/internal/aichat"
	"github.com/longkey1/aichat/internal/aichat/session"
	"github.com/qmuntal/stateless"
	"go.uber.org/zap"
)

const (
	// FallbackError is rendered in the assistant slot when a send fails.
	FallbackError = "Sorry, something went wrong while sending your message. Please try again later."
	// FallbackSSEError is rendered when the event stream fails before any text arrived.
	FallbackSSEError = "The event stream connection failed. Please try again later."
)

const (
	DefaultChatPath   = "/ai/chat"
	DefaultStreamPath = "/ai/stream"
	DefaultSSEPath    = "/ai/sseChat"
	DefaultHealthPath = "/ai/health"
)

var (
	// ErrEmptyMessage is returned for blank input; nothing is sent or rendered.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrBusy is returned while another send is outstanding.
	ErrBusy = errors.New("another message is still being delivered")
)

// Paths holds the endpoint paths of the AI service, relative to the base URL
type Paths struct {
	Chat   string
	Stream string
	SSE    string
	Health string
}

// Options configures an Adapter
type Options struct {
	BaseURL string        // Root URL of the AI service
	Timeout time.Duration // Per-send timeout (0 = disabled)
	Paths   Paths         // Zero fields fall back to the Default*Path constants

	// HTTPClient overrides the client used for all requests.
	// It must not set http.Client.Timeout, which would cut long streams;
	// use Timeout instead.
	HTTPClient *http.Client
}

// Result describes how a send ended
type Result struct {
	State State  // StateDone or StateFailed once the send ran
	Text  string // Text shown in the assistant element
	Err   error  // Delivery failure, nil on StateDone
}

// Adapter delivers messages to the AI service.
// At most one send is outstanding at a time.
type Adapter struct {
	client  *http.Client
	baseURL string
	timeout time.Duration
	paths   Paths
	logger  *zap.Logger
	busy    atomic.Bool
}

// New creates an Adapter. A nil logger disables logging.
func New(opts Options, logger *zap.Logger) (*Adapter, error) {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if opts.Timeout < 0 {
		return nil, fmt.Errorf("timeout cannot be negative: %s", opts.Timeout)
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	paths := opts.Paths
	if paths.Chat == "" {
		paths.Chat = DefaultChatPath
	}
	if paths.Stream == "" {
		paths.Stream = DefaultStreamPath
	}
	if paths.SSE == "" {
		paths.SSE = DefaultSSEPath
	}
	if paths.Health == "" {
		paths.Health = DefaultHealthPath
	}

	return &Adapter{
		client:  client,
		baseURL: baseURL,
		timeout: opts.Timeout,
		paths:   paths,
		logger:  logger,
	}, nil
}

// BaseURL returns the root URL of the AI service
func (a *Adapter) BaseURL() string {
	return a.baseURL
}

// Busy reports whether a send is outstanding
func (a *Adapter) Busy() bool {
	return a.busy.Load()
}

// Send delivers text using the session's current mode.
//
// The returned error is only set when the send was rejected before anything
// happened (ErrEmptyMessage, ErrBusy, unknown mode). Delivery failures are
// already rendered in the view by the time Send returns and are reported in
// Result.Err.
func (a *Adapter) Send(ctx context.Context, sess *session.Session, view View, text string) (Result, error) {
	return a.send(ctx, sess, view, text, sess.Mode)
}

// SendNormal issues a single request and renders the complete reply once.
// On failure a single assistant message holding FallbackError is rendered. No retry.
func (a *Adapter) SendNormal(ctx context.Context, sess *session.Session, view View, text string) (Result, error) {
	return a.send(ctx, sess, view, text, aichat.ModeNormal)
}

// SendStream reads a chunked reply and appends every decoded chunk to one live
// assistant element in arrival order. A failure mid-stream puts that element
// into its error state. There is no cancellation other than ctx.
func (a *Adapter) SendStream(ctx context.Context, sess *session.Session, view View, text string) (Result, error) {
	return a.send(ctx, sess, view, text, aichat.ModeStream)
}

// SendSSE opens an event stream and appends the payload of every message event
// to one assistant element. It ends on a close event, the end of the stream or
// the first error, whichever comes first. It never reconnects.
func (a *Adapter) SendSSE(ctx context.Context, sess *session.Session, view View, text string) (Result, error) {
	return a.send(ctx, sess, view, text, aichat.ModeSSE)
}

func (a *Adapter) send(ctx context.Context, sess *session.Session, view View, text string, mode aichat.Mode) (Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{State: StateIdle}, ErrEmptyMessage
	}
	if _, err := aichat.ParseMode(string(mode)); err != nil {
		return Result{State: StateIdle}, err
	}
	if !a.busy.CompareAndSwap(false, true) {
		return Result{State: StateIdle}, ErrBusy
	}
	defer a.busy.Store(false)

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	op := &sendOp{
		adapter: a,
		sess:    sess,
		view:    view,
		logger:  a.logger.With(zap.String("session", sess.GetShortID()), zap.String("mode", string(mode))),
	}
	op.machine = newSendMachine(
		func() { view.SetInputEnabled(false) },
		func() {
			op.hideTyping()
			view.SetInputEnabled(true)
		},
	)

	op.fire(triggerSubmit)

	userMsg := aichat.NewMessage(aichat.SenderUser, text)
	view.AddMessage(userMsg)
	sess.AddMessage(userMsg)

	op.showTyping()

	switch mode {
	case aichat.ModeNormal:
		op.deliverNormal(ctx, text)
	default:
		op.deliverIncremental(ctx, mode, text)
	}

	return op.result, nil
}

// sendOp carries the state of one send
type sendOp struct {
	adapter *Adapter
	sess    *session.Session
	view    View
	logger  *zap.Logger
	machine *stateless.StateMachine
	typing  bool
	result  Result
}

func (op *sendOp) fire(t trigger) {
	if err := op.machine.Fire(t); err != nil {
		op.logger.Error("Invalid send state transition",
			zap.String("trigger", string(t)),
			zap.Error(err),
		)
	}
}

func (op *sendOp) state() State {
	return op.machine.MustState().(State)
}

func (op *sendOp) showTyping() {
	op.view.ShowTyping()
	op.typing = true
}

func (op *sendOp) hideTyping() {
	if op.typing {
		op.view.HideTyping()
		op.typing = false
	}
}

// deliverNormal fetches the complete reply and renders it at once
func (op *sendOp) deliverNormal(ctx context.Context, text string) {
	reply, err := op.adapter.fetch(ctx, op.adapter.paths.Chat, text)
	op.hideTyping()
	if err != nil {
		op.logger.Warn("Failed to send message", zap.Error(err))
		msg := aichat.NewMessage(aichat.SenderAssistant, FallbackError)
		op.view.AddMessage(msg)
		op.finish(triggerFail, msg, err)
		return
	}

	msg := aichat.NewMessage(aichat.SenderAssistant, reply)
	op.view.AddMessage(msg)
	op.finish(triggerComplete, msg, nil)
}

// deliverIncremental renders chunks into one assistant element as they arrive
func (op *sendOp) deliverIncremental(ctx context.Context, mode aichat.Mode, text string) {
	var (
		slot    Slot
		started time.Time
		reply   strings.Builder
		chunks  int
	)
	open := func() {
		op.hideTyping()
		started = time.Now()
		slot = op.view.AddMessage(aichat.NewMessage(aichat.SenderAssistant, ""))
		op.fire(triggerDeliver)
	}

	for chunk, err := range op.adapter.Chunks(ctx, mode, text) {
		if err != nil {
			op.logger.Warn("Delivery failed",
				zap.Int("chunks", chunks),
				zap.Error(err),
			)
			if slot == nil {
				open()
			}

			fallback := FallbackError
			if mode == aichat.ModeSSE {
				fallback = FallbackSSEError
			}
			slot.Fail(fallback)

			shown := reply.String()
			if shown == "" {
				shown = fallback
			}
			op.finish(triggerFail, aichat.NewMessage(aichat.SenderAssistant, shown), err)
			return
		}

		if slot == nil {
			open()
		}
		slot.Append(chunk)
		reply.WriteString(chunk)
		chunks++
	}

	// A reply without any chunk still gets its (empty) element
	if slot == nil {
		open()
	}

	op.logger.Debug("Delivery complete",
		zap.Int("chunks", chunks),
		zap.Int("length", reply.Len()),
		zap.Duration("elapsed", time.Since(started)),
	)
	op.finish(triggerComplete, aichat.NewMessage(aichat.SenderAssistant, reply.String()), nil)
}

// finish records the assistant message and moves to a terminal state
func (op *sendOp) finish(t trigger, msg aichat.Message, err error) {
	op.sess.AddMessage(msg)
	op.fire(t)
	op.result = Result{
		State: op.state(),
		Text:  msg.Text,
		Err:   err,
	}
}
