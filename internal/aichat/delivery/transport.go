package delivery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strings"

	"github.com/longkey1/aichat/internal/aichat"
	"github.com/tmaxmax/go-sse"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	sseMessageEvent = "message"
	sseCloseEvent   = "close"

	// Read size for the chunked stream body
	streamBufferSize = 4096

	// Bytes of a non-2xx body kept for logging
	errorBodyLimit = 512
)

// ErrEmptyEventStream is yielded when the event stream ends before any message
var ErrEmptyEventStream = errors.New("event stream ended without a message")

// StatusError is returned when the AI service answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// endpoint builds the request URL for path with the message as the input query parameter
func (a *Adapter) endpoint(path, text string) string {
	if text == "" {
		return a.baseURL + path
	}
	query := url.Values{}
	query.Set("input", text)
	return a.baseURL + path + "?" + query.Encode()
}

// open issues a GET request and returns the response once headers arrived.
// The caller owns the body unless an error is returned.
func (a *Adapter) open(ctx context.Context, path, text, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.endpoint(path, text), nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", accept)
	if accept == "text/event-stream" {
		req.Header.Set("Cache-Control", "no-cache")
	}

	a.logger.Debug("Opening connection",
		zap.String("url", req.URL.String()),
		zap.String("accept", accept),
	)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	return resp, nil
}

// fetch performs a request/response exchange and returns the whole body as text
func (a *Adapter) fetch(ctx context.Context, path, text string) (string, error) {
	resp, err := a.open(ctx, path, text, "text/plain")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response: %w", err)
	}

	return strings.ToValidUTF8(string(body), "\uFFFD"), nil
}

// Chunks delivers text through an incremental transport and returns the reply
// as a finite, non-restartable sequence of text chunks in arrival order.
// The sequence ends at the end of the reply, on the first error (yielded with an
// empty chunk) or when the consumer stops iterating. Exactly one connection is
// opened per call and it is closed before the sequence ends.
func (a *Adapter) Chunks(ctx context.Context, mode aichat.Mode, text string) iter.Seq2[string, error] {
	switch mode {
	case aichat.ModeStream:
		return a.streamChunks(ctx, text)
	case aichat.ModeSSE:
		return a.sseChunks(ctx, text)
	default:
		return func(yield func(string, error) bool) {
			yield("", fmt.Errorf("mode %s does not deliver chunks", mode))
		}
	}
}

// streamChunks reads a chunked text body, decoding UTF-8 across read boundaries
func (a *Adapter) streamChunks(ctx context.Context, text string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		resp, err := a.open(ctx, a.paths.Stream, text, "text/plain")
		if err != nil {
			yield("", err)
			return
		}
		defer resp.Body.Close()

		// The decoder holds back a partial rune until its remaining bytes arrive
		// and replaces invalid sequences with U+FFFD.
		decoded := transform.NewReader(resp.Body, unicode.UTF8.NewDecoder())
		buf := make([]byte, streamBufferSize)
		for {
			n, err := decoded.Read(buf)
			if n > 0 {
				chunk := string(buf[:n])
				a.logger.Debug("Received chunk", zap.Int("bytes", n))
				if !yield(chunk, nil) {
					return
				}
			}
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield("", fmt.Errorf("error reading stream: %w", err))
				return
			}
		}
	}
}

// sseChunks reads a text/event-stream body and yields the data of every message event.
// A close event ends the sequence; there is no reconnect. A body that ends
// without a close event and without any message is a failure.
func (a *Adapter) sseChunks(ctx context.Context, text string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		resp, err := a.open(ctx, a.paths.SSE, text, "text/event-stream")
		if err != nil {
			yield("", err)
			return
		}
		defer resp.Body.Close()

		a.logger.Debug("Event stream opened")

		received := false
		for ev, err := range sse.Read(resp.Body, nil) {
			if err != nil {
				yield("", fmt.Errorf("error reading event stream: %w", err))
				return
			}

			switch ev.Type {
			case "", sseMessageEvent:
				a.logger.Debug("Received event", zap.String("event", ev.Data))
				received = true
				if !yield(ev.Data, nil) {
					return
				}
			case sseCloseEvent:
				a.logger.Debug("Event stream closed by server")
				return
			default:
				a.logger.Debug("Ignoring event", zap.String("type", ev.Type))
			}
		}

		if !received {
			yield("", ErrEmptyEventStream)
		}
	}
}

// Health queries the service health endpoint and returns its status text
func (a *Adapter) Health(ctx context.Context) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	status, err := a.fetch(ctx, a.paths.Health, "")
	if err != nil {
		return "", fmt.Errorf("health check failed: %w", err)
	}
	return status, nil
}
