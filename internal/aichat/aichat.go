// Package aichat provides the core types shared by the chat client.
// This package defines the delivery Mode that selects how a message is sent
// to the AI service and the Message rendered in the conversation.
package aichat

import (
	"fmt"
	"strings"
)

// Mode selects the transport used to deliver a message.
type Mode string

const (
	// ModeNormal issues one request and renders the complete reply at once.
	ModeNormal Mode = "normal"
	// ModeStream reads a chunked response body and renders it incrementally.
	ModeStream Mode = "stream"
	// ModeSSE reads a text/event-stream response and renders each message event.
	ModeSSE Mode = "sse"
)

// DefaultMode is used when no mode is configured.
const DefaultMode = ModeNormal

// Modes returns all supported modes in the order they are offered to the user.
func Modes() []Mode {
	return []Mode{ModeNormal, ModeStream, ModeSSE}
}

// Incremental reports whether the mode renders the reply chunk by chunk.
func (m Mode) Incremental() bool {
	return m == ModeStream || m == ModeSSE
}

func (m Mode) String() string {
	return string(m)
}

// ParseMode parses a mode name (case-insensitive).
//
// Example:
//
//	mode, err := ParseMode("SSE")
//	// mode = ModeSSE
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, m := range Modes() {
		if string(m) == name {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid mode: %q (expected one of: normal, stream, sse)", s)
}

// IsBlank reports whether the text is empty or whitespace only.
// Blank messages are never sent.
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
