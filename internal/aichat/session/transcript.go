package session

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/longkey1/aichat/internal/aichat"
)

// TranscriptEntry is one message of an exported chat history
type TranscriptEntry struct {
	Type string `json:"type"` // "user" or "ai"
	Text string `json:"text"`
	Time string `json:"time"` // HH:MM local time
}

// TranscriptFileName returns the default export file name for the given day
func TranscriptFileName(t time.Time) string {
	return fmt.Sprintf("chat-history-%s.json", t.Format("2006-01-02"))
}

// WriteTranscript writes the session messages as an indented JSON chat history
func WriteTranscript(w io.Writer, sess *Session) error {
	entries := make([]TranscriptEntry, 0, len(sess.Messages))
	for _, msg := range sess.Messages {
		entryType := "user"
		if msg.Sender == aichat.SenderAssistant {
			entryType = "ai"
		}
		entries = append(entries, TranscriptEntry{
			Type: entryType,
			Text: msg.Text,
			Time: msg.Timestamp.Local().Format("15:04"),
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(entries); err != nil {
		return fmt.Errorf("failed to encode transcript: %w", err)
	}
	return nil
}
