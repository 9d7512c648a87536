package aichat

import "time"

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message represents a single rendered message in a conversation
type Message struct {
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message stamped with the current time
func NewMessage(sender Sender, text string) Message {
	return Message{
		Text:      text,
		Sender:    sender,
		Timestamp: time.Now(),
	}
}

// Label returns the display label for the sender
func (s Sender) Label() string {
	if s == SenderAssistant {
		return "Assistant"
	}
	return "You"
}
