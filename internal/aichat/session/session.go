package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/longkey1/aichat/internal/aichat"
)

// WelcomeText is the assistant greeting shown on a fresh or cleared session
const WelcomeText = "Hello! I'm your AI assistant. How can I help you today?"

// Session represents a conversation and the delivery settings it was held with.
// It is passed explicitly to the delivery adapter instead of living in global state.
type Session struct {
	ID        string           `json:"id"`       // UUID v4 (e.g., "550e8400-e29b-41d4-a716-446655440000")
	Name      string           `json:"name"`     // Optional session name (empty by default)
	Mode      aichat.Mode      `json:"mode"`     // Delivery mode currently selected
	BaseURL   string           `json:"base_url"` // AI service the session talks to
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Messages  []aichat.Message `json:"messages"`
}

// NewSession creates a new session using the given delivery mode
func NewSession(mode aichat.Mode) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.New().String(),
		Mode:      mode,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  []aichat.Message{},
	}
}

// AddMessage appends an already rendered message to the session
func (s *Session) AddMessage(msg aichat.Message) {
	s.Messages = append(s.Messages, msg)
	s.UpdatedAt = time.Now()
}

// SetMode switches the delivery mode used for following sends
func (s *Session) SetMode(mode aichat.Mode) {
	s.Mode = mode
	s.UpdatedAt = time.Now()
}

// Clear drops the conversation history
func (s *Session) Clear() {
	s.Messages = []aichat.Message{}
	s.UpdatedAt = time.Now()
}

// GetShortID returns the shortened session ID (first 8 characters)
func (s *Session) GetShortID() string {
	if len(s.ID) >= 8 {
		return s.ID[:8]
	}
	return s.ID
}

// GetDisplayName returns the display name for the session
// If name is set, returns the name. Otherwise, returns the short ID.
func (s *Session) GetDisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.GetShortID()
}

// MessageCount returns the number of messages in the session
func (s *Session) MessageCount() int {
	return len(s.Messages)
}
