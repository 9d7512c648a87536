package session

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/longkey1/aichat/internal/aichat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTranscript(t *testing.T) {
	sess := NewSession(aichat.ModeNormal)
	stamp := time.Date(2025, 3, 4, 9, 5, 0, 0, time.Local)
	sess.AddMessage(aichat.Message{Text: "hello", Sender: aichat.SenderUser, Timestamp: stamp})
	sess.AddMessage(aichat.Message{Text: "hi", Sender: aichat.SenderAssistant, Timestamp: stamp})

	var buf bytes.Buffer
	require.NoError(t, WriteTranscript(&buf, sess))

	var entries []TranscriptEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entries))
	assert.Equal(t, []TranscriptEntry{
		{Type: "user", Text: "hello", Time: "09:05"},
		{Type: "ai", Text: "hi", Time: "09:05"},
	}, entries)
}

func TestTranscriptFileName(t *testing.T) {
	day := time.Date(2025, 12, 1, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "chat-history-2025-12-01.json", TranscriptFileName(day))
}
