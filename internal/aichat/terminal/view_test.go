package terminal

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/longkey1/aichat/internal/aichat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stamp = time.Date(2025, 3, 4, 9, 5, 0, 0, time.Local)

func TestViewRendersMessages(t *testing.T) {
	var out bytes.Buffer
	view := NewView(&out, nil)

	view.AddMessage(aichat.Message{Text: "hello", Sender: aichat.SenderUser, Timestamp: stamp})
	view.AddMessage(aichat.Message{Text: "hi", Sender: aichat.SenderAssistant, Timestamp: stamp})
	view.SetInputEnabled(true)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "[09:05]")
	assert.Contains(t, lines[0], "You> hello")
	assert.Contains(t, lines[1], "Assistant> hi")
}

func TestViewStreamsChunksOnOneLine(t *testing.T) {
	var out bytes.Buffer
	view := NewView(&out, nil)

	view.SetInputEnabled(false)
	assert.False(t, view.InputEnabled())

	slot := view.AddMessage(aichat.Message{Sender: aichat.SenderAssistant, Timestamp: stamp})
	slot.Append("a")
	slot.Append("b")
	slot.Append("c")
	view.SetInputEnabled(true)
	assert.True(t, view.InputEnabled())

	assert.True(t, strings.HasSuffix(out.String(), "Assistant> abc\n"), "got %q", out.String())

	// Chunks after the element was closed are dropped
	slot.Append("late")
	assert.NotContains(t, out.String(), "late")
}

func TestViewFailEmptySlotShowsFallback(t *testing.T) {
	var out bytes.Buffer
	view := NewView(&out, nil)

	slot := view.AddMessage(aichat.Message{Sender: aichat.SenderAssistant, Timestamp: stamp})
	slot.Fail("connection failed")
	view.SetInputEnabled(true)

	assert.True(t, strings.HasSuffix(out.String(), "Assistant> connection failed\n"), "got %q", out.String())
}

func TestViewFailKeepsPartialText(t *testing.T) {
	var out bytes.Buffer
	view := NewView(&out, nil)

	slot := view.AddMessage(aichat.Message{Sender: aichat.SenderAssistant, Timestamp: stamp})
	slot.Append("partial")
	slot.Fail("connection failed")
	slot.Fail("connection failed")
	view.SetInputEnabled(true)

	got := out.String()
	assert.Contains(t, got, "Assistant> partial\n")
	assert.Equal(t, 1, strings.Count(got, "! connection failed"))
}

func TestViewTypingIndicator(t *testing.T) {
	var out, status bytes.Buffer
	view := NewView(&out, &status)

	view.ShowTyping()
	view.ShowTyping()
	time.Sleep(2 * spinnerInterval)
	view.HideTyping()
	view.HideTyping()

	got := status.String()
	assert.Contains(t, got, "Waiting for response...")
	assert.True(t, strings.HasSuffix(got, "\r\033[K"), "spinner line must be cleared")
	assert.Empty(t, out.String())
}

func TestViewTypingIndicatorDisabled(t *testing.T) {
	var out bytes.Buffer
	view := NewView(&out, nil)

	view.ShowTyping()
	view.HideTyping()
	assert.Empty(t, out.String())
}

func TestViewWithoutUserEcho(t *testing.T) {
	var out bytes.Buffer
	view := NewView(&out, nil, WithUserEcho(false))

	slot := view.AddMessage(aichat.Message{Text: "hello", Sender: aichat.SenderUser, Timestamp: stamp})
	slot.Append(" more")
	view.AddMessage(aichat.Message{Text: "hi", Sender: aichat.SenderAssistant, Timestamp: stamp})
	view.EndLine()
	view.EndLine()

	assert.Equal(t, "[09:05] Assistant> hi\n", out.String())
}
