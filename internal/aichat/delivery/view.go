package delivery

import "github.com/longkey1/aichat/internal/aichat"

// View is the surface a send renders into.
// The adapter drives it from the goroutine that called Send.
type View interface {
	// SetInputEnabled locks or unlocks user input.
	SetInputEnabled(enabled bool)

	// ShowTyping and HideTyping toggle the "assistant is typing" indicator.
	ShowTyping()
	HideTyping()

	// AddMessage renders a message and returns its element so that
	// incremental modes can keep writing into it.
	AddMessage(msg aichat.Message) Slot
}

// Slot is one rendered message element.
type Slot interface {
	// Append adds a chunk after the text already shown.
	Append(chunk string)

	// Fail puts the element into an error state. An empty element shows
	// fallback as its text; an element that already holds text keeps it.
	Fail(fallback string)
}
