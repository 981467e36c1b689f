package events

import "github.com/dshills/fanout/internal/backend"

// CopyEvent is fired when the user asks to copy.
// Listeners place the copied text with Data.SetText.
type CopyEvent struct {
	Data *backend.ClipboardData
}

// CutEvent is fired when the user asks to cut.
// Listeners place the cut text with Data.SetText.
type CutEvent struct {
	Data *backend.ClipboardData
}

// PasteEvent is fired when text is pasted.
type PasteEvent struct {
	Text string
}

// NewPasteEvent converts a raw paste event. Bracketed paste delivers the
// text directly; a paste binding delivers the clipboard register in Data.
func NewPasteEvent(raw backend.Event) PasteEvent {
	if raw.Text == "" && raw.Data != nil {
		return PasteEvent{Text: raw.Data.Text()}
	}
	return PasteEvent{Text: raw.Text}
}
