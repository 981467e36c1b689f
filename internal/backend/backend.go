// Package backend provides the terminal abstraction event sources are built on.
//
// A Backend delivers raw terminal input through PollEvent and accepts a
// minimal amount of drawing. Terminal implements it with tcell; NullBackend is
// an in-memory implementation for tests and headless runs.
package backend

import (
	"errors"
	"time"
)

var (
	// ErrClosed is returned when posting to a backend that was shut down.
	ErrClosed = errors.New("backend closed")

	// ErrQueueFull is returned when a posted event cannot be queued.
	ErrQueueFull = errors.New("event queue full")

	// ErrUnsupportedEvent is returned when posting an event type the backend
	// cannot synthesize.
	ErrUnsupportedEvent = errors.New("unsupported event type")
)

// EventType identifies the type of terminal event.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventMouse
	EventResize
	EventPaste
	EventFocus
)

// String returns the event type name.
func (t EventType) String() string {
	switch t {
	case EventKey:
		return "key"
	case EventMouse:
		return "mouse"
	case EventResize:
		return "resize"
	case EventPaste:
		return "paste"
	case EventFocus:
		return "focus"
	default:
		return "none"
	}
}

// Event represents a terminal event.
//
// Backends fill in the fields for their event type. Event sources reuse the
// same struct for the named raw events they emit and fill in the derived
// fields (Text, Data, Button, DeltaX, DeltaY).
type Event struct {
	Type EventType
	Time time.Time

	// Key event fields
	Key  Key
	Rune rune
	Mod  ModMask

	// Mouse event fields
	X, Y    int
	Buttons ButtonMask

	// Button is the button whose state changed (mousedown, mouseup, click).
	Button ButtonMask

	// DeltaX and DeltaY are wheel steps; positive is right and down.
	DeltaX, DeltaY int

	// Resize event fields
	Width, Height int

	// Paste event fields. PasteStart distinguishes the bracket opening a
	// paste from the one closing it.
	PasteStart bool

	// Focus event fields
	Focused bool

	// Text is the pasted text for paste events.
	Text string

	// Data is the clipboard payload of copy, cut and paste events.
	Data *ClipboardData
}

// Backend defines the interface for terminal backends.
type Backend interface {
	// Init initializes the backend for use.
	// Must be called before any other methods.
	Init() error

	// Shutdown releases backend resources and restores terminal state.
	// A PollEvent blocked in another goroutine returns false.
	Shutdown()

	// Size returns the current terminal dimensions.
	Size() (width, height int)

	// PollEvent waits for and returns the next terminal event.
	// It returns false once the backend has been shut down.
	PollEvent() (Event, bool)

	// PostEvent posts a synthetic event to the event queue.
	PostEvent(ev Event) error

	// Clear clears the entire screen.
	Clear()

	// DrawText draws text starting at the given cell. Text outside the
	// screen is clipped.
	DrawText(x, y int, text string)

	// Show synchronizes drawing with the actual display.
	Show()

	// EnableMouse enables mouse event reporting.
	EnableMouse()

	// EnablePaste enables bracketed paste mode.
	EnablePaste()
}
