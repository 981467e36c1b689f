package events

import (
	"time"

	"github.com/dshills/fanout/internal/backend"
)

// KeyEvent is the shared shape of key down and key up.
type KeyEvent struct {
	// Key is the key; KeyRune means Rune holds the character.
	Key  backend.Key
	Rune rune
	Mod  backend.ModMask

	// Time is when the terminal reported the key.
	Time time.Time
}

// Name returns a readable key name such as "a", "enter" or "ctrl+c".
func (e KeyEvent) Name() string {
	var key string
	if e.Key == backend.KeyRune {
		key = string(e.Rune)
	} else {
		key = e.Key.String()
	}
	mod := e.Mod
	if e.Key.IsCtrlLetter() {
		mod &^= backend.ModCtrl
	}
	if m := mod.String(); m != "" {
		return m + "+" + key
	}
	return key
}

// KeyDownEvent is fired when a key is pressed.
type KeyDownEvent struct {
	KeyEvent
}

// KeyUpEvent is fired when a key is released.
type KeyUpEvent struct {
	KeyEvent
}

// NewKeyEvent converts a raw key event.
func NewKeyEvent(raw backend.Event) KeyEvent {
	return KeyEvent{Key: raw.Key, Rune: raw.Rune, Mod: raw.Mod, Time: raw.Time}
}

// PointerEvent is the shared shape of pointer payloads.
type PointerEvent struct {
	// X and Y are the pointer position in the coordinates of the source
	// that reported it.
	X, Y int

	// Buttons are the buttons held at the time of the event.
	Buttons backend.ButtonMask
	Mod     backend.ModMask
	Time    time.Time
}

// NewPointerEvent converts a raw pointer event.
func NewPointerEvent(raw backend.Event) PointerEvent {
	return PointerEvent{X: raw.X, Y: raw.Y, Buttons: raw.Buttons, Mod: raw.Mod, Time: raw.Time}
}

// MouseClickEvent is fired when a button is pressed and released.
type MouseClickEvent struct {
	PointerEvent

	// Button is the button that was clicked.
	Button backend.ButtonMask
}

// MouseMoveEvent is fired when the pointer changes position.
type MouseMoveEvent struct {
	PointerEvent
}

// WheelEvent is fired when the wheel scrolls.
type WheelEvent struct {
	PointerEvent

	// DeltaX and DeltaY are scroll steps; positive is right and down.
	DeltaX, DeltaY int
}
