package backend

import (
	"strings"
	"sync"
)

// Key represents a keyboard key.
type Key int

// Key constants for special keys.
const (
	KeyNone Key = iota
	KeyRune     // Regular character (use Rune field)
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyInsert
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyCtrlSpace
	KeyCtrlA
	KeyCtrlB
	KeyCtrlC
	KeyCtrlD
	KeyCtrlE
	KeyCtrlF
	KeyCtrlG
	KeyCtrlH
	KeyCtrlI
	KeyCtrlJ
	KeyCtrlK
	KeyCtrlL
	KeyCtrlM
	KeyCtrlN
	KeyCtrlO
	KeyCtrlP
	KeyCtrlQ
	KeyCtrlR
	KeyCtrlS
	KeyCtrlT
	KeyCtrlU
	KeyCtrlV
	KeyCtrlW
	KeyCtrlX
	KeyCtrlY
	KeyCtrlZ
)

var keyNames = map[Key]string{
	KeyEscape:    "esc",
	KeyEnter:     "enter",
	KeyTab:       "tab",
	KeyBackspace: "backspace",
	KeyDelete:    "delete",
	KeyInsert:    "insert",
	KeyHome:      "home",
	KeyEnd:       "end",
	KeyPageUp:    "pgup",
	KeyPageDown:  "pgdn",
	KeyUp:        "up",
	KeyDown:      "down",
	KeyLeft:      "left",
	KeyRight:     "right",
	KeyF1:        "f1",
	KeyF2:        "f2",
	KeyF3:        "f3",
	KeyF4:        "f4",
	KeyF5:        "f5",
	KeyF6:        "f6",
	KeyF7:        "f7",
	KeyF8:        "f8",
	KeyF9:        "f9",
	KeyF10:       "f10",
	KeyF11:       "f11",
	KeyF12:       "f12",
	KeyCtrlSpace: "ctrl+space",
}

// String returns a readable key name such as "enter" or "ctrl+c".
func (k Key) String() string {
	if k >= KeyCtrlA && k <= KeyCtrlZ {
		return "ctrl+" + string(rune('a'+int(k-KeyCtrlA)))
	}
	if name, ok := keyNames[k]; ok {
		return name
	}
	if k == KeyRune {
		return "rune"
	}
	return "none"
}

// IsCtrlLetter reports whether k is one of KeyCtrlA through KeyCtrlZ.
func (k Key) IsCtrlLetter() bool {
	return k >= KeyCtrlA && k <= KeyCtrlZ
}

// ModMask represents modifier key state.
type ModMask int

const (
	ModNone  ModMask = 0
	ModShift ModMask = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Has returns true if the mask contains the given modifier.
func (m ModMask) Has(mod ModMask) bool {
	return m&mod != 0
}

// String returns the modifiers joined with "+", e.g. "ctrl+alt".
func (m ModMask) String() string {
	var parts []string
	if m.Has(ModCtrl) {
		parts = append(parts, "ctrl")
	}
	if m.Has(ModAlt) {
		parts = append(parts, "alt")
	}
	if m.Has(ModMeta) {
		parts = append(parts, "meta")
	}
	if m.Has(ModShift) {
		parts = append(parts, "shift")
	}
	return strings.Join(parts, "+")
}

// ButtonMask is a set of mouse buttons and wheel directions.
type ButtonMask int

const (
	ButtonPrimary ButtonMask = 1 << iota
	ButtonSecondary
	ButtonMiddle
	WheelUp
	WheelDown
	WheelLeft
	WheelRight

	ButtonNone ButtonMask = 0
)

const (
	buttonBits = ButtonPrimary | ButtonSecondary | ButtonMiddle
	wheelBits  = WheelUp | WheelDown | WheelLeft | WheelRight
)

// Has returns true if the mask contains every button in b.
func (m ButtonMask) Has(b ButtonMask) bool {
	return b != 0 && m&b == b
}

// Pressed returns the held buttons without wheel bits.
func (m ButtonMask) Pressed() ButtonMask {
	return m & buttonBits
}

// Wheel returns the wheel bits.
func (m ButtonMask) Wheel() ButtonMask {
	return m & wheelBits
}

// ClipboardData is the payload of copy, cut and paste events.
// Listeners of copy and cut set the text to place on the clipboard.
type ClipboardData struct {
	mu   sync.Mutex
	text string
	set  bool
}

// NewClipboardData returns data holding text, as delivered with paste.
func NewClipboardData(text string) *ClipboardData {
	return &ClipboardData{text: text, set: text != ""}
}

// SetText replaces the clipboard text.
func (d *ClipboardData) SetText(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.text = text
	d.set = true
}

// Text returns the clipboard text.
func (d *ClipboardData) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text
}

// IsSet reports whether any text was placed on the data.
func (d *ClipboardData) IsSet() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.set
}
