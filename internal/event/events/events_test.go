package events

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/fanout/internal/backend"
)

func TestKeyEvent_Name(t *testing.T) {
	tests := []struct {
		ev   KeyEvent
		want string
	}{
		{KeyEvent{Key: backend.KeyRune, Rune: 'a'}, "a"},
		{KeyEvent{Key: backend.KeyRune, Rune: 'x', Mod: backend.ModAlt}, "alt+x"},
		{KeyEvent{Key: backend.KeyCtrlC, Mod: backend.ModCtrl}, "ctrl+c"},
		{KeyEvent{Key: backend.KeyEnter}, "enter"},
		{KeyEvent{Key: backend.KeyTab, Mod: backend.ModShift}, "shift+tab"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.ev.Name())
	}
}

func TestNewKeyEvent(t *testing.T) {
	raw := backend.Event{Type: backend.EventKey, Key: backend.KeyRune, Rune: 'k', Mod: backend.ModAlt, X: 9}
	got := NewKeyEvent(raw)

	assert.Equal(t, KeyEvent{Key: backend.KeyRune, Rune: 'k', Mod: backend.ModAlt}, got)
}

func TestNewPointerEvent(t *testing.T) {
	raw := backend.Event{Type: backend.EventMouse, X: 3, Y: 4, Buttons: backend.ButtonPrimary}
	got := NewPointerEvent(raw)

	assert.Equal(t, 3, got.X)
	assert.Equal(t, 4, got.Y)
	assert.Equal(t, backend.ButtonPrimary, got.Buttons)
}

func TestNewPasteEvent(t *testing.T) {
	assert.Equal(t, "typed", NewPasteEvent(backend.Event{Text: "typed"}).Text)
	assert.Equal(t, "register", NewPasteEvent(backend.Event{Data: backend.NewClipboardData("register")}).Text)
	assert.Empty(t, NewPasteEvent(backend.Event{}).Text)
}
