package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		in   string
		want Binding
	}{
		{"ctrl+c", Binding{Key: KeyCtrlC}},
		{"Ctrl+X", Binding{Key: KeyCtrlX}},
		{"ctrl+shift+v", Binding{Key: KeyCtrlV}},
		{"alt+ctrl+c", Binding{Key: KeyCtrlC, Mod: ModAlt}},
		{"q", Binding{Key: KeyRune, Rune: 'q'}},
		{"Q", Binding{Key: KeyRune, Rune: 'Q'}},
		{"alt+x", Binding{Key: KeyRune, Rune: 'x', Mod: ModAlt}},
		{"esc", Binding{Key: KeyEscape}},
		{"Escape", Binding{Key: KeyEscape}},
		{"f5", Binding{Key: KeyF5}},
		{"shift+tab", Binding{Key: KeyTab, Mod: ModShift}},
		{"space", Binding{Key: KeyRune, Rune: ' '}},
		{"ctrl+space", Binding{Key: KeyCtrlSpace}},
		{"ctrl++", Binding{Key: KeyRune, Rune: '+', Mod: ModCtrl}},
		{" meta+pgdn ", Binding{Key: KeyPageDown, Mod: ModMeta}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKey(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseKey_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "ctrl+", "hyper+c", "ctrl+abc", "f99"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseKey(in)
			assert.ErrorIs(t, err, ErrInvalidBinding)
		})
	}
}

func TestMustParseKey_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParseKey("nope+x") })
	assert.NotPanics(t, func() { MustParseKey("ctrl+q") })
}

func TestBinding_Matches(t *testing.T) {
	copyKey := MustParseKey("ctrl+c")
	quit := MustParseKey("q")
	altX := MustParseKey("alt+x")

	tests := []struct {
		name    string
		binding Binding
		ev      Event
		want    bool
	}{
		{"ctrl key form", copyKey, Event{Type: EventKey, Key: KeyCtrlC, Mod: ModCtrl}, true},
		{"ctrl key without mod", copyKey, Event{Type: EventKey, Key: KeyCtrlC}, true},
		{"rune with ctrl", copyKey, Event{Type: EventKey, Key: KeyRune, Rune: 'c', Mod: ModCtrl}, true},
		{"plain rune", copyKey, Event{Type: EventKey, Key: KeyRune, Rune: 'c'}, false},
		{"other ctrl key", copyKey, Event{Type: EventKey, Key: KeyCtrlV, Mod: ModCtrl}, false},
		{"rune", quit, Event{Type: EventKey, Key: KeyRune, Rune: 'q'}, true},
		{"rune case", quit, Event{Type: EventKey, Key: KeyRune, Rune: 'Q', Mod: ModShift}, false},
		{"rune extra mod", quit, Event{Type: EventKey, Key: KeyRune, Rune: 'q', Mod: ModAlt}, false},
		{"alt rune", altX, Event{Type: EventKey, Key: KeyRune, Rune: 'x', Mod: ModAlt}, true},
		{"not a key event", quit, Event{Type: EventMouse}, false},
		{"zero binding", Binding{}, Event{Type: EventKey}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.binding.Matches(tt.ev))
		})
	}
}

func TestBinding_StringRoundTrip(t *testing.T) {
	for _, in := range []string{"ctrl+c", "alt+ctrl+x", "q", "f12", "shift+tab", "space", "meta+enter"} {
		b := MustParseKey(in)
		again, err := ParseKey(b.String())
		require.NoError(t, err, b.String())
		assert.Equal(t, b, again)
	}
	assert.Empty(t, Binding{}.String())
}
