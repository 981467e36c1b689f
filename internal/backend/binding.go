package backend

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrInvalidBinding is returned by ParseKey for malformed key bindings.
var ErrInvalidBinding = errors.New("invalid key binding")

// Binding is a key combination such as "ctrl+c" or "alt+x".
//
// Control letters are stored in their KeyCtrl form with ModCtrl cleared, so a
// binding matches whether the terminal reports ctrl+c as KeyCtrlC or as the
// rune 'c' with ModCtrl.
type Binding struct {
	Key  Key
	Rune rune
	Mod  ModMask
}

var namedKeys = func() map[string]Key {
	m := make(map[string]Key, len(keyNames)+4)
	for k, name := range keyNames {
		if !strings.Contains(name, "+") {
			m[name] = k
		}
	}
	m["escape"] = KeyEscape
	m["return"] = KeyEnter
	m["pageup"] = KeyPageUp
	m["pagedown"] = KeyPageDown
	return m
}()

// ParseKey parses a binding such as "ctrl+c", "alt+enter", "f5" or "q".
// Modifier names are ctrl, alt, meta and shift; matching is case-insensitive
// except for the final rune.
func ParseKey(s string) (Binding, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Binding{}, fmt.Errorf("%w: empty", ErrInvalidBinding)
	}

	parts := strings.Split(s, "+")
	// "ctrl++" binds the plus key.
	if strings.HasSuffix(s, "++") {
		parts = append(parts[:len(parts)-2], "+")
	}

	var mod ModMask
	for _, p := range parts[:len(parts)-1] {
		switch strings.ToLower(strings.TrimSpace(p)) {
		case "ctrl", "control":
			mod |= ModCtrl
		case "alt", "opt", "option":
			mod |= ModAlt
		case "meta", "cmd", "super":
			mod |= ModMeta
		case "shift":
			mod |= ModShift
		default:
			return Binding{}, fmt.Errorf("%w: unknown modifier %q in %q", ErrInvalidBinding, p, s)
		}
	}

	last := strings.TrimSpace(parts[len(parts)-1])
	if last == "" {
		return Binding{}, fmt.Errorf("%w: missing key in %q", ErrInvalidBinding, s)
	}

	if k, ok := namedKeys[strings.ToLower(last)]; ok {
		return Binding{Key: k, Mod: mod}, nil
	}
	if strings.EqualFold(last, "space") {
		if mod.Has(ModCtrl) {
			return Binding{Key: KeyCtrlSpace, Mod: mod &^ ModCtrl}, nil
		}
		return Binding{Key: KeyRune, Rune: ' ', Mod: mod}, nil
	}

	r, size := utf8.DecodeRuneInString(last)
	if r == utf8.RuneError || size != len(last) {
		return Binding{}, fmt.Errorf("%w: unknown key %q in %q", ErrInvalidBinding, last, s)
	}

	b := Binding{Key: KeyRune, Rune: r, Mod: mod}
	return b.normalize(), nil
}

// MustParseKey is like ParseKey but panics on error.
func MustParseKey(s string) Binding {
	b, err := ParseKey(s)
	if err != nil {
		panic(err)
	}
	return b
}

// normalize folds ctrl+letter runes into their KeyCtrl form.
func (b Binding) normalize() Binding {
	if b.Key == KeyRune && b.Mod.Has(ModCtrl) {
		lower := unicode.ToLower(b.Rune)
		if lower >= 'a' && lower <= 'z' {
			return Binding{Key: KeyCtrlA + Key(lower-'a'), Mod: b.Mod &^ (ModCtrl | ModShift)}
		}
	}
	if b.Key.IsCtrlLetter() || b.Key == KeyCtrlSpace {
		b.Mod &^= ModCtrl
	}
	return b
}

// IsZero reports whether b is the zero binding, which matches nothing.
func (b Binding) IsZero() bool {
	return b == Binding{}
}

// Matches reports whether the key event ev is this binding.
func (b Binding) Matches(ev Event) bool {
	if b.IsZero() || ev.Type != EventKey {
		return false
	}
	got := Binding{Key: ev.Key, Rune: ev.Rune, Mod: ev.Mod}.normalize()
	if got.Key != KeyRune {
		got.Rune = 0
	}
	want := b
	if want.Key == KeyRune {
		// Shift is implied by the rune itself.
		got.Mod &^= ModShift
		want.Mod &^= ModShift
	}
	return got == want
}

// String returns the binding in the form accepted by ParseKey.
func (b Binding) String() string {
	var key string
	switch {
	case b.IsZero():
		return ""
	case b.Key == KeyRune && b.Rune == ' ':
		key = "space"
	case b.Key == KeyRune:
		key = string(b.Rune)
	default:
		key = b.Key.String()
	}
	if mods := b.Mod.String(); mods != "" {
		return mods + "+" + key
	}
	return key
}
