package mux

import (
	"github.com/dshills/fanout/internal/backend"
	"github.com/dshills/fanout/internal/event"
	"github.com/dshills/fanout/internal/event/events"
	"github.com/dshills/fanout/internal/source"
)

// Keyboard multiplexes keydown and keyup.
type Keyboard struct {
	arming
	down *event.Handler[events.KeyDownEvent]
	up   *event.Handler[events.KeyUpEvent]
}

// NewKeyboard creates an unarmed keyboard multiplexer.
func NewKeyboard(opts ...Option) *Keyboard {
	o := newOptions(opts)
	return &Keyboard{
		down: newHandler[events.KeyDownEvent](o, "keyboard.keydown"),
		up:   newHandler[events.KeyUpEvent](o, "keyboard.keyup"),
	}
}

// KeyDown returns the key down handler.
func (k *Keyboard) KeyDown() *event.Handler[events.KeyDownEvent] {
	return k.down
}

// KeyUp returns the key up handler.
func (k *Keyboard) KeyUp() *event.Handler[events.KeyUpEvent] {
	return k.up
}

// Attach registers with src. It may be called once.
func (k *Keyboard) Attach(src source.Source) error {
	if err := k.arm(); err != nil {
		return err
	}
	if err := source.Bridge(src, source.KeyDown, k.down, toKeyDown); err != nil {
		return err
	}
	return source.Bridge(src, source.KeyUp, k.up, toKeyUp)
}

// Handlers returns the keyboard handlers.
func (k *Keyboard) Handlers() []event.Reporter {
	return []event.Reporter{k.down, k.up}
}

func toKeyDown(raw backend.Event) events.KeyDownEvent {
	return events.KeyDownEvent{KeyEvent: events.NewKeyEvent(raw)}
}

func toKeyUp(raw backend.Event) events.KeyUpEvent {
	return events.KeyUpEvent{KeyEvent: events.NewKeyEvent(raw)}
}
