package mux

import (
	"github.com/dshills/fanout/internal/backend"
	"github.com/dshills/fanout/internal/event"
	"github.com/dshills/fanout/internal/event/events"
	"github.com/dshills/fanout/internal/source"
)

// Clipboard multiplexes copy, paste and cut.
type Clipboard struct {
	arming
	copy  *event.Handler[events.CopyEvent]
	paste *event.Handler[events.PasteEvent]
	cut   *event.Handler[events.CutEvent]
}

// NewClipboard creates an unarmed clipboard multiplexer.
func NewClipboard(opts ...Option) *Clipboard {
	o := newOptions(opts)
	return &Clipboard{
		copy:  newHandler[events.CopyEvent](o, "clipboard.copy"),
		paste: newHandler[events.PasteEvent](o, "clipboard.paste"),
		cut:   newHandler[events.CutEvent](o, "clipboard.cut"),
	}
}

// Copy returns the copy handler.
func (c *Clipboard) Copy() *event.Handler[events.CopyEvent] {
	return c.copy
}

// Paste returns the paste handler.
func (c *Clipboard) Paste() *event.Handler[events.PasteEvent] {
	return c.paste
}

// Cut returns the cut handler.
func (c *Clipboard) Cut() *event.Handler[events.CutEvent] {
	return c.cut
}

// Attach registers with src. It may be called once.
func (c *Clipboard) Attach(src source.Source) error {
	if err := c.arm(); err != nil {
		return err
	}
	if err := source.Bridge(src, source.Copy, c.copy, toCopy); err != nil {
		return err
	}
	if err := source.Bridge(src, source.Paste, c.paste, events.NewPasteEvent); err != nil {
		return err
	}
	return source.Bridge(src, source.Cut, c.cut, toCut)
}

// Handlers returns the clipboard handlers.
func (c *Clipboard) Handlers() []event.Reporter {
	return []event.Reporter{c.copy, c.paste, c.cut}
}

// clipboardData returns the data a source attached, or fresh data a
// listener can still write to.
func clipboardData(raw backend.Event) *backend.ClipboardData {
	if raw.Data != nil {
		return raw.Data
	}
	return &backend.ClipboardData{}
}

func toCopy(raw backend.Event) events.CopyEvent {
	return events.CopyEvent{Data: clipboardData(raw)}
}

func toCut(raw backend.Event) events.CutEvent {
	return events.CutEvent{Data: clipboardData(raw)}
}
