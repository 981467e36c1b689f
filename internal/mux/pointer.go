package mux

import (
	"github.com/dshills/fanout/internal/backend"
	"github.com/dshills/fanout/internal/event"
	"github.com/dshills/fanout/internal/event/events"
	"github.com/dshills/fanout/internal/source"
)

// Pointer multiplexes click, mousemove and wheel.
type Pointer struct {
	arming
	click *event.Handler[events.MouseClickEvent]
	move  *event.Handler[events.MouseMoveEvent]
	wheel *event.Handler[events.WheelEvent]
}

// NewPointer creates an unarmed pointer multiplexer.
func NewPointer(opts ...Option) *Pointer {
	o := newOptions(opts)
	return &Pointer{
		click: newHandler[events.MouseClickEvent](o, "pointer.click"),
		move:  newHandler[events.MouseMoveEvent](o, "pointer.mousemove"),
		wheel: newHandler[events.WheelEvent](o, "pointer.wheel"),
	}
}

// Click returns the click handler.
func (p *Pointer) Click() *event.Handler[events.MouseClickEvent] {
	return p.click
}

// Move returns the mouse move handler.
func (p *Pointer) Move() *event.Handler[events.MouseMoveEvent] {
	return p.move
}

// Wheel returns the wheel handler.
func (p *Pointer) Wheel() *event.Handler[events.WheelEvent] {
	return p.wheel
}

// Attach registers with src. It may be called once.
func (p *Pointer) Attach(src source.Source) error {
	if err := p.arm(); err != nil {
		return err
	}
	if err := source.Bridge(src, source.Click, p.click, toClick); err != nil {
		return err
	}
	if err := source.Bridge(src, source.MouseMove, p.move, toMove); err != nil {
		return err
	}
	return source.Bridge(src, source.Wheel, p.wheel, toWheel)
}

// Handlers returns the pointer handlers.
func (p *Pointer) Handlers() []event.Reporter {
	return []event.Reporter{p.click, p.move, p.wheel}
}

func toClick(raw backend.Event) events.MouseClickEvent {
	return events.MouseClickEvent{PointerEvent: events.NewPointerEvent(raw), Button: raw.Button}
}

func toMove(raw backend.Event) events.MouseMoveEvent {
	return events.MouseMoveEvent{PointerEvent: events.NewPointerEvent(raw)}
}

func toWheel(raw backend.Event) events.WheelEvent {
	return events.WheelEvent{PointerEvent: events.NewPointerEvent(raw), DeltaX: raw.DeltaX, DeltaY: raw.DeltaY}
}
