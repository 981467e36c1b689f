package mux

import (
	"github.com/dshills/fanout/internal/event"
	"github.com/dshills/fanout/internal/source"
)

// Surface is everything the hub attaches to. *surface.Window implements it.
type Surface interface {
	source.Source
	source.FrameRequester
	source.IntervalScheduler
	source.Dimensions

	// Fail receives runtime fatal errors.
	Fail(err error)
}

// Hub groups one multiplexer per category.
type Hub struct {
	keyboard  *Keyboard
	pointer   *Pointer
	clipboard *Clipboard
	resize    *Resize
	frames    *Frames
	ticker    *Ticker
}

// NewHub creates all multiplexers with the same options.
func NewHub(opts ...Option) *Hub {
	return &Hub{
		keyboard:  NewKeyboard(opts...),
		pointer:   NewPointer(opts...),
		clipboard: NewClipboard(opts...),
		resize:    NewResize(opts...),
		frames:    NewFrames(opts...),
		ticker:    NewTicker(opts...),
	}
}

// Keyboard returns the keyboard multiplexer.
func (h *Hub) Keyboard() *Keyboard { return h.keyboard }

// Pointer returns the pointer multiplexer.
func (h *Hub) Pointer() *Pointer { return h.pointer }

// Clipboard returns the clipboard multiplexer.
func (h *Hub) Clipboard() *Clipboard { return h.clipboard }

// Resize returns the resize multiplexer.
func (h *Hub) Resize() *Resize { return h.resize }

// Frames returns the frame multiplexer.
func (h *Hub) Frames() *Frames { return h.frames }

// Ticker returns the update timer multiplexer.
func (h *Hub) Ticker() *Ticker { return h.ticker }

// Attach arms every multiplexer against s. Runtime fatal errors go to
// s.Fail unless WithFatal was given. Any error is fatal to setup.
func (h *Hub) Attach(s Surface) error {
	if s == nil {
		return &source.RegistrationError{Event: "hub", Err: source.ErrNilSource}
	}
	h.resize.fatal.setIfUnset(s.Fail)
	h.frames.fatal.setIfUnset(s.Fail)

	if err := h.keyboard.Attach(s); err != nil {
		return err
	}
	if err := h.pointer.Attach(s); err != nil {
		return err
	}
	if err := h.clipboard.Attach(s); err != nil {
		return err
	}
	if err := h.resize.Attach(s, s); err != nil {
		return err
	}
	if err := h.frames.Start(s); err != nil {
		return err
	}
	return h.ticker.Start(s)
}

// Handlers returns every handler in the hub, for metrics and diagnostics.
func (h *Hub) Handlers() []event.Reporter {
	var all []event.Reporter
	all = append(all, h.keyboard.Handlers()...)
	all = append(all, h.pointer.Handlers()...)
	all = append(all, h.clipboard.Handlers()...)
	all = append(all, h.resize.Handlers()...)
	all = append(all, h.frames.Handlers()...)
	all = append(all, h.ticker.Handlers()...)
	return all
}
