package mux

import (
	"fmt"

	"github.com/dshills/fanout/internal/backend"
	"github.com/dshills/fanout/internal/event"
	"github.com/dshills/fanout/internal/event/events"
	"github.com/dshills/fanout/internal/source"
)

// Resize multiplexes resize. The payload is read from the surface's
// dimensions when the event arrives, not from the raw event.
type Resize struct {
	arming
	fatal   fatalSink
	resized *event.Handler[events.ResizeEvent]
	dims    source.Dimensions
}

// NewResize creates an unarmed resize multiplexer.
func NewResize(opts ...Option) *Resize {
	o := newOptions(opts)
	r := &Resize{
		resized: newHandler[events.ResizeEvent](o, "resize"),
	}
	r.fatal.set(o.fatal)
	return r
}

// Resized returns the resize handler.
func (r *Resize) Resized() *event.Handler[events.ResizeEvent] {
	return r.resized
}

// Attach reads dims once and registers with src. It may be called once.
// A failing dimension query here is returned; one at resize time goes to
// the fatal function.
func (r *Resize) Attach(src source.Source, dims source.Dimensions) error {
	if err := r.arm(); err != nil {
		return err
	}
	if src == nil {
		return &source.RegistrationError{Event: source.Resize, Err: source.ErrNilSource}
	}
	if _, err := readSize(dims); err != nil {
		return err
	}
	r.dims = dims

	if err := src.AddListener(source.Resize, r.onResize); err != nil {
		return &source.RegistrationError{Event: source.Resize, Err: err}
	}
	return nil
}

// Handlers returns the resize handler.
func (r *Resize) Handlers() []event.Reporter {
	return []event.Reporter{r.resized}
}

func (r *Resize) onResize(backend.Event) {
	ev, err := readSize(r.dims)
	if err != nil {
		r.fatal.fail(err)
		return
	}
	r.resized.Fire(ev)
}

func readSize(dims source.Dimensions) (events.ResizeEvent, error) {
	if dims == nil {
		return events.ResizeEvent{}, fmt.Errorf("%w: no dimensions", ErrDimensionQuery)
	}
	w, err := dims.Width()
	if err != nil {
		return events.ResizeEvent{}, fmt.Errorf("%w: width: %w", ErrDimensionQuery, err)
	}
	h, err := dims.Height()
	if err != nil {
		return events.ResizeEvent{}, fmt.Errorf("%w: height: %w", ErrDimensionQuery, err)
	}
	return events.ResizeEvent{Width: w, Height: h}, nil
}
