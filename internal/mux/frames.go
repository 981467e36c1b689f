package mux

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/fanout/internal/event"
	"github.com/dshills/fanout/internal/event/events"
	"github.com/dshills/fanout/internal/source"
)

// Frames fires a render event once per frame by keeping one frame request
// outstanding: each frame callback requests the next frame before firing.
type Frames struct {
	arming
	fatal  fatalSink
	log    zerolog.Logger
	render *event.Handler[events.RenderEvent]
	req    source.FrameRequester
	frame  atomic.Uint64
}

// NewFrames creates an unarmed frame multiplexer.
func NewFrames(opts ...Option) *Frames {
	o := newOptions(opts)
	f := &Frames{
		log:    o.log.With().Str("component", "frames").Logger(),
		render: newHandler[events.RenderEvent](o, "frame.render"),
	}
	f.fatal.set(o.fatal)
	return f
}

// Render returns the render handler.
func (f *Frames) Render() *event.Handler[events.RenderEvent] {
	return f.render
}

// Start requests the first frame. It may be called once.
func (f *Frames) Start(req source.FrameRequester) error {
	if err := f.arm(); err != nil {
		return err
	}
	if req == nil {
		return fmt.Errorf("%w: %w", ErrFrameRequest, source.ErrNilSource)
	}
	f.req = req
	return f.request()
}

// Count returns the number of frames fired.
func (f *Frames) Count() uint64 {
	return f.frame.Load()
}

// Handlers returns the render handler.
func (f *Frames) Handlers() []event.Reporter {
	return []event.Reporter{f.render}
}

func (f *Frames) request() error {
	if err := f.req.RequestFrame(f.onFrame); err != nil {
		return fmt.Errorf("%w: %w", ErrFrameRequest, err)
	}
	return nil
}

func (f *Frames) onFrame(at time.Time) {
	if err := f.request(); err != nil {
		if errors.Is(err, source.ErrClosed) {
			f.log.Debug().Uint64("frames", f.frame.Load()).Msg("frame chain ended")
		} else {
			f.fatal.fail(err)
		}
	}
	f.render.Fire(events.RenderEvent{Frame: f.frame.Add(1), Time: at})
}
