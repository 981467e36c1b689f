package mux

import (
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/fanout/internal/event"
)

// DefaultTickInterval is the period of the update timer.
const DefaultTickInterval = 10 * time.Millisecond

// Option configures multiplexers.
type Option func(*options)

type options struct {
	log          zerolog.Logger
	handlerOpts  []event.HandlerOption
	fatal        func(error)
	tickInterval time.Duration
}

func newOptions(opts []Option) options {
	o := options{
		log:          zerolog.Nop(),
		tickInterval: DefaultTickInterval,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// newHandler creates a handler named name with the shared handler options.
func newHandler[E any](o options, name string) *event.Handler[E] {
	opts := append([]event.HandlerOption{event.WithLogger(o.log)}, o.handlerOpts...)
	opts = append(opts, event.WithName(name))
	return event.NewHandler[E](opts...)
}

// WithLogger sets the logger for multiplexers and their handlers.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithHandlerOptions adds options applied to every handler created.
// Handler names are always set by the multiplexer.
func WithHandlerOptions(opts ...event.HandlerOption) Option {
	return func(o *options) {
		o.handlerOpts = append(o.handlerOpts, opts...)
	}
}

// WithFatal sets the function that receives runtime fatal errors, such as a
// dimension query failing on resize. Without it those errors panic.
func WithFatal(fn func(error)) Option {
	return func(o *options) {
		o.fatal = fn
	}
}

// WithTickInterval sets the update timer period. Non-positive values are
// ignored.
func WithTickInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.tickInterval = d
		}
	}
}

// arming makes a multiplexer arm exactly once.
type arming struct {
	armed atomic.Bool
}

func (a *arming) arm() error {
	if !a.armed.CompareAndSwap(false, true) {
		return ErrAlreadyArmed
	}
	return nil
}

// Armed reports whether the multiplexer has been attached or started.
func (a *arming) Armed() bool {
	return a.armed.Load()
}

// fatalSink forwards runtime fatal errors.
type fatalSink struct {
	fn atomic.Pointer[func(error)]
}

func (f *fatalSink) set(fn func(error)) {
	if fn != nil {
		f.fn.Store(&fn)
	}
}

func (f *fatalSink) setIfUnset(fn func(error)) {
	if fn != nil {
		f.fn.CompareAndSwap(nil, &fn)
	}
}

func (f *fatalSink) fail(err error) {
	if fn := f.fn.Load(); fn != nil {
		(*fn)(err)
		return
	}
	panic(err)
}
