// Package sourcetest provides manually driven sources and schedulers for
// tests.
package sourcetest

import (
	"sync"
	"time"

	"github.com/dshills/fanout/internal/backend"
	"github.com/dshills/fanout/internal/source"
)

// Source records registrations and delivers raw events on Emit.
type Source struct {
	mu        sync.Mutex
	listeners map[string][]source.Callback
	failures  map[string]error
}

// New returns an empty Source.
func New() *Source {
	return &Source{
		listeners: make(map[string][]source.Callback),
		failures:  make(map[string]error),
	}
}

// FailOn makes AddListener for name return err. An empty name fails every
// registration.
func (s *Source) FailOn(name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[name] = err
}

// AddListener implements source.Source.
func (s *Source) AddListener(name string, cb source.Callback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failures[name]; err != nil {
		return err
	}
	if err := s.failures[""]; err != nil {
		return err
	}
	s.listeners[name] = append(s.listeners[name], cb)
	return nil
}

// Emit calls every callback registered for name and returns how many ran.
func (s *Source) Emit(name string, raw backend.Event) int {
	s.mu.Lock()
	cbs := append([]source.Callback(nil), s.listeners[name]...)
	s.mu.Unlock()

	for _, cb := range cbs {
		cb(raw)
	}
	return len(cbs)
}

// Count returns the number of callbacks registered for name.
func (s *Source) Count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners[name])
}

// Names returns the number of distinct names with registrations.
func (s *Source) Names() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

// Frames is a frame requester advanced by Step.
type Frames struct {
	mu      sync.Mutex
	pending []func(time.Time)
	err     error
}

// RequestFrame implements source.FrameRequester.
func (f *Frames) RequestFrame(fn func(time.Time)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.pending = append(f.pending, fn)
	return nil
}

// Fail makes later requests return err.
func (f *Frames) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// Step runs the callbacks requested before the call and returns how many ran.
// Callbacks requested while stepping wait for the next Step.
func (f *Frames) Step(at time.Time) int {
	f.mu.Lock()
	batch := f.pending
	f.pending = nil
	f.mu.Unlock()

	for _, fn := range batch {
		fn(at)
	}
	return len(batch)
}

// Pending returns the number of outstanding requests.
func (f *Frames) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// Intervals is an interval scheduler advanced by Tick.
type Intervals struct {
	mu    sync.Mutex
	fns   []func()
	every []time.Duration
	err   error
}

// SetInterval implements source.IntervalScheduler.
func (i *Intervals) SetInterval(fn func(), every time.Duration) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.err != nil {
		return i.err
	}
	i.fns = append(i.fns, fn)
	i.every = append(i.every, every)
	return nil
}

// Fail makes later registrations return err.
func (i *Intervals) Fail(err error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.err = err
}

// Tick calls every registered interval once.
func (i *Intervals) Tick() {
	i.mu.Lock()
	fns := append([]func(){}, i.fns...)
	i.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Registered returns the interval of each registration in order.
func (i *Intervals) Registered() []time.Duration {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]time.Duration(nil), i.every...)
}

// Dims is a settable dimension query.
type Dims struct {
	mu   sync.Mutex
	w, h int
	wErr error
	hErr error
}

// NewDims returns dimensions of w by h.
func NewDims(w, h int) *Dims {
	return &Dims{w: w, h: h}
}

// Set changes the reported size.
func (d *Dims) Set(w, h int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.w, d.h = w, h
}

// Fail makes Width or Height return an error; nil clears it.
func (d *Dims) Fail(widthErr, heightErr error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.wErr, d.hErr = widthErr, heightErr
}

// Width implements source.Dimensions.
func (d *Dims) Width() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.wErr != nil {
		return 0, d.wErr
	}
	return d.w, nil
}

// Height implements source.Dimensions.
func (d *Dims) Height() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.hErr != nil {
		return 0, d.hErr
	}
	return d.h, nil
}

var (
	_ source.Source            = (*Source)(nil)
	_ source.FrameRequester    = (*Frames)(nil)
	_ source.IntervalScheduler = (*Intervals)(nil)
	_ source.Dimensions        = (*Dims)(nil)
)
