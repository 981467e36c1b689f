// Package surface provides the concrete event sources: Window, the global
// terminal surface, and Element, a rectangular region of another source.
//
// A Window owns a single execution context. Run polls the backend on a helper
// goroutine, but raw listeners, frame callbacks, interval callbacks and posted
// functions all execute on the goroutine that called Run, one at a time.
package surface

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/fanout/internal/backend"
	"github.com/dshills/fanout/internal/event/dispatch"
	"github.com/dshills/fanout/internal/source"
)

type state int

const (
	stateIdle state = iota
	stateRunning
	stateClosed
)

// Window is the global surface over a terminal backend.
type Window struct {
	backend       backend.Backend
	log           zerolog.Logger
	exec          *dispatch.Executor
	frameInterval time.Duration
	bindings      Bindings

	mu        sync.Mutex
	state     state
	listeners map[string][]source.Callback
	frames    []func(time.Time)
	intervals []*interval
	posted    []func()
	clipboard string

	wake     chan struct{}
	fatal    chan error
	quit     chan struct{}
	quitOnce sync.Once
	done     chan struct{}
	wg       sync.WaitGroup

	// Owned by the Run goroutine.
	input inputState

	frameCount atomic.Uint64
	panics     atomic.Uint64
}

type interval struct {
	fn     func()
	every  time.Duration
	queued atomic.Bool
}

func (iv *interval) run() {
	iv.queued.Store(false)
	iv.fn()
}

// Open initializes b and returns a window over it.
// The window takes ownership of b and shuts it down when it stops.
func Open(b backend.Backend, opts ...Option) (*Window, error) {
	if b == nil {
		return nil, ErrNoBackend
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := b.Init(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	b.EnableMouse()
	b.EnablePaste()

	w := &Window{
		backend:       b,
		log:           cfg.log.With().Str("component", "window").Logger(),
		frameInterval: cfg.frameInterval(),
		bindings:      cfg.bindings,
		listeners:     make(map[string][]source.Callback),
		wake:          make(chan struct{}, 1),
		fatal:         make(chan error, 1),
		quit:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	w.exec = dispatch.NewExecutor(dispatch.WithPanicHandler(w.reportPanic))
	return w, nil
}

// Backend returns the backend the window draws to.
// Draw only from callbacks running on the window's loop.
func (w *Window) Backend() backend.Backend {
	return w.backend
}

// AddListener implements source.Source.
func (w *Window) AddListener(name string, cb source.Callback) error {
	if name == "" {
		return ErrInvalidEventName
	}
	if cb == nil {
		return ErrNilCallback
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == stateClosed {
		return ErrClosed
	}
	w.listeners[name] = append(w.listeners[name], cb)
	return nil
}

// ListenerCount returns the number of raw listeners registered for name.
func (w *Window) ListenerCount(name string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.listeners[name])
}

// RequestFrame implements source.FrameRequester. fn runs once, on the loop,
// before the next frame is shown.
func (w *Window) RequestFrame(fn func(time.Time)) error {
	if fn == nil {
		return ErrNilCallback
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == stateClosed {
		return ErrClosed
	}
	w.frames = append(w.frames, fn)
	return nil
}

// SetInterval implements source.IntervalScheduler. fn runs on the loop every
// interval until the window stops. A tick that arrives while the previous
// one is still queued is dropped.
func (w *Window) SetInterval(fn func(), every time.Duration) error {
	if fn == nil {
		return ErrNilCallback
	}
	if every <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidInterval, every)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	iv := &interval{fn: fn, every: every}
	switch w.state {
	case stateClosed:
		return ErrClosed
	case stateRunning:
		w.startIntervalLocked(iv)
	}
	w.intervals = append(w.intervals, iv)
	return nil
}

// Width implements source.Dimensions.
func (w *Window) Width() (int, error) {
	width, _, err := w.size()
	return width, err
}

// Height implements source.Dimensions.
func (w *Window) Height() (int, error) {
	_, height, err := w.size()
	return height, err
}

func (w *Window) size() (int, int, error) {
	w.mu.Lock()
	closed := w.state == stateClosed
	w.mu.Unlock()

	if closed {
		return 0, 0, ErrClosed
	}
	width, height := w.backend.Size()
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("%w: %dx%d", ErrNoDimensions, width, height)
	}
	return width, height, nil
}

// Clipboard returns the window's clipboard register.
func (w *Window) Clipboard() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.clipboard
}

// SetClipboard replaces the window's clipboard register.
func (w *Window) SetClipboard(text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.clipboard = text
}

// Post runs fn on the loop. Functions posted before Run wait for it.
func (w *Window) Post(fn func()) error {
	if fn == nil {
		return ErrNilCallback
	}

	w.mu.Lock()
	if w.state == stateClosed {
		w.mu.Unlock()
		return ErrClosed
	}
	w.posted = append(w.posted, fn)
	w.mu.Unlock()

	w.signal()
	return nil
}

// Fail makes Run return err. Only the first failure is kept.
func (w *Window) Fail(err error) {
	if err == nil {
		return
	}
	select {
	case w.fatal <- err:
	default:
		w.log.Debug().Err(err).Msg("dropping fatal error, one is already pending")
	}
}

// Close stops a running window, or shuts down the backend of one that never
// ran. It is safe to call more than once.
func (w *Window) Close() {
	w.mu.Lock()
	if w.state == stateIdle {
		w.state = stateClosed
		w.mu.Unlock()
		w.backend.Shutdown()
		return
	}
	w.mu.Unlock()

	w.quitOnce.Do(func() { close(w.quit) })
}

// Frames returns the number of frames rendered.
func (w *Window) Frames() uint64 {
	return w.frameCount.Load()
}

// Panics returns the number of callbacks that panicked on the loop.
func (w *Window) Panics() uint64 {
	return w.panics.Load()
}

// Run executes the window loop until ctx is done, Close is called, the
// backend stops or a callback calls Fail. Only Fail produces an error.
func (w *Window) Run(ctx context.Context) error {
	w.mu.Lock()
	switch w.state {
	case stateRunning:
		w.mu.Unlock()
		return ErrAlreadyRunning
	case stateClosed:
		w.mu.Unlock()
		return ErrClosed
	}
	w.state = stateRunning
	for _, iv := range w.intervals {
		w.startIntervalLocked(iv)
	}
	w.mu.Unlock()

	defer w.stop()

	events := w.startPolling()
	ticker := time.NewTicker(w.frameInterval)
	defer ticker.Stop()

	w.log.Debug().Dur("frame_interval", w.frameInterval).Msg("window running")

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-w.quit:
			return nil

		case err := <-w.fatal:
			w.log.Error().Err(err).Msg("window stopped by fatal error")
			return err

		case ev, ok := <-events:
			if !ok {
				w.log.Debug().Msg("backend stopped")
				return nil
			}
			w.handle(ev)

		case now := <-ticker.C:
			w.runFrame(now)

		case <-w.wake:
			w.runPosted()
		}
	}
}

// stop releases everything Run started.
func (w *Window) stop() {
	w.mu.Lock()
	w.state = stateClosed
	w.frames = nil
	w.posted = nil
	w.mu.Unlock()

	close(w.done)
	w.backend.Shutdown()
	w.wg.Wait()

	w.log.Debug().Uint64("frames", w.Frames()).Msg("window stopped")
}

// startPolling forwards backend events to the loop. Shutting the backend
// down unblocks PollEvent and ends the goroutine.
func (w *Window) startPolling() <-chan backend.Event {
	events := make(chan backend.Event)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer close(events)

		for {
			ev, ok := w.backend.PollEvent()
			if !ok {
				return
			}
			select {
			case events <- ev:
			case <-w.done:
				return
			}
		}
	}()

	return events
}

// startIntervalLocked must be called with w.mu held.
func (w *Window) startIntervalLocked(iv *interval) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		ticker := time.NewTicker(iv.every)
		defer ticker.Stop()

		for {
			select {
			case <-w.done:
				return
			case <-ticker.C:
				if iv.queued.CompareAndSwap(false, true) {
					w.enqueue(iv.run)
				}
			}
		}
	}()
}

// enqueue queues fn for the loop without the closed check Post does.
func (w *Window) enqueue(fn func()) {
	w.mu.Lock()
	w.posted = append(w.posted, fn)
	w.mu.Unlock()
	w.signal()
}

func (w *Window) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Window) runPosted() {
	w.mu.Lock()
	batch := w.posted
	w.posted = nil
	w.mu.Unlock()

	for _, fn := range batch {
		w.exec.Execute(fn)
	}
}

// runFrame runs the callbacks requested before this frame. Requests made by
// those callbacks wait for the next frame.
func (w *Window) runFrame(now time.Time) {
	w.mu.Lock()
	batch := w.frames
	w.frames = nil
	w.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	w.frameCount.Add(1)
	for _, fn := range batch {
		w.exec.Execute(func() { fn(now) })
	}
	w.backend.Show()
}

// emit delivers raw to the listeners registered for name and returns how
// many there were. Listeners added meanwhile see the next event.
func (w *Window) emit(name string, raw backend.Event) int {
	w.mu.Lock()
	cbs := w.listeners[name]
	w.mu.Unlock()

	for _, cb := range cbs {
		w.exec.Execute(func() { cb(raw) })
	}
	return len(cbs)
}

func (w *Window) reportPanic(value any, stack []byte) {
	w.panics.Add(1)
	w.log.Error().
		Interface("panic", value).
		Str("stack", string(stack)).
		Msg("callback panicked on window loop")
}

var (
	_ source.Source            = (*Window)(nil)
	_ source.FrameRequester    = (*Window)(nil)
	_ source.IntervalScheduler = (*Window)(nil)
	_ source.Dimensions        = (*Window)(nil)
)
