package surface

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dshills/fanout/internal/backend"
	"github.com/dshills/fanout/internal/event/dispatch"
	"github.com/dshills/fanout/internal/source"
)

// Rect is a rectangular region in cells.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Contains reports whether the cell at x, y lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Element is an event source for a rectangular region of a parent source.
//
// Pointer events are delivered only inside the bounds, in element-local
// coordinates. Keyboard and clipboard events are delivered only while the
// element has focus; a mousedown inside the element focuses it and one
// outside blurs it. Resize events always pass through.
type Element struct {
	log  zerolog.Logger
	exec *dispatch.Executor

	mu        sync.Mutex
	bounds    Rect
	focused   bool
	listeners map[string][]source.Callback
}

var (
	pointerNames = []string{source.MouseDown, source.MouseUp, source.Click, source.MouseMove, source.Wheel}
	focusedNames = []string{source.KeyDown, source.KeyUp, source.Copy, source.Cut, source.Paste}
)

// NewElement creates an element covering bounds of parent and registers it
// with parent. Parent may itself be an Element.
func NewElement(parent source.Source, bounds Rect, opts ...Option) (*Element, error) {
	if parent == nil {
		return nil, &source.RegistrationError{Event: "element", Err: source.ErrNilSource}
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	e := &Element{
		log:       cfg.log.With().Str("component", "element").Logger(),
		bounds:    bounds,
		listeners: make(map[string][]source.Callback),
	}
	e.exec = dispatch.NewExecutor(dispatch.WithPanicHandler(func(value any, stack []byte) {
		e.log.Error().Interface("panic", value).Str("stack", string(stack)).Msg("element listener panicked")
	}))

	register := func(name string, cb source.Callback) error {
		if err := parent.AddListener(name, cb); err != nil {
			return &source.RegistrationError{Event: name, Err: err}
		}
		return nil
	}

	for _, name := range pointerNames {
		if err := register(name, e.pointer(name)); err != nil {
			return nil, err
		}
	}
	for _, name := range focusedNames {
		if err := register(name, e.whileFocused(name)); err != nil {
			return nil, err
		}
	}
	if err := register(source.Resize, func(raw backend.Event) { e.emit(source.Resize, raw) }); err != nil {
		return nil, err
	}
	return e, nil
}

// AddListener implements source.Source.
func (e *Element) AddListener(name string, cb source.Callback) error {
	if name == "" {
		return ErrInvalidEventName
	}
	if cb == nil {
		return ErrNilCallback
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners[name] = append(e.listeners[name], cb)
	return nil
}

// Bounds returns the element's region in parent coordinates.
func (e *Element) Bounds() Rect {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bounds
}

// SetBounds moves or resizes the element.
func (e *Element) SetBounds(r Rect) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bounds = r
}

// Width implements source.Dimensions.
func (e *Element) Width() (int, error) {
	b := e.Bounds()
	if b.Width <= 0 {
		return 0, fmt.Errorf("%w: width %d", ErrNoDimensions, b.Width)
	}
	return b.Width, nil
}

// Height implements source.Dimensions.
func (e *Element) Height() (int, error) {
	b := e.Bounds()
	if b.Height <= 0 {
		return 0, fmt.Errorf("%w: height %d", ErrNoDimensions, b.Height)
	}
	return b.Height, nil
}

// Focused reports whether the element has focus.
func (e *Element) Focused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.focused
}

// Focus gives the element focus.
func (e *Element) Focus() {
	e.setFocus(true, backend.Event{})
}

// Blur removes focus from the element.
func (e *Element) Blur() {
	e.setFocus(false, backend.Event{})
}

// setFocus emits focus or blur when the state changes.
func (e *Element) setFocus(focused bool, cause backend.Event) {
	e.mu.Lock()
	if e.focused == focused {
		e.mu.Unlock()
		return
	}
	e.focused = focused
	e.mu.Unlock()

	ev := cause
	ev.Type = backend.EventFocus
	ev.Focused = focused
	if focused {
		e.emit(source.Focus, ev)
	} else {
		e.emit(source.Blur, ev)
	}
}

func (e *Element) pointer(name string) source.Callback {
	return func(raw backend.Event) {
		b := e.Bounds()
		inside := b.Contains(raw.X, raw.Y)

		if name == source.MouseDown {
			e.setFocus(inside, raw)
		}
		if !inside {
			return
		}

		local := raw
		local.X -= b.X
		local.Y -= b.Y
		e.emit(name, local)
	}
}

func (e *Element) whileFocused(name string) source.Callback {
	return func(raw backend.Event) {
		if e.Focused() {
			e.emit(name, raw)
		}
	}
}

func (e *Element) emit(name string, raw backend.Event) {
	e.mu.Lock()
	cbs := e.listeners[name]
	e.mu.Unlock()

	for _, cb := range cbs {
		e.exec.Execute(func() { cb(raw) })
	}
}

var (
	_ source.Source     = (*Element)(nil)
	_ source.Dimensions = (*Element)(nil)
)
