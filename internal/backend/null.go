package backend

import (
	"strings"
	"sync"
)

// NullBackend is an in-memory backend for testing and headless runs.
// It is safe for concurrent use.
type NullBackend struct {
	mu            sync.Mutex
	width, height int
	rows          [][]rune
	shown         int
	mouse         bool
	paste         bool
	initErr       error

	events   chan Event
	done     chan struct{}
	shutdown sync.Once
}

// NewNullBackend creates a null backend with the given dimensions.
func NewNullBackend(width, height int) *NullBackend {
	return &NullBackend{
		width:  width,
		height: height,
		events: make(chan Event, 256),
		done:   make(chan struct{}),
	}
}

// FailInit makes the next Init return err.
func (b *NullBackend) FailInit(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.initErr = err
}

func (b *NullBackend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.initErr != nil {
		return b.initErr
	}
	b.allocLocked()
	return nil
}

func (b *NullBackend) allocLocked() {
	h, w := max(b.height, 0), max(b.width, 0)
	b.rows = make([][]rune, h)
	for y := range b.rows {
		b.rows[y] = []rune(strings.Repeat(" ", w))
	}
}

func (b *NullBackend) Shutdown() {
	b.shutdown.Do(func() { close(b.done) })
}

func (b *NullBackend) Size() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}

func (b *NullBackend) PollEvent() (Event, bool) {
	// Prefer shutdown over queued events.
	select {
	case <-b.done:
		return Event{}, false
	default:
	}

	select {
	case ev := <-b.events:
		return ev, true
	case <-b.done:
		return Event{}, false
	}
}

func (b *NullBackend) PostEvent(ev Event) error {
	select {
	case <-b.done:
		return ErrClosed
	default:
	}

	select {
	case b.events <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

func (b *NullBackend) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.allocLocked()
}

func (b *NullBackend) DrawText(x, y int, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if y < 0 || y >= len(b.rows) {
		return
	}
	row := b.rows[y]
	for _, r := range text {
		if x >= len(row) {
			return
		}
		if x >= 0 {
			row[x] = r
		}
		x++
	}
}

func (b *NullBackend) Show() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shown++
}

func (b *NullBackend) EnableMouse() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mouse = true
}

func (b *NullBackend) EnablePaste() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.paste = true
}

// Row returns the text of row y with trailing spaces trimmed, for testing.
func (b *NullBackend) Row(y int) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if y < 0 || y >= len(b.rows) {
		return ""
	}
	return strings.TrimRight(string(b.rows[y]), " ")
}

// ShowCount returns how many times Show was called, for testing.
func (b *NullBackend) ShowCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.shown
}

// MouseEnabled reports whether EnableMouse was called, for testing.
func (b *NullBackend) MouseEnabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mouse
}

// PasteEnabled reports whether EnablePaste was called, for testing.
func (b *NullBackend) PasteEnabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.paste
}

// Resize simulates a terminal resize: the size changes and a resize event
// is queued.
func (b *NullBackend) Resize(width, height int) error {
	b.mu.Lock()
	b.width = width
	b.height = height
	b.allocLocked()
	b.mu.Unlock()

	return b.PostEvent(Event{Type: EventResize, Width: width, Height: height})
}

var _ Backend = (*NullBackend)(nil)
