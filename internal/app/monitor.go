package app

import (
	"fmt"
	"sync"

	"github.com/dshills/fanout/internal/event"
	"github.com/dshills/fanout/internal/event/events"
	"github.com/dshills/fanout/internal/mux"
)

// Drawer is the part of a backend the monitor draws with.
type Drawer interface {
	Clear()
	DrawText(x, y int, text string)
}

// Status is a snapshot of what the monitor has observed.
type Status struct {
	Width, Height int
	Frame         uint64
	Ticks         uint64
	Keys          uint64
	LastKey       string
	Clicks        uint64
	PointerX      int
	PointerY      int
	Scroll        int
	Pastes        uint64
	LastPaste     string
}

// Monitor observes every category and draws a status view on each frame.
// One value serves several handlers through method subscriptions, so it
// stays subscribed only while its owner keeps it.
type Monitor struct {
	draw Drawer
	quit string

	mu sync.Mutex
	st Status
}

// NewMonitor returns a monitor drawing with d. quit is shown as a hint.
func NewMonitor(d Drawer, quit string) *Monitor {
	return &Monitor{draw: d, quit: quit}
}

// Subscribe registers the monitor with every category of hub.
func (m *Monitor) Subscribe(hub *mux.Hub) {
	hub.Keyboard().KeyDown().Subscribe(event.WeakFunc(m, (*Monitor).onKeyDown))
	hub.Pointer().Click().Subscribe(event.WeakFunc(m, (*Monitor).onClick))
	hub.Pointer().Move().Subscribe(event.WeakFunc(m, (*Monitor).onMove))
	hub.Pointer().Wheel().Subscribe(event.WeakFunc(m, (*Monitor).onWheel))
	hub.Clipboard().Copy().Subscribe(event.WeakFunc(m, (*Monitor).onCopy))
	hub.Clipboard().Paste().Subscribe(event.WeakFunc(m, (*Monitor).onPaste))
	hub.Resize().Resized().Subscribe(event.WeakFunc(m, (*Monitor).onResize))
	hub.Ticker().Update().Subscribe(event.WeakFunc(m, (*Monitor).onUpdate))
	hub.Frames().Render().Subscribe(event.WeakFunc(m, (*Monitor).onRender))
}

// Status returns the current snapshot.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st
}

// Lines formats the snapshot for display.
func (m *Monitor) Lines() []string {
	st := m.Status()
	lines := []string{
		fmt.Sprintf("size    %dx%d", st.Width, st.Height),
		fmt.Sprintf("frame   %d", st.Frame),
		fmt.Sprintf("ticks   %d", st.Ticks),
		fmt.Sprintf("keys    %d  last %q", st.Keys, st.LastKey),
		fmt.Sprintf("pointer %d,%d  clicks %d  scroll %d", st.PointerX, st.PointerY, st.Clicks, st.Scroll),
		fmt.Sprintf("pastes  %d  last %q", st.Pastes, st.LastPaste),
	}
	if m.quit != "" {
		lines = append(lines, "", "press "+m.quit+" to quit")
	}
	return lines
}

func (m *Monitor) update(fn func(*Status)) {
	m.mu.Lock()
	fn(&m.st)
	m.mu.Unlock()
}

func (m *Monitor) onKeyDown(e events.KeyDownEvent) {
	m.update(func(st *Status) {
		st.Keys++
		st.LastKey = e.Name()
	})
}

func (m *Monitor) onClick(e events.MouseClickEvent) {
	m.update(func(st *Status) {
		st.Clicks++
		st.PointerX, st.PointerY = e.X, e.Y
	})
}

func (m *Monitor) onMove(e events.MouseMoveEvent) {
	m.update(func(st *Status) {
		st.PointerX, st.PointerY = e.X, e.Y
	})
}

func (m *Monitor) onWheel(e events.WheelEvent) {
	m.update(func(st *Status) {
		st.Scroll += e.DeltaY
	})
}

// onCopy offers the status summary when nothing else supplied text.
func (m *Monitor) onCopy(e events.CopyEvent) {
	if e.Data == nil || e.Data.IsSet() {
		return
	}
	st := m.Status()
	e.Data.SetText(fmt.Sprintf("frame=%d ticks=%d keys=%d", st.Frame, st.Ticks, st.Keys))
}

func (m *Monitor) onPaste(e events.PasteEvent) {
	m.update(func(st *Status) {
		st.Pastes++
		st.LastPaste = e.Text
	})
}

func (m *Monitor) onResize(e events.ResizeEvent) {
	m.update(func(st *Status) {
		st.Width, st.Height = e.Width, e.Height
	})
}

func (m *Monitor) onUpdate(e events.UpdateEvent) {
	m.update(func(st *Status) {
		st.Ticks = e.Tick
	})
}

func (m *Monitor) onRender(e events.RenderEvent) {
	m.update(func(st *Status) {
		st.Frame = e.Frame
	})
	if m.draw == nil {
		return
	}
	m.draw.Clear()
	for y, line := range m.Lines() {
		m.draw.DrawText(0, y, line)
	}
}
