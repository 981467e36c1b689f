package script

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/fanout/internal/event"
	"github.com/dshills/fanout/internal/event/events"
	"github.com/dshills/fanout/internal/mux"
	"github.com/dshills/fanout/internal/source"
)

// Category names for the self-driven multiplexers.
const (
	Render = "render"
	Update = "update"
)

// binder subscribes fn, owned by s, to one handler.
type binder func(s *Script, name string, fn *lua.LFunction)

// listener adapts a Lua function to event.Listener.
type listener[E any] struct {
	script *Script
	name   string
	fn     *lua.LFunction
	table  func(*lua.LState, E) *lua.LTable
	result func(E, lua.LValue)
}

func (l *listener[E]) Process(e E) {
	ret, err := l.script.call(l.name, l.fn, func(L *lua.LState) lua.LValue {
		return l.table(L, e)
	})
	if err == nil && l.result != nil {
		l.result(e, ret)
	}
}

func bindTo[E any](h *event.Handler[E], table func(*lua.LState, E) *lua.LTable, result func(E, lua.LValue)) binder {
	return func(s *Script, name string, fn *lua.LFunction) {
		l := &listener[E]{script: s, name: name, fn: fn, table: table, result: result}
		h.Subscribe(event.Probe[E](l, s.Alive))
	}
}

func binders(hub *mux.Hub) map[string]binder {
	kb, ptr, clip := hub.Keyboard(), hub.Pointer(), hub.Clipboard()
	return map[string]binder{
		source.KeyDown: bindTo(kb.KeyDown(), func(L *lua.LState, e events.KeyDownEvent) *lua.LTable {
			return keyTable(L, e.KeyEvent)
		}, nil),
		source.KeyUp: bindTo(kb.KeyUp(), func(L *lua.LState, e events.KeyUpEvent) *lua.LTable {
			return keyTable(L, e.KeyEvent)
		}, nil),
		source.Click: bindTo(ptr.Click(), func(L *lua.LState, e events.MouseClickEvent) *lua.LTable {
			t := pointerTable(L, e.PointerEvent)
			t.RawSetString("button", lua.LNumber(e.Button))
			return t
		}, nil),
		source.MouseMove: bindTo(ptr.Move(), func(L *lua.LState, e events.MouseMoveEvent) *lua.LTable {
			return pointerTable(L, e.PointerEvent)
		}, nil),
		source.Wheel: bindTo(ptr.Wheel(), func(L *lua.LState, e events.WheelEvent) *lua.LTable {
			t := pointerTable(L, e.PointerEvent)
			t.RawSetString("dx", lua.LNumber(e.DeltaX))
			t.RawSetString("dy", lua.LNumber(e.DeltaY))
			return t
		}, nil),
		source.Copy: bindTo(clip.Copy(), func(L *lua.LState, e events.CopyEvent) *lua.LTable {
			return L.NewTable()
		}, func(e events.CopyEvent, ret lua.LValue) {
			if s, ok := ret.(lua.LString); ok && e.Data != nil {
				e.Data.SetText(string(s))
			}
		}),
		source.Cut: bindTo(clip.Cut(), func(L *lua.LState, e events.CutEvent) *lua.LTable {
			return L.NewTable()
		}, func(e events.CutEvent, ret lua.LValue) {
			if s, ok := ret.(lua.LString); ok && e.Data != nil {
				e.Data.SetText(string(s))
			}
		}),
		source.Paste: bindTo(clip.Paste(), func(L *lua.LState, e events.PasteEvent) *lua.LTable {
			t := L.NewTable()
			t.RawSetString("text", lua.LString(e.Text))
			return t
		}, nil),
		source.Resize: bindTo(hub.Resize().Resized(), func(L *lua.LState, e events.ResizeEvent) *lua.LTable {
			t := L.NewTable()
			t.RawSetString("width", lua.LNumber(e.Width))
			t.RawSetString("height", lua.LNumber(e.Height))
			return t
		}, nil),
		Render: bindTo(hub.Frames().Render(), func(L *lua.LState, e events.RenderEvent) *lua.LTable {
			t := L.NewTable()
			t.RawSetString("frame", lua.LNumber(e.Frame))
			t.RawSetString("time", lua.LNumber(float64(e.Time.UnixNano())/1e9))
			return t
		}, nil),
		Update: bindTo(hub.Ticker().Update(), func(L *lua.LState, e events.UpdateEvent) *lua.LTable {
			t := L.NewTable()
			t.RawSetString("tick", lua.LNumber(e.Tick))
			return t
		}, nil),
	}
}

// Names returns every category name scripts can subscribe to, sorted.
func Names() []string {
	names := []string{
		source.KeyDown, source.KeyUp,
		source.Click, source.MouseMove, source.Wheel,
		source.Copy, source.Cut, source.Paste,
		source.Resize, Render, Update,
	}
	sort.Strings(names)
	return names
}

func (h *Host) bind(s *Script, name string, fn *lua.LFunction) error {
	b, ok := h.binders[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEvent, name)
	}
	b(s, name, fn)
	return nil
}

func keyTable(L *lua.LState, e events.KeyEvent) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("name", lua.LString(e.Name()))
	t.RawSetString("key", lua.LString(e.Key.String()))
	if e.Rune != 0 {
		t.RawSetString("rune", lua.LString(string(e.Rune)))
	}
	t.RawSetString("mod", lua.LString(e.Mod.String()))
	return t
}

func pointerTable(L *lua.LState, e events.PointerEvent) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("x", lua.LNumber(e.X))
	t.RawSetString("y", lua.LNumber(e.Y))
	t.RawSetString("buttons", lua.LNumber(e.Buttons))
	t.RawSetString("mod", lua.LString(e.Mod.String()))
	return t
}
