package surface

import (
	"strings"

	"github.com/dshills/fanout/internal/backend"
	"github.com/dshills/fanout/internal/source"
)

// inputState tracks what terminal events do not report directly.
type inputState struct {
	buttons backend.ButtonMask
	x, y    int
	havePos bool

	pasting bool
	paste   strings.Builder
}

var pointerButtons = []backend.ButtonMask{
	backend.ButtonPrimary,
	backend.ButtonSecondary,
	backend.ButtonMiddle,
}

// handle translates one terminal event into named raw events.
func (w *Window) handle(ev backend.Event) {
	switch ev.Type {
	case backend.EventKey:
		w.handleKey(ev)
	case backend.EventMouse:
		w.handleMouse(ev)
	case backend.EventPaste:
		w.handlePaste(ev)
	case backend.EventResize:
		w.emit(source.Resize, ev)
	case backend.EventFocus:
		if ev.Focused {
			w.emit(source.Focus, ev)
		} else {
			w.emit(source.Blur, ev)
		}
	}
}

// handleKey emits keydown and keyup for every press; terminals do not
// report releases. A clipboard binding then emits its clipboard event.
func (w *Window) handleKey(ev backend.Event) {
	if w.input.pasting {
		switch ev.Key {
		case backend.KeyRune:
			w.input.paste.WriteRune(ev.Rune)
		case backend.KeyEnter:
			w.input.paste.WriteByte('\n')
		case backend.KeyTab:
			w.input.paste.WriteByte('\t')
		}
		return
	}

	w.emit(source.KeyDown, ev)
	w.emit(source.KeyUp, ev)

	switch {
	case w.bindings.Copy.Matches(ev):
		w.emitClipboard(source.Copy, ev)
	case w.bindings.Cut.Matches(ev):
		w.emitClipboard(source.Cut, ev)
	case w.bindings.Paste.Matches(ev):
		text := w.Clipboard()
		ev.Text = text
		ev.Data = backend.NewClipboardData(text)
		w.emit(source.Paste, ev)
	}
}

// emitClipboard emits a copy or cut event; text a listener sets becomes the
// clipboard register.
func (w *Window) emitClipboard(name string, ev backend.Event) {
	data := &backend.ClipboardData{}
	ev.Data = data
	w.emit(name, ev)

	if data.IsSet() {
		w.SetClipboard(data.Text())
		w.log.Debug().Str("event", name).Int("bytes", len(data.Text())).Msg("clipboard updated")
	}
}

func (w *Window) handlePaste(ev backend.Event) {
	if ev.PasteStart {
		w.input.pasting = true
		w.input.paste.Reset()
		return
	}
	if !w.input.pasting {
		return
	}

	w.input.pasting = false
	ev.Text = w.input.paste.String()
	w.input.paste.Reset()
	w.emit(source.Paste, ev)
}

// handleMouse derives mousemove, mousedown, mouseup, click and wheel from
// the button state a terminal reports with each mouse event.
func (w *Window) handleMouse(ev backend.Event) {
	in := &w.input

	if !in.havePos || ev.X != in.x || ev.Y != in.y {
		in.x, in.y, in.havePos = ev.X, ev.Y, true
		w.emit(source.MouseMove, ev)
	}

	pressed := ev.Buttons.Pressed()
	for _, b := range pointerButtons {
		was, is := in.buttons.Has(b), pressed.Has(b)
		e := ev
		e.Button = b
		switch {
		case is && !was:
			w.emit(source.MouseDown, e)
		case was && !is:
			w.emit(source.MouseUp, e)
			w.emit(source.Click, e)
		}
	}
	in.buttons = pressed

	if wheel := ev.Buttons.Wheel(); wheel != 0 {
		e := ev
		e.DeltaX, e.DeltaY = wheelDelta(wheel)
		w.emit(source.Wheel, e)
	}
}

func wheelDelta(wheel backend.ButtonMask) (dx, dy int) {
	if wheel.Has(backend.WheelUp) {
		dy--
	}
	if wheel.Has(backend.WheelDown) {
		dy++
	}
	if wheel.Has(backend.WheelLeft) {
		dx--
	}
	if wheel.Has(backend.WheelRight) {
		dx++
	}
	return dx, dy
}
