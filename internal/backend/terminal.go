package backend

import (
	"sync"

	"github.com/gdamore/tcell/v2"
)

// Terminal implements Backend using tcell.
type Terminal struct {
	screen   tcell.Screen
	mu       sync.Mutex
	shutdown sync.Once
}

// NewTerminal creates a new terminal backend.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewTerminalWithScreen(screen), nil
}

// NewTerminalWithScreen creates a terminal backend over an existing screen,
// such as a tcell simulation screen.
func NewTerminalWithScreen(screen tcell.Screen) *Terminal {
	return &Terminal{screen: screen}
}

func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.Clear()
	return nil
}

func (t *Terminal) Shutdown() {
	t.shutdown.Do(func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.screen.Fini()
	})
}

func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.screen.Size()
}

// PollEvent must not hold the lock: tcell blocks here until input arrives.
func (t *Terminal) PollEvent() (Event, bool) {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return Event{}, false
		}
		if converted, ok := convertEvent(ev); ok {
			return converted, true
		}
	}
}

func (t *Terminal) PostEvent(event Event) error {
	ev, err := convertToTcellEvent(event)
	if err != nil {
		return err
	}
	if err := t.screen.PostEvent(ev); err != nil {
		return ErrQueueFull
	}
	return nil
}

func (t *Terminal) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Clear()
}

func (t *Terminal) DrawText(x, y int, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	width, height := t.screen.Size()
	if y < 0 || y >= height {
		return
	}
	for _, r := range text {
		if x >= width {
			return
		}
		if x >= 0 {
			t.screen.SetContent(x, y, r, nil, tcell.StyleDefault)
		}
		x++
	}
}

func (t *Terminal) Show() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Show()
}

func (t *Terminal) EnableMouse() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.EnableMouse()
}

func (t *Terminal) EnablePaste() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.EnablePaste()
}

var _ Backend = (*Terminal)(nil)

// convertEvent converts tcell events to our Event type.
// Event types with no counterpart report false.
func convertEvent(ev tcell.Event) (Event, bool) {
	switch e := ev.(type) {
	case *tcell.EventKey:
		key := convertKey(e.Key())
		var r rune
		if key == KeyRune {
			r = e.Rune()
		}
		return Event{
			Type: EventKey,
			Time: e.When(),
			Key:  key,
			Rune: r,
			Mod:  convertMod(e.Modifiers()),
		}, true

	case *tcell.EventMouse:
		x, y := e.Position()
		return Event{
			Type:    EventMouse,
			Time:    e.When(),
			X:       x,
			Y:       y,
			Buttons: convertButtons(e.Buttons()),
			Mod:     convertMod(e.Modifiers()),
		}, true

	case *tcell.EventResize:
		w, h := e.Size()
		return Event{
			Type:   EventResize,
			Time:   e.When(),
			Width:  w,
			Height: h,
		}, true

	case *tcell.EventPaste:
		// The pasted content arrives as key events between start and end.
		return Event{
			Type:       EventPaste,
			Time:       e.When(),
			PasteStart: e.Start(),
		}, true

	case *tcell.EventFocus:
		return Event{
			Type:    EventFocus,
			Time:    e.When(),
			Focused: e.Focused,
		}, true

	default:
		return Event{}, false
	}
}

// convertToTcellEvent builds the tcell event PostEvent queues.
func convertToTcellEvent(ev Event) (tcell.Event, error) {
	switch ev.Type {
	case EventKey:
		return tcell.NewEventKey(convertToTcellKey(ev.Key), ev.Rune, convertToTcellMod(ev.Mod)), nil
	case EventMouse:
		return tcell.NewEventMouse(ev.X, ev.Y, convertToTcellButtons(ev.Buttons), convertToTcellMod(ev.Mod)), nil
	case EventResize:
		return tcell.NewEventResize(ev.Width, ev.Height), nil
	case EventPaste:
		return tcell.NewEventPaste(ev.PasteStart), nil
	default:
		return nil, ErrUnsupportedEvent
	}
}

// convertKey converts tcell key to our Key type.
// tcell's control keys share values with Tab, Enter, Backspace and Escape,
// so the named keys are matched first and the rest by range.
func convertKey(k tcell.Key) Key {
	switch k {
	case tcell.KeyRune:
		return KeyRune
	case tcell.KeyEscape:
		return KeyEscape
	case tcell.KeyEnter:
		return KeyEnter
	case tcell.KeyTab:
		return KeyTab
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return KeyBackspace
	case tcell.KeyDelete:
		return KeyDelete
	case tcell.KeyInsert:
		return KeyInsert
	case tcell.KeyHome:
		return KeyHome
	case tcell.KeyEnd:
		return KeyEnd
	case tcell.KeyPgUp:
		return KeyPageUp
	case tcell.KeyPgDn:
		return KeyPageDown
	case tcell.KeyUp:
		return KeyUp
	case tcell.KeyDown:
		return KeyDown
	case tcell.KeyLeft:
		return KeyLeft
	case tcell.KeyRight:
		return KeyRight
	case tcell.KeyCtrlSpace:
		return KeyCtrlSpace
	}

	switch {
	case k >= tcell.KeyF1 && k <= tcell.KeyF12:
		return KeyF1 + Key(k-tcell.KeyF1)
	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
		return KeyCtrlA + Key(k-tcell.KeyCtrlA)
	default:
		return KeyNone
	}
}

// convertToTcellKey converts our Key to tcell.Key.
func convertToTcellKey(k Key) tcell.Key {
	switch k {
	case KeyEscape:
		return tcell.KeyEscape
	case KeyEnter:
		return tcell.KeyEnter
	case KeyTab:
		return tcell.KeyTab
	case KeyBackspace:
		return tcell.KeyBackspace2
	case KeyDelete:
		return tcell.KeyDelete
	case KeyInsert:
		return tcell.KeyInsert
	case KeyHome:
		return tcell.KeyHome
	case KeyEnd:
		return tcell.KeyEnd
	case KeyPageUp:
		return tcell.KeyPgUp
	case KeyPageDown:
		return tcell.KeyPgDn
	case KeyUp:
		return tcell.KeyUp
	case KeyDown:
		return tcell.KeyDown
	case KeyLeft:
		return tcell.KeyLeft
	case KeyRight:
		return tcell.KeyRight
	case KeyCtrlSpace:
		return tcell.KeyCtrlSpace
	}

	switch {
	case k >= KeyF1 && k <= KeyF12:
		return tcell.KeyF1 + tcell.Key(k-KeyF1)
	case k.IsCtrlLetter():
		return tcell.KeyCtrlA + tcell.Key(k-KeyCtrlA)
	default:
		return tcell.KeyRune
	}
}

// convertMod converts tcell modifier mask to our ModMask.
func convertMod(m tcell.ModMask) ModMask {
	var result ModMask
	if m&tcell.ModShift != 0 {
		result |= ModShift
	}
	if m&tcell.ModCtrl != 0 {
		result |= ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		result |= ModAlt
	}
	if m&tcell.ModMeta != 0 {
		result |= ModMeta
	}
	return result
}

// convertToTcellMod converts our ModMask to tcell.ModMask.
func convertToTcellMod(m ModMask) tcell.ModMask {
	var result tcell.ModMask
	if m&ModShift != 0 {
		result |= tcell.ModShift
	}
	if m&ModCtrl != 0 {
		result |= tcell.ModCtrl
	}
	if m&ModAlt != 0 {
		result |= tcell.ModAlt
	}
	if m&ModMeta != 0 {
		result |= tcell.ModMeta
	}
	return result
}

var buttonPairs = []struct {
	ours  ButtonMask
	tcell tcell.ButtonMask
}{
	{ButtonPrimary, tcell.ButtonPrimary},
	{ButtonSecondary, tcell.ButtonSecondary},
	{ButtonMiddle, tcell.ButtonMiddle},
	{WheelUp, tcell.WheelUp},
	{WheelDown, tcell.WheelDown},
	{WheelLeft, tcell.WheelLeft},
	{WheelRight, tcell.WheelRight},
}

// convertButtons converts a tcell button mask to ours.
func convertButtons(b tcell.ButtonMask) ButtonMask {
	var result ButtonMask
	for _, p := range buttonPairs {
		if b&p.tcell != 0 {
			result |= p.ours
		}
	}
	return result
}

// convertToTcellButtons converts our button mask to tcell's.
func convertToTcellButtons(b ButtonMask) tcell.ButtonMask {
	var result tcell.ButtonMask
	for _, p := range buttonPairs {
		if b&p.ours != 0 {
			result |= p.tcell
		}
	}
	return result
}
