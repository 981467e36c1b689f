package script

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/fanout/internal/backend"
	"github.com/dshills/fanout/internal/event/events"
	"github.com/dshills/fanout/internal/mux"
)

func global(s *Script, name string) lua.LValue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.L.GetGlobal(name)
}

func newHost(t *testing.T, opts ...Option) (*Host, *mux.Hub) {
	t.Helper()
	hub := mux.NewHub()
	h := NewHost(hub, opts...)
	t.Cleanup(h.Close)
	return h, hub
}

func keyDown(r rune) events.KeyDownEvent {
	return events.KeyDownEvent{KeyEvent: events.KeyEvent{Key: backend.KeyRune, Rune: r}}
}

func TestKeyDownCallback(t *testing.T) {
	h, hub := newHost(t)
	s, err := h.LoadString("keys.lua", `
pressed = ""
events.on("keydown", function(e)
  pressed = pressed .. e.rune
  last_name = e.name
end)
`)
	require.NoError(t, err)
	assert.Equal(t, []string{"keydown"}, s.Subscriptions())
	assert.Equal(t, 1, hub.Keyboard().KeyDown().Len())

	hub.Keyboard().KeyDown().Fire(keyDown('h'))
	hub.Keyboard().KeyDown().Fire(keyDown('i'))

	assert.Equal(t, lua.LString("hi"), global(s, "pressed"))
	assert.Equal(t, lua.LString("i"), global(s, "last_name"))
	assert.Equal(t, uint64(2), s.Calls())
	assert.Zero(t, s.Failures())
}

func TestEventTables(t *testing.T) {
	h, hub := newHost(t)
	s, err := h.LoadString("all.lua", `
seen = {}
events.on("click", function(e) seen.click = e.x .. "," .. e.y .. ":" .. e.button end)
events.on("wheel", function(e) seen.wheel = e.dy end)
events.on("mousemove", function(e) seen.move = e.x end)
events.on("paste", function(e) seen.paste = e.text end)
events.on("resize", function(e) seen.resize = e.width .. "x" .. e.height end)
events.on("render", function(e) seen.frame = e.frame end)
events.on("update", function(e) seen.tick = e.tick end)
events.on("keyup", function(e) seen.up = e.name end)
`)
	require.NoError(t, err)

	hub.Pointer().Click().Fire(events.MouseClickEvent{
		PointerEvent: events.PointerEvent{X: 3, Y: 4},
		Button:       backend.ButtonPrimary,
	})
	hub.Pointer().Wheel().Fire(events.WheelEvent{DeltaY: -1})
	hub.Pointer().Move().Fire(events.MouseMoveEvent{PointerEvent: events.PointerEvent{X: 9}})
	hub.Clipboard().Paste().Fire(events.PasteEvent{Text: "clip"})
	hub.Resize().Resized().Fire(events.ResizeEvent{Width: 80, Height: 24})
	hub.Frames().Render().Fire(events.RenderEvent{Frame: 7, Time: time.Now()})
	hub.Ticker().Update().Fire(events.UpdateEvent{Tick: 12})
	hub.Keyboard().KeyUp().Fire(events.KeyUpEvent{KeyEvent: events.KeyEvent{Key: backend.KeyEnter}})

	seen, ok := global(s, "seen").(*lua.LTable)
	require.True(t, ok)
	field := func(name string) string { return seen.RawGetString(name).String() }

	assert.Equal(t, "3,4:"+lua.LNumber(backend.ButtonPrimary).String(), field("click"))
	assert.Equal(t, "-1", field("wheel"))
	assert.Equal(t, "9", field("move"))
	assert.Equal(t, "clip", field("paste"))
	assert.Equal(t, "80x24", field("resize"))
	assert.Equal(t, "7", field("frame"))
	assert.Equal(t, "12", field("tick"))
	assert.Equal(t, "enter", field("up"))
}

func TestCopyReturnSetsClipboard(t *testing.T) {
	h, hub := newHost(t)
	_, err := h.LoadString("copy.lua", `
events.on("copy", function() return "from lua" end)
events.on("cut", function() return nil end)
`)
	require.NoError(t, err)

	data := backend.NewClipboardData("")
	hub.Clipboard().Copy().Fire(events.CopyEvent{Data: data})
	assert.Equal(t, "from lua", data.Text())

	cut := backend.NewClipboardData("")
	hub.Clipboard().Cut().Fire(events.CutEvent{Data: cut})
	assert.False(t, cut.IsSet())
}

func TestUnknownEvent(t *testing.T) {
	h, hub := newHost(t)
	_, err := h.LoadString("bad.lua", `events.on("hover", function() end)`)
	require.Error(t, err)

	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "bad.lua", serr.Script)
	assert.Contains(t, err.Error(), "unknown event name")
	assert.Empty(t, h.Scripts())

	for _, r := range hub.Handlers() {
		assert.Zero(t, r.Len(), r.Name())
	}
}

func TestFailedLoadKillsSubscriptions(t *testing.T) {
	h, hub := newHost(t)
	_, err := h.LoadString("half.lua", `
events.on("keydown", function() called = true end)
error("setup failed")
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setup failed")

	kd := hub.Keyboard().KeyDown()
	assert.Equal(t, 1, kd.Len())
	kd.Fire(keyDown('x'))
	assert.Zero(t, kd.Len(), "dead probe pruned on fire")
}

func TestCloseScriptPrunes(t *testing.T) {
	h, hub := newHost(t)
	s, err := h.LoadString("tick.lua", `events.on("update", function() end)`)
	require.NoError(t, err)

	upd := hub.Ticker().Update()
	upd.Fire(events.UpdateEvent{Tick: 1})
	assert.Equal(t, uint64(1), s.Calls())

	s.Close()
	s.Close()
	assert.False(t, s.Alive())
	upd.Fire(events.UpdateEvent{Tick: 2})
	assert.Equal(t, uint64(1), s.Calls())
	assert.Zero(t, upd.Len())
	assert.Equal(t, uint64(1), upd.Stats().Pruned)
}

func TestCallbackTimeout(t *testing.T) {
	h, hub := newHost(t, WithTimeout(20*time.Millisecond), WithMaxFailures(0))
	s, err := h.LoadString("spin.lua", `events.on("update", function() while true do end end)`)
	require.NoError(t, err)

	start := time.Now()
	hub.Ticker().Update().Fire(events.UpdateEvent{Tick: 1})
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, uint64(1), s.Failures())
	assert.True(t, s.Alive())
}

func TestLoadTimeout(t *testing.T) {
	h, _ := newHost(t, WithTimeout(20*time.Millisecond))
	_, err := h.LoadString("spin.lua", `while true do end`)
	assert.Error(t, err)
}

func TestMaxFailuresDisables(t *testing.T) {
	h, hub := newHost(t, WithMaxFailures(2))
	s, err := h.LoadString("fail.lua", `events.on("keydown", function() error("nope") end)`)
	require.NoError(t, err)

	kd := hub.Keyboard().KeyDown()
	kd.Fire(keyDown('a'))
	assert.True(t, s.Alive())
	kd.Fire(keyDown('b'))
	assert.False(t, s.Alive())
	assert.Equal(t, uint64(2), s.Failures())

	kd.Fire(keyDown('c'))
	assert.Zero(t, kd.Len())
}

func TestFailuresResetOnSuccess(t *testing.T) {
	h, hub := newHost(t, WithMaxFailures(2))
	s, err := h.LoadString("flaky.lua", `
n = 0
events.on("keydown", function()
  n = n + 1
  if n % 2 == 1 then error("odd") end
end)
`)
	require.NoError(t, err)

	for i := 0; i < 6; i++ {
		hub.Keyboard().KeyDown().Fire(keyDown('a'))
	}
	assert.True(t, s.Alive())
	assert.Equal(t, uint64(3), s.Failures())
}

func TestSandbox(t *testing.T) {
	h, _ := newHost(t)
	_, err := h.LoadString("sandbox.lua", `
assert(io == nil, "io")
assert(os == nil, "os")
assert(debug == nil, "debug")
assert(load == nil, "load")
assert(loadstring == nil, "loadstring")
assert(dofile == nil, "dofile")
assert(loadfile == nil, "loadfile")
assert(require == nil, "require")
assert(string.upper("a") == "A")
assert(math.max(1, 2) == 2)
assert(#table.concat({"a", "b"}) == 2)
`)
	assert.NoError(t, err)
}

func TestNamesAndID(t *testing.T) {
	h, _ := newHost(t)
	s, err := h.LoadString("meta.lua", `
count = #events.names()
id = SCRIPT_ID
`)
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(len(Names())), global(s, "count"))
	assert.Equal(t, lua.LString(s.ID().String()), global(s, "id"))
	assert.Len(t, Names(), 11)
	assert.Contains(t, s.String(), "meta.lua")
}

func TestLogWritesToLogger(t *testing.T) {
	var buf bytes.Buffer
	h, _ := newHost(t, WithLogger(zerolog.New(&buf)))
	s, err := h.LoadString("hello.lua", `log("hello", 42) print("again")`)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"message":"hello 42"`)
	assert.Contains(t, out, `"message":"again"`)
	assert.Contains(t, out, `"script":"hello.lua"`)
	assert.Contains(t, out, s.ID().String())
}

func TestLoadFile(t *testing.T) {
	h, hub := newHost(t)
	path := filepath.Join(t.TempDir(), "observer.lua")
	require.NoError(t, os.WriteFile(path, []byte(`events.on("resize", function() end)`), 0o644))

	s, err := h.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "observer.lua", s.Name())
	assert.Equal(t, 1, hub.Resize().Resized().Len())
	assert.Len(t, h.Scripts(), 1)

	_, err = h.Load(filepath.Join(t.TempDir(), "missing.lua"))
	var serr *Error
	assert.ErrorAs(t, err, &serr)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestHostClose(t *testing.T) {
	h, _ := newHost(t)
	s, err := h.LoadString("a.lua", `x = 1`)
	require.NoError(t, err)

	h.Close()
	h.Close()
	assert.False(t, s.Alive())

	_, err = h.LoadString("b.lua", `x = 2`)
	assert.ErrorIs(t, err, ErrHostClosed)

	_, err = s.call("update", nil, nil)
	assert.ErrorIs(t, err, ErrScriptClosed)
}
