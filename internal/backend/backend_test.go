package backend

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullBackend_Init(t *testing.T) {
	b := NewNullBackend(80, 24)
	require.NoError(t, b.Init())

	w, h := b.Size()
	assert.Equal(t, 80, w)
	assert.Equal(t, 24, h)
}

func TestNullBackend_FailInit(t *testing.T) {
	b := NewNullBackend(80, 24)
	boom := errors.New("no tty")
	b.FailInit(boom)

	assert.ErrorIs(t, b.Init(), boom)
}

func TestNullBackend_DrawText(t *testing.T) {
	b := NewNullBackend(10, 3)
	require.NoError(t, b.Init())

	b.DrawText(2, 1, "hello world")
	b.DrawText(-2, 0, "abcd")
	b.DrawText(0, 5, "ignored")

	assert.Equal(t, "cd", b.Row(0))
	assert.Equal(t, "  hello wo", b.Row(1))
	assert.Empty(t, b.Row(2))

	b.Clear()
	assert.Empty(t, b.Row(1))

	b.Show()
	b.Show()
	assert.Equal(t, 2, b.ShowCount())
}

func TestNullBackend_PostAndPoll(t *testing.T) {
	b := NewNullBackend(80, 24)
	require.NoError(t, b.Init())

	require.NoError(t, b.PostEvent(Event{Type: EventKey, Key: KeyRune, Rune: 'a'}))

	ev, ok := b.PollEvent()
	require.True(t, ok)
	assert.Equal(t, EventKey, ev.Type)
	assert.Equal(t, 'a', ev.Rune)
}

func TestNullBackend_ShutdownUnblocksPoll(t *testing.T) {
	b := NewNullBackend(80, 24)
	require.NoError(t, b.Init())

	done := make(chan bool, 1)
	go func() {
		_, ok := b.PollEvent()
		done <- ok
	}()

	b.Shutdown()
	b.Shutdown()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("PollEvent did not return after Shutdown")
	}

	assert.ErrorIs(t, b.PostEvent(Event{Type: EventKey}), ErrClosed)
}

func TestNullBackend_QueueFull(t *testing.T) {
	b := NewNullBackend(1, 1)
	var err error
	for i := 0; i < 1000 && err == nil; i++ {
		err = b.PostEvent(Event{Type: EventKey})
	}
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestNullBackend_Resize(t *testing.T) {
	b := NewNullBackend(80, 24)
	require.NoError(t, b.Init())

	require.NoError(t, b.Resize(100, 40))

	w, h := b.Size()
	assert.Equal(t, 100, w)
	assert.Equal(t, 40, h)

	ev, ok := b.PollEvent()
	require.True(t, ok)
	assert.Equal(t, Event{Type: EventResize, Width: 100, Height: 40}, ev)
}

func TestNullBackend_Modes(t *testing.T) {
	b := NewNullBackend(1, 1)
	assert.False(t, b.MouseEnabled())
	assert.False(t, b.PasteEnabled())

	b.EnableMouse()
	b.EnablePaste()

	assert.True(t, b.MouseEnabled())
	assert.True(t, b.PasteEnabled())
}

func TestButtonMask(t *testing.T) {
	m := ButtonPrimary | WheelDown

	assert.True(t, m.Has(ButtonPrimary))
	assert.False(t, m.Has(ButtonSecondary))
	assert.False(t, m.Has(ButtonNone))
	assert.Equal(t, ButtonPrimary, m.Pressed())
	assert.Equal(t, WheelDown, m.Wheel())
}

func TestClipboardData(t *testing.T) {
	d := &ClipboardData{}
	assert.False(t, d.IsSet())
	assert.Empty(t, d.Text())

	d.SetText("copied")
	assert.True(t, d.IsSet())
	assert.Equal(t, "copied", d.Text())

	assert.Equal(t, "pasted", NewClipboardData("pasted").Text())
	assert.False(t, NewClipboardData("").IsSet())
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "ctrl+c", KeyCtrlC.String())
	assert.Equal(t, "enter", KeyEnter.String())
	assert.Equal(t, "f3", KeyF3.String())
	assert.Equal(t, "rune", KeyRune.String())
	assert.Equal(t, "none", KeyNone.String())
	assert.Equal(t, "ctrl+alt", (ModCtrl | ModAlt).String())
	assert.Equal(t, "key", EventKey.String())
}
