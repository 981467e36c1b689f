package mux_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/fanout/internal/backend"
	"github.com/dshills/fanout/internal/event/events"
	"github.com/dshills/fanout/internal/mux"
	"github.com/dshills/fanout/internal/source"
	"github.com/dshills/fanout/internal/source/sourcetest"
	"github.com/dshills/fanout/internal/surface"
)

// fakeSurface combines the manual fakes into a mux.Surface.
type fakeSurface struct {
	*sourcetest.Source
	*sourcetest.Frames
	*sourcetest.Intervals
	*sourcetest.Dims

	mu     sync.Mutex
	failed []error
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		Source:    sourcetest.New(),
		Frames:    &sourcetest.Frames{},
		Intervals: &sourcetest.Intervals{},
		Dims:      sourcetest.NewDims(80, 24),
	}
}

func (s *fakeSurface) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed = append(s.failed, err)
}

func (s *fakeSurface) failures() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]error(nil), s.failed...)
}

var _ mux.Surface = (*fakeSurface)(nil)

func TestHub_AttachWiresEveryCategory(t *testing.T) {
	s := newFakeSurface()
	hub := mux.NewHub()

	require.NoError(t, hub.Attach(s))

	for _, name := range []string{
		source.KeyDown, source.KeyUp,
		source.Click, source.MouseMove, source.Wheel,
		source.Copy, source.Paste, source.Cut,
		source.Resize,
	} {
		assert.Equal(t, 1, s.Count(name), name)
	}
	assert.Equal(t, 9, s.Names())
	assert.Equal(t, 1, s.Pending())
	assert.Equal(t, []time.Duration{mux.DefaultTickInterval}, s.Registered())

	assert.ErrorIs(t, hub.Attach(s), mux.ErrAlreadyArmed)
}

func TestHub_RuntimeFatalGoesToSurface(t *testing.T) {
	s := newFakeSurface()
	hub := mux.NewHub()
	require.NoError(t, hub.Attach(s))

	boom := errors.New("detached")
	s.Dims.Fail(boom, nil)
	s.Emit(source.Resize, backend.Event{})

	failed := s.failures()
	require.Len(t, failed, 1)
	assert.ErrorIs(t, failed[0], boom)
}

func TestHub_AttachFailsOnDimensions(t *testing.T) {
	s := newFakeSurface()
	s.Dims.Fail(errors.New("no size"), nil)

	err := mux.NewHub().Attach(s)
	assert.ErrorIs(t, err, mux.ErrDimensionQuery)

	assert.Error(t, mux.NewHub().Attach(nil))
}

func TestHub_OnWindow(t *testing.T) {
	nb := backend.NewNullBackend(800, 600)
	w, err := surface.Open(nb, surface.WithFrameRate(500))
	require.NoError(t, err)

	hub := mux.NewHub(mux.WithTickInterval(time.Millisecond))
	keys := subscribe(hub.Keyboard().KeyDown())
	resizes := subscribe(hub.Resize().Resized())
	renders := subscribe(hub.Frames().Render())
	updates := subscribe(hub.Ticker().Update())

	require.NoError(t, hub.Attach(w))

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx) }()

	require.NoError(t, nb.PostEvent(backend.Event{Type: backend.EventKey, Key: backend.KeyRune, Rune: 'h'}))
	require.NoError(t, nb.Resize(1024, 768))

	assert.Eventually(t, func() bool { return len(keys.events()) == 1 }, 2*time.Second, time.Millisecond)
	assert.Eventually(t, func() bool { return len(resizes.events()) == 1 }, 2*time.Second, time.Millisecond)
	assert.Eventually(t, func() bool { return len(renders.events()) >= 3 }, 2*time.Second, time.Millisecond)
	assert.Eventually(t, func() bool { return len(updates.events()) >= 3 }, 2*time.Second, time.Millisecond)

	cancel()
	require.NoError(t, <-errc)

	assert.Equal(t, events.ResizeEvent{Width: 1024, Height: 768}, resizes.events()[0])
	assert.Equal(t, 'h', keys.events()[0].Rune)

	// Frames stay ordered across the chain.
	rs := renders.events()
	for i := 1; i < len(rs); i++ {
		assert.Equal(t, rs[i-1].Frame+1, rs[i].Frame)
	}
}
