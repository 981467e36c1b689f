package source_test

import (
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/fanout/internal/backend"
	"github.com/dshills/fanout/internal/event"
	"github.com/dshills/fanout/internal/source"
	"github.com/dshills/fanout/internal/source/sourcetest"
)

type runeSink struct {
	got *[]rune
}

func (s *runeSink) Process(r rune) { *s.got = append(*s.got, r) }

func TestBridge_ConvertsAndFires(t *testing.T) {
	src := sourcetest.New()
	h := event.NewHandler[rune]()

	var got []rune
	sink := &runeSink{got: &got}
	h.Subscribe(event.Weak[rune](sink))

	err := source.Bridge(src, source.KeyDown, h, func(raw backend.Event) rune { return raw.Rune })
	require.NoError(t, err)
	assert.Equal(t, 1, src.Count(source.KeyDown))

	src.Emit(source.KeyDown, backend.Event{Rune: 'a'})
	src.Emit(source.KeyUp, backend.Event{Rune: 'z'})
	src.Emit(source.KeyDown, backend.Event{Rune: 'b'})

	assert.Equal(t, []rune{'a', 'b'}, got)
	runtime.KeepAlive(sink)
}

func TestBridge_RegistrationFailure(t *testing.T) {
	src := sourcetest.New()
	boom := errors.New("surface gone")
	src.FailOn(source.Click, boom)

	err := source.Bridge(src, source.Click, event.NewHandler[int](), func(backend.Event) int { return 0 })

	require.Error(t, err)
	assert.ErrorIs(t, err, source.ErrRegistration)
	assert.ErrorIs(t, err, boom)

	var regErr *source.RegistrationError
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, source.Click, regErr.Event)
	assert.Contains(t, err.Error(), `"click"`)
}

func TestBridge_NilSource(t *testing.T) {
	err := source.Bridge(nil, source.Copy, event.NewHandler[int](), func(backend.Event) int { return 0 })

	assert.ErrorIs(t, err, source.ErrRegistration)
	assert.ErrorIs(t, err, source.ErrNilSource)
}
