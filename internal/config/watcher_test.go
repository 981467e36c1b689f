package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/fanout/internal/event"
)

type changeRecorder struct {
	ch chan Change
}

func (r *changeRecorder) Process(c Change) {
	select {
	case r.ch <- c:
	default:
	}
}

func newRecorder(w *Watcher) *changeRecorder {
	r := &changeRecorder{ch: make(chan Change, 8)}
	w.Changed().Subscribe(event.Weak[Change](r))
	return r
}

// waitFor returns the first change matching ok. Writes can be observed
// half done, so earlier changes are skipped.
func (r *changeRecorder) waitFor(t *testing.T, ok func(Change) bool) Change {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case c := <-r.ch:
			if ok(c) {
				return c
			}
		case <-deadline:
			t.Fatal("no matching config change")
			return Change{}
		}
	}
}

func TestWatcherReload(t *testing.T) {
	path := writeFile(t, "fanout.toml", `log_level = "info"`)
	initial, err := Load(path)
	require.NoError(t, err)

	w, err := NewWatcher(path, initial, WithDebounce(0))
	require.NoError(t, err)
	defer w.Close()
	rec := newRecorder(w)

	require.NoError(t, os.WriteFile(path, []byte(`log_level = "debug"`), 0o644))
	c := rec.waitFor(t, func(c Change) bool { return c.New.LogLevel == "debug" })
	assert.Equal(t, "info", c.Old.LogLevel)
	assert.Equal(t, w.Path(), c.Path)
	assert.Equal(t, "debug", w.Current().LogLevel)
	assert.GreaterOrEqual(t, w.Reloads(), uint64(1))
}

func TestWatcherDebounce(t *testing.T) {
	path := writeFile(t, "fanout.yaml", "frame_rate: 60\n")
	w, err := NewWatcher(path, Default(), WithDebounce(50*time.Millisecond))
	require.NoError(t, err)
	defer w.Close()
	rec := newRecorder(w)

	for _, rate := range []string{"10", "20", "30"} {
		require.NoError(t, os.WriteFile(path, []byte("frame_rate: "+rate+"\n"), 0o644))
	}
	rec.waitFor(t, func(c Change) bool { return c.New.FrameRate == 30 })
	assert.Equal(t, 30, w.Current().FrameRate)
}

func TestWatcherRejectsInvalid(t *testing.T) {
	path := writeFile(t, "fanout.toml", `frame_rate = 60`)
	w, err := NewWatcher(path, Default(), WithDebounce(time.Hour))
	require.NoError(t, err)
	defer w.Close()
	rec := newRecorder(w)

	require.NoError(t, os.WriteFile(path, []byte(`frame_rate = 0`), 0o644))
	err = w.Reload()
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Equal(t, 60, w.Current().FrameRate)
	assert.GreaterOrEqual(t, w.Failures(), uint64(1))

	select {
	case c := <-rec.ch:
		t.Fatalf("unexpected change %+v", c)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcherIgnoresSiblings(t *testing.T) {
	path := writeFile(t, "fanout.toml", `frame_rate = 60`)
	w, err := NewWatcher(path, Default(), WithDebounce(0))
	require.NoError(t, err)
	defer w.Close()
	rec := newRecorder(w)

	sibling := filepath.Join(filepath.Dir(path), "other.toml")
	require.NoError(t, os.WriteFile(sibling, []byte(`frame_rate = 1`), 0o644))

	select {
	case c := <-rec.ch:
		t.Fatalf("unexpected change %+v", c)
	case <-time.After(100 * time.Millisecond):
	}
	assert.Zero(t, w.Reloads())
}

func TestWatcherClose(t *testing.T) {
	path := writeFile(t, "fanout.toml", `frame_rate = 60`)
	w, err := NewWatcher(path, Default())
	require.NoError(t, err)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Reload(), ErrWatcherClosed)
}

func TestNewWatcherMissingDir(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "nope", "fanout.toml"), Default())
	assert.Error(t, err)
}
