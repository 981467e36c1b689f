package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/dshills/fanout/internal/event"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 100 * time.Millisecond

// Change is fired after the watched file was reloaded and validated.
type Change struct {
	Old  Config
	New  Config
	Path string
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the logger for reload results.
func WithWatcherLogger(l zerolog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.log = l
	}
}

// WithDebounce sets the settle delay. Non-positive values reload on every
// file event.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// Watcher reloads a config file when it changes on disk.
// Invalid files are logged and ignored; the last good config stays current.
type Watcher struct {
	path     string
	log      zerolog.Logger
	debounce time.Duration

	fsw     *fsnotify.Watcher
	changed *event.Handler[Change]

	mu      sync.Mutex
	current Config
	closed  bool

	done chan struct{}
	wg   sync.WaitGroup

	reloads  atomic.Uint64
	failures atomic.Uint64
}

// NewWatcher starts watching path. initial is the config already in use.
// The containing directory is watched so that editors replacing the file
// by rename are seen.
func NewWatcher(path string, initial Config, opts ...WatcherOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:     abs,
		log:      zerolog.Nop(),
		debounce: DefaultDebounce,
		current:  initial,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.changed = event.NewHandler[Change](event.WithName("config.change"), event.WithLogger(w.log))

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", abs, err)
	}
	w.fsw = fsw

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Changed returns the handler fired after each successful reload.
func (w *Watcher) Changed() *event.Handler[Change] {
	return w.changed
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Current returns the last successfully loaded config.
func (w *Watcher) Current() Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Reloads returns the number of successful reloads.
func (w *Watcher) Reloads() uint64 {
	return w.reloads.Load()
}

// Failures returns the number of reloads rejected as unreadable or invalid.
func (w *Watcher) Failures() uint64 {
	return w.failures.Load()
}

// Reload loads and validates the file now. On success the new config becomes
// current and Changed fires.
func (w *Watcher) Reload() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWatcherClosed
	}
	w.mu.Unlock()

	next, err := Load(w.path)
	if err == nil {
		err = next.Validate()
	}
	if err != nil {
		w.failures.Add(1)
		w.log.Warn().Err(err).Str("path", w.path).Msg("config reload rejected")
		return err
	}

	w.mu.Lock()
	prev := w.current
	w.current = next
	w.mu.Unlock()

	w.reloads.Add(1)
	w.log.Info().Str("path", w.path).Msg("config reloaded")
	w.changed.Fire(Change{Old: prev, New: next, Path: w.path})
	return nil
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.done)
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	var timer *time.Timer
	var settle <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			if w.debounce <= 0 {
				_ = w.Reload()
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			settle = timer.C

		case <-settle:
			settle = nil
			_ = w.Reload()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Str("path", w.path).Msg("config watch error")
		}
	}
}

// relevant reports whether ev may have changed the watched file's contents.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)
}
