package script

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/fanout/internal/mux"
)

// Defaults for a Host.
const (
	DefaultTimeout     = 100 * time.Millisecond
	DefaultMaxFailures = 10
)

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the logger scripts write to.
func WithLogger(l zerolog.Logger) Option {
	return func(h *Host) {
		h.log = l
	}
}

// WithTimeout bounds each script callback and each script's top-level
// chunk. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(h *Host) {
		if d >= 0 {
			h.timeout = d
		}
	}
}

// WithMaxFailures closes a script after n consecutive failed callbacks.
// Zero never closes.
func WithMaxFailures(n int) Option {
	return func(h *Host) {
		if n >= 0 {
			h.maxFailures = n
		}
	}
}

// Host loads scripts and subscribes them to a hub's handlers.
type Host struct {
	log         zerolog.Logger
	timeout     time.Duration
	maxFailures int
	binders     map[string]binder

	mu      sync.Mutex
	scripts []*Script
	closed  bool
}

// NewHost returns a host bound to hub.
func NewHost(hub *mux.Hub, opts ...Option) *Host {
	h := &Host{
		log:         zerolog.Nop(),
		timeout:     DefaultTimeout,
		maxFailures: DefaultMaxFailures,
		binders:     binders(hub),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Load reads and runs the script at path. The script is named by its base
// file name.
func (h *Host) Load(path string) (*Script, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Script: path, Err: err}
	}
	return h.LoadString(filepath.Base(path), string(code))
}

// LoadString runs code as a new script. If the chunk fails, subscriptions it
// made are killed and the error is returned.
func (h *Host) LoadString(name, code string) (*Script, error) {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		return nil, ErrHostClosed
	}

	s := newScript(name, h)
	if err := s.run(code); err != nil {
		s.Close()
		return nil, &Error{Script: name, Err: err}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		s.Close()
		return nil, ErrHostClosed
	}
	h.scripts = append(h.scripts, s)
	s.log.Info().Strs("events", s.Subscriptions()).Msg("script loaded")
	return s, nil
}

// Scripts returns the loaded scripts in load order, closed ones included.
func (h *Host) Scripts() []*Script {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*Script(nil), h.scripts...)
}

// Close closes every script. Later loads fail with ErrHostClosed.
func (h *Host) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	scripts := h.scripts
	h.mu.Unlock()

	for _, s := range scripts {
		s.Close()
	}
}
