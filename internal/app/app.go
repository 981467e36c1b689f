// Package app wires the event dispatch stack into a runnable program: config,
// logging, the terminal window, the multiplexer hub, the status monitor, Lua
// observers, metrics and config reload.
package app

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/fanout/internal/backend"
	"github.com/dshills/fanout/internal/config"
	"github.com/dshills/fanout/internal/event/events"
	"github.com/dshills/fanout/internal/logging"
	"github.com/dshills/fanout/internal/metrics"
	"github.com/dshills/fanout/internal/mux"
	"github.com/dshills/fanout/internal/script"
	"github.com/dshills/fanout/internal/surface"
)

// Options configures the application.
type Options struct {
	// ConfigPath is a TOML or YAML file. Empty uses defaults.
	ConfigPath string

	// Watch reloads ConfigPath when it changes.
	Watch bool

	// Override adjusts the loaded config before validation, for command
	// line flags.
	Override func(*config.Config)

	// Backend replaces the tcell terminal.
	Backend backend.Backend

	// LogOutput replaces the configured log file.
	LogOutput io.Writer
}

// Application owns every component and their lifecycle.
type Application struct {
	opts Options
	cfg  config.Config

	logging *logging.Logging
	log     zerolog.Logger

	window    *surface.Window
	hub       *mux.Hub
	monitor   *Monitor
	scripts   *script.Host
	collector *metrics.Collector
	server    *metrics.Server
	watcher   *config.Watcher

	quit atomic.Pointer[backend.Binding]

	initOrder []string
	closers   []func()

	running      atomic.Bool
	shutdownOnce sync.Once
	shut         atomic.Bool
}

// New builds every component. On failure the components already built are
// released and an *InitError names the one that failed.
func New(opts Options) (*Application, error) {
	a := &Application{opts: opts, log: zerolog.Nop()}
	if err := a.bootstrap(); err != nil {
		a.release()
		return nil, err
	}
	return a, nil
}

// Config returns the config the application started with.
func (a *Application) Config() config.Config { return a.cfg }

// Window returns the window.
func (a *Application) Window() *surface.Window { return a.window }

// Hub returns the multiplexer hub.
func (a *Application) Hub() *mux.Hub { return a.hub }

// Monitor returns the status monitor.
func (a *Application) Monitor() *Monitor { return a.monitor }

// Scripts returns the script host.
func (a *Application) Scripts() *script.Host { return a.scripts }

// Collector returns the metrics collector.
func (a *Application) Collector() *metrics.Collector { return a.collector }

// Watcher returns the config watcher, or nil when not watching.
func (a *Application) Watcher() *config.Watcher { return a.watcher }

// InitOrder returns the names of the components started, in order.
func (a *Application) InitOrder() []string {
	return append([]string(nil), a.initOrder...)
}

// MetricsAddr returns the metrics listen address, or "" when disabled.
func (a *Application) MetricsAddr() string {
	if a.server == nil {
		return ""
	}
	return a.server.Addr()
}

// Run runs the window loop until ctx is done, the quit key is pressed or a
// fatal error stops the loop, then shuts everything down.
func (a *Application) Run(ctx context.Context) error {
	if a.shut.Load() {
		return ErrShutDown
	}
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer a.Shutdown()

	a.log.Info().Msg("running")
	err := a.window.Run(ctx)
	if err != nil {
		a.log.Error().Err(err).Msg("stopped with error")
	} else {
		a.log.Info().Msg("stopped")
	}
	return err
}

// Shutdown releases every component in reverse start order. It is safe to
// call more than once and from any goroutine.
func (a *Application) Shutdown() {
	a.shutdownOnce.Do(func() {
		a.shut.Store(true)
		a.release()
	})
}

func (a *Application) release() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// onKeyDown closes the window on the quit binding.
func (a *Application) onKeyDown(e events.KeyDownEvent) {
	q := a.quit.Load()
	if q == nil {
		return
	}
	raw := backend.Event{Type: backend.EventKey, Key: e.Key, Rune: e.Rune, Mod: e.Mod}
	if q.Matches(raw) {
		a.log.Info().Str("key", e.Name()).Msg("quit requested")
		a.window.Close()
	}
}

// onConfigChange applies the settings that can change without a restart.
func (a *Application) onConfigChange(c config.Change) {
	if c.New.LogLevel != c.Old.LogLevel {
		if err := a.logging.SetLevel(c.New.LogLevel); err != nil {
			a.log.Warn().Err(err).Msg("log level not changed")
		} else {
			a.log.Info().Str("level", c.New.LogLevel).Msg("log level changed")
		}
	}
	if c.New.Bindings.Quit != c.Old.Bindings.Quit {
		a.setQuit(c.New.Bindings.Quit)
		a.log.Info().Str("quit", c.New.Bindings.Quit).Msg("quit binding changed")
	}

	restart := c.New.FrameRate != c.Old.FrameRate ||
		c.New.TickInterval != c.Old.TickInterval ||
		c.New.MetricsAddr != c.Old.MetricsAddr ||
		c.New.Bindings.Copy != c.Old.Bindings.Copy ||
		c.New.Bindings.Cut != c.Old.Bindings.Cut ||
		c.New.Bindings.Paste != c.Old.Bindings.Paste
	if restart {
		a.log.Warn().Msg("some changed settings take effect after restart")
	}
}

// setQuit installs the quit binding. Empty or invalid disables quitting by key.
func (a *Application) setQuit(s string) {
	if s == "" {
		a.quit.Store(nil)
		return
	}
	b, err := backend.ParseKey(s)
	if err != nil {
		a.quit.Store(nil)
		return
	}
	a.quit.Store(&b)
}

// shutdownTimeout bounds the metrics server's graceful stop.
const shutdownTimeout = 2 * time.Second
