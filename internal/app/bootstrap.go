package app

import (
	"context"
	"errors"
	"time"

	"github.com/dshills/fanout/internal/backend"
	"github.com/dshills/fanout/internal/config"
	"github.com/dshills/fanout/internal/event"
	"github.com/dshills/fanout/internal/logging"
	"github.com/dshills/fanout/internal/metrics"
	"github.com/dshills/fanout/internal/mux"
	"github.com/dshills/fanout/internal/script"
	"github.com/dshills/fanout/internal/surface"
)

// bootstrap initializes components in dependency order.
func (a *Application) bootstrap() error {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"config", a.initConfig},
		{"logging", a.initLogging},
		{"window", a.initWindow},
		{"hub", a.initHub},
		{"monitor", a.initMonitor},
		{"scripts", a.initScripts},
		{"metrics", a.initMetrics},
		{"watcher", a.initWatcher},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			a.log.Error().Err(err).Str("component", step.name).Msg("init failed")
			return &InitError{Component: step.name, Err: err}
		}
		a.initOrder = append(a.initOrder, step.name)
	}
	a.log.Debug().Strs("components", a.initOrder).Msg("initialized")
	return nil
}

func (a *Application) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

func (a *Application) initConfig() error {
	cfg := config.Default()
	if a.opts.ConfigPath != "" {
		loaded, err := config.Load(a.opts.ConfigPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if a.opts.Override != nil {
		a.opts.Override(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

func (a *Application) initLogging() error {
	l, err := logging.New(logging.Options{
		Level:  a.cfg.LogLevel,
		Format: a.cfg.LogFormat,
		File:   a.cfg.LogFile,
		Output: a.opts.LogOutput,
	})
	if err != nil {
		return err
	}
	a.logging = l
	a.log = l.Component("app")
	a.onClose(func() { _ = l.Close() })
	return nil
}

func (a *Application) initWindow() error {
	b := a.opts.Backend
	if b == nil {
		term, err := backend.NewTerminal()
		if err != nil {
			return err
		}
		b = term
	}

	bindings, err := surfaceBindings(a.cfg.Bindings)
	if err != nil {
		return err
	}

	w, err := surface.Open(b,
		surface.WithLogger(a.logging.Logger()),
		surface.WithFrameRate(a.cfg.FrameRate),
		surface.WithBindings(bindings),
	)
	if err != nil {
		return err
	}
	a.window = w
	a.onClose(w.Close)
	return nil
}

func (a *Application) initHub() error {
	a.hub = mux.NewHub(
		mux.WithLogger(a.logging.Component("mux")),
		mux.WithTickInterval(a.cfg.TickInterval.Duration),
		mux.WithFatal(a.window.Fail),
		mux.WithHandlerOptions(event.WithSlowThreshold(time.Second/time.Duration(a.cfg.FrameRate))),
	)
	return a.hub.Attach(a.window)
}

func (a *Application) initMonitor() error {
	a.monitor = NewMonitor(a.window.Backend(), a.cfg.Bindings.Quit)
	a.monitor.Subscribe(a.hub)

	a.setQuit(a.cfg.Bindings.Quit)
	a.hub.Keyboard().KeyDown().Subscribe(event.WeakFunc(a, (*Application).onKeyDown))
	return nil
}

func (a *Application) initScripts() error {
	a.scripts = script.NewHost(a.hub,
		script.WithLogger(a.logging.Component("script")),
		script.WithTimeout(a.cfg.ScriptTimeout.Duration),
	)
	a.onClose(a.scripts.Close)

	var errs []error
	for _, path := range a.cfg.Scripts {
		if _, err := a.scripts.Load(path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *Application) initMetrics() error {
	a.collector = metrics.NewCollector(a.hub.Handlers()...)
	a.collector.SetLoop(a.window)
	if a.cfg.MetricsAddr == "" {
		return nil
	}

	reg, err := metrics.NewRegistry(a.collector)
	if err != nil {
		return err
	}
	srv := metrics.NewServer(a.cfg.MetricsAddr, reg, a.collector, a.logging.Component("metrics"))
	if err := srv.Start(); err != nil {
		return err
	}
	a.server = srv
	a.onClose(func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return nil
}

func (a *Application) initWatcher() error {
	if !a.opts.Watch || a.opts.ConfigPath == "" {
		return nil
	}
	w, err := config.NewWatcher(a.opts.ConfigPath, a.cfg,
		config.WithWatcherLogger(a.logging.Component("config")),
	)
	if err != nil {
		return err
	}
	a.watcher = w
	a.onClose(func() { _ = w.Close() })

	w.Changed().Subscribe(event.WeakFunc(a, (*Application).onConfigChange))
	a.collector.Add(w.Changed())
	return nil
}

// surfaceBindings parses the clipboard bindings. Empty strings disable a key.
func surfaceBindings(b config.Bindings) (surface.Bindings, error) {
	var out surface.Bindings
	for _, kb := range []struct {
		dst *backend.Binding
		src string
	}{
		{&out.Copy, b.Copy},
		{&out.Cut, b.Cut},
		{&out.Paste, b.Paste},
	} {
		if kb.src == "" {
			continue
		}
		parsed, err := backend.ParseKey(kb.src)
		if err != nil {
			return surface.Bindings{}, err
		}
		*kb.dst = parsed
	}
	return out, nil
}
