// Package logging builds the zerolog loggers used across fanout.
//
// The terminal belongs to the UI while the application runs, so log output
// goes to a file or is discarded. The minimum level can be changed after
// construction, which is how configuration reloads reach every component
// holding a derived logger.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// ErrInvalidLevel is returned for an unknown level name.
var ErrInvalidLevel = errors.New("invalid log level")

// ErrInvalidFormat is returned for an unknown format name.
var ErrInvalidFormat = errors.New("invalid log format")

// Options configures a Logging instance.
type Options struct {
	// Level is the minimum level name: trace, debug, info, warn, error or off.
	Level string

	// Format is console or json. Empty means console.
	Format string

	// File is appended to when set. Empty discards output unless Output is set.
	File string

	// Output overrides File.
	Output io.Writer
}

// Logging owns the root logger and its destination.
type Logging struct {
	logger zerolog.Logger
	gate   *levelGate
	closer io.Closer
}

// New builds a Logging from opts.
func New(opts Options) (*Logging, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	out := opts.Output
	var closer io.Closer
	if out == nil {
		if opts.File == "" {
			out = io.Discard
		} else {
			f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, fmt.Errorf("open log file %s: %w", opts.File, err)
			}
			out, closer = f, f
		}
	}

	switch strings.ToLower(opts.Format) {
	case "", FormatConsole:
		out = zerolog.ConsoleWriter{Out: out, NoColor: true, TimeFormat: time.RFC3339}
	case FormatJSON:
	default:
		if closer != nil {
			_ = closer.Close()
		}
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, opts.Format)
	}

	gate := &levelGate{out: out}
	gate.set(level)

	return &Logging{
		logger: zerolog.New(gate).With().Timestamp().Logger(),
		gate:   gate,
		closer: closer,
	}, nil
}

// Logger returns the root logger.
func (l *Logging) Logger() zerolog.Logger {
	return l.logger
}

// Component returns a child logger tagged with the component name.
func (l *Logging) Component(name string) zerolog.Logger {
	return l.logger.With().Str("component", name).Logger()
}

// Level returns the current minimum level.
func (l *Logging) Level() zerolog.Level {
	return l.gate.get()
}

// SetLevel changes the minimum level for every logger derived from this one.
func (l *Logging) SetLevel(name string) error {
	level, err := ParseLevel(name)
	if err != nil {
		return err
	}
	l.gate.set(level)
	return nil
}

// Close releases the log file, if any.
func (l *Logging) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// ParseLevel converts a level name to a zerolog level. Empty means info.
func ParseLevel(name string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return zerolog.TraceLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "off", "disabled":
		return zerolog.Disabled, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("%w: %q", ErrInvalidLevel, name)
	}
}

// levelGate drops writes below a level that can change at runtime.
type levelGate struct {
	out   io.Writer
	level atomic.Int32
}

func (g *levelGate) set(l zerolog.Level) { g.level.Store(int32(l)) }

func (g *levelGate) get() zerolog.Level { return zerolog.Level(g.level.Load()) }

func (g *levelGate) Write(p []byte) (int, error) {
	return g.out.Write(p)
}

func (g *levelGate) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	floor := g.get()
	if floor == zerolog.Disabled || (l != zerolog.NoLevel && l < floor) {
		return len(p), nil
	}
	return g.out.Write(p)
}
