// Package config loads and validates fanout settings.
//
// Settings come from a TOML or YAML file layered over Default, with command
// line flags applied last by the caller. A Watcher reloads the file when it
// changes and fires the new settings to subscribers.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dshills/fanout/internal/backend"
	"github.com/dshills/fanout/internal/logging"
)

// Limits enforced by Validate.
const (
	MinFrameRate = 1
	MaxFrameRate = 1000
)

// Config holds runtime settings.
type Config struct {
	LogLevel      string   `toml:"log_level" yaml:"log_level"`
	LogFormat     string   `toml:"log_format" yaml:"log_format"`
	LogFile       string   `toml:"log_file" yaml:"log_file"`
	FrameRate     int      `toml:"frame_rate" yaml:"frame_rate"`
	TickInterval  Duration `toml:"tick_interval" yaml:"tick_interval"`
	MetricsAddr   string   `toml:"metrics_addr" yaml:"metrics_addr"`
	Scripts       []string `toml:"scripts" yaml:"scripts"`
	ScriptTimeout Duration `toml:"script_timeout" yaml:"script_timeout"`
	Bindings      Bindings `toml:"bindings" yaml:"bindings"`
}

// Bindings holds key binding strings such as "ctrl+c".
type Bindings struct {
	Copy  string `toml:"copy" yaml:"copy"`
	Cut   string `toml:"cut" yaml:"cut"`
	Paste string `toml:"paste" yaml:"paste"`
	Quit  string `toml:"quit" yaml:"quit"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:      "info",
		LogFormat:     logging.FormatConsole,
		FrameRate:     60,
		TickInterval:  Duration{10 * time.Millisecond},
		ScriptTimeout: Duration{100 * time.Millisecond},
		Bindings: Bindings{
			Copy:  "ctrl+c",
			Cut:   "ctrl+x",
			Paste: "ctrl+v",
			Quit:  "ctrl+q",
		},
	}
}

// Validate checks every setting and joins all problems found.
func (c Config) Validate() error {
	var errs []error
	add := func(field, msg string, value any) {
		errs = append(errs, &ValidationError{Field: field, Message: msg, Value: value})
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		add("log_level", "must be trace, debug, info, warn, error or off", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", logging.FormatConsole, logging.FormatJSON:
	default:
		add("log_format", "must be console or json", c.LogFormat)
	}
	if c.FrameRate < MinFrameRate || c.FrameRate > MaxFrameRate {
		add("frame_rate", fmt.Sprintf("must be between %d and %d", MinFrameRate, MaxFrameRate), c.FrameRate)
	}
	if c.TickInterval.Duration <= 0 {
		add("tick_interval", "must be positive", c.TickInterval)
	}
	if c.ScriptTimeout.Duration < 0 {
		add("script_timeout", "must not be negative", c.ScriptTimeout)
	}

	seen := make(map[backend.Binding]string)
	for _, b := range []struct {
		field string
		value string
	}{
		{"bindings.copy", c.Bindings.Copy},
		{"bindings.cut", c.Bindings.Cut},
		{"bindings.paste", c.Bindings.Paste},
		{"bindings.quit", c.Bindings.Quit},
	} {
		if b.value == "" {
			continue
		}
		parsed, err := backend.ParseKey(b.value)
		if err != nil {
			add(b.field, err.Error(), b.value)
			continue
		}
		if other, dup := seen[parsed]; dup {
			add(b.field, "same key as "+other, b.value)
			continue
		}
		seen[parsed] = b.field
	}

	return errors.Join(errs...)
}

// Duration is a time.Duration written as a string such as "10ms".
type Duration struct {
	time.Duration
}

// String returns the duration in time.Duration notation.
func (d Duration) String() string {
	return d.Duration.String()
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}
