package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Load reads the file at path over Default. The format is chosen by
// extension: .toml, .yaml or .yml. Unknown keys are rejected. The result is
// not validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, ErrEmptyPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := Decode(&cfg, Format(path), data); err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.Path = path
		}
		return Default(), err
	}
	return cfg, nil
}

// Format returns the format name for path's extension, or the extension
// itself when it is not supported.
func Format(path string) string {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		return "toml"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return ext
	}
}

// Decode decodes data in the given format into cfg. Keys missing from data
// keep their current values.
func Decode(cfg *Config, format string, data []byte) error {
	switch format {
	case "toml":
		dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return &ParseError{Path: "<toml>", Err: err}
		}
	case "yaml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return &ParseError{Path: "<yaml>", Err: err}
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return nil
}
