package event

import (
	"time"

	"github.com/rs/zerolog"
)

// HandlerOption configures a Handler.
type HandlerOption func(*handlerConfig)

// handlerConfig contains configuration for a handler.
type handlerConfig struct {
	name         string
	logger       zerolog.Logger
	panicHandler func(*PanicError)
	slowAfter    time.Duration
}

func defaultHandlerConfig() handlerConfig {
	return handlerConfig{
		name:   "anonymous",
		logger: zerolog.Nop(),
	}
}

// WithName sets the handler name used in logs, errors and metrics.
func WithName(name string) HandlerOption {
	return func(c *handlerConfig) {
		if name != "" {
			c.name = name
		}
	}
}

// WithLogger sets the logger used to report listener panics and pruning.
func WithLogger(l zerolog.Logger) HandlerOption {
	return func(c *handlerConfig) {
		c.logger = l
	}
}

// WithSlowThreshold makes the handler count and log every listener call
// that runs for at least d. Zero disables the check.
func WithSlowThreshold(d time.Duration) HandlerOption {
	return func(c *handlerConfig) {
		if d >= 0 {
			c.slowAfter = d
		}
	}
}

// WithPanicHandler sets a callback invoked after a listener panic was recovered.
func WithPanicHandler(h func(*PanicError)) HandlerOption {
	return func(c *handlerConfig) {
		c.panicHandler = h
	}
}
