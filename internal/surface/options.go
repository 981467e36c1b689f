package surface

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/fanout/internal/backend"
)

// DefaultFrameRate is the number of frames per second a window renders.
const DefaultFrameRate = 60

// Bindings are the keys that produce clipboard events.
type Bindings struct {
	Copy  backend.Binding
	Cut   backend.Binding
	Paste backend.Binding
}

// DefaultBindings returns ctrl+c, ctrl+x and ctrl+v.
func DefaultBindings() Bindings {
	return Bindings{
		Copy:  backend.MustParseKey("ctrl+c"),
		Cut:   backend.MustParseKey("ctrl+x"),
		Paste: backend.MustParseKey("ctrl+v"),
	}
}

// Option configures a Window or Element.
type Option func(*config)

type config struct {
	log       zerolog.Logger
	frameRate int
	bindings  Bindings
}

func defaultConfig() config {
	return config{
		log:       zerolog.Nop(),
		frameRate: DefaultFrameRate,
		bindings:  DefaultBindings(),
	}
}

func (c config) frameInterval() time.Duration {
	return time.Second / time.Duration(c.frameRate)
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) {
		c.log = l
	}
}

// WithFrameRate sets the frames per second. Non-positive values are ignored.
func WithFrameRate(fps int) Option {
	return func(c *config) {
		if fps > 0 {
			c.frameRate = fps
		}
	}
}

// WithBindings sets the clipboard key bindings. Zero bindings are disabled.
func WithBindings(b Bindings) Option {
	return func(c *config) {
		c.bindings = b
	}
}
