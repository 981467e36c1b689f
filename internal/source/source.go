// Package source defines the capabilities multiplexers attach to: a source
// of named raw events, a frame requester, an interval scheduler and a
// dimension query.
//
// Registrations are permanent. There is no removal; a source that goes away
// takes its registrations with it.
package source

import (
	"errors"
	"fmt"
	"time"

	"github.com/dshills/fanout/internal/backend"
)

// Raw event names.
const (
	KeyDown   = "keydown"
	KeyUp     = "keyup"
	Click     = "click"
	MouseMove = "mousemove"
	Wheel     = "wheel"
	Copy      = "copy"
	Paste     = "paste"
	Cut       = "cut"
	Resize    = "resize"

	// Produced by surfaces in addition to the names above.
	MouseDown = "mousedown"
	MouseUp   = "mouseup"
	Focus     = "focus"
	Blur      = "blur"
)

var (
	// ErrClosed is returned by sources and schedulers that have stopped.
	// Multiplexers treat it as the end of a chain rather than a failure.
	ErrClosed = errors.New("source closed")

	// ErrRegistration is matched by every RegistrationError.
	ErrRegistration = errors.New("listener registration failed")

	// ErrNilSource is returned when attaching to a nil source.
	ErrNilSource = errors.New("nil event source")
)

// Callback receives one raw event.
type Callback func(raw backend.Event)

// Source is a provider of named raw events.
type Source interface {
	// AddListener registers cb for every future raw event called name.
	// An error means the registration did not happen and is fatal to the
	// caller's setup.
	AddListener(name string, cb Callback) error
}

// FrameRequester calls fn once, before the next rendered frame.
type FrameRequester interface {
	RequestFrame(fn func(frameTime time.Time)) error
}

// IntervalScheduler calls fn repeatedly, every interval, until it stops.
type IntervalScheduler interface {
	SetInterval(fn func(), every time.Duration) error
}

// Dimensions reports the current size of the global surface.
type Dimensions interface {
	Width() (int, error)
	Height() (int, error)
}

// RegistrationError reports a raw listener that could not be registered.
type RegistrationError struct {
	// Event is the raw event name.
	Event string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *RegistrationError) Error() string {
	return fmt.Sprintf("register %q listener: %v", e.Event, e.Err)
}

// Unwrap returns the underlying error.
func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is to match RegistrationError with ErrRegistration.
func (e *RegistrationError) Is(target error) bool {
	return target == ErrRegistration
}
