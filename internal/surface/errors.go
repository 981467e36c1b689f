package surface

import (
	"errors"

	"github.com/dshills/fanout/internal/source"
)

// Surface errors.
var (
	// ErrClosed is returned once a window has stopped.
	ErrClosed = source.ErrClosed

	// ErrUnavailable indicates the backend could not be initialized.
	ErrUnavailable = errors.New("surface unavailable")

	// ErrNoBackend indicates Open was called without a backend.
	ErrNoBackend = errors.New("no backend")

	// ErrAlreadyRunning indicates Run was called on a running window.
	ErrAlreadyRunning = errors.New("window already running")

	// ErrNoDimensions indicates the surface reports no usable size.
	ErrNoDimensions = errors.New("surface has no dimensions")

	// ErrInvalidEventName indicates an empty raw event name.
	ErrInvalidEventName = errors.New("invalid event name")

	// ErrNilCallback indicates a nil callback was registered.
	ErrNilCallback = errors.New("nil callback")

	// ErrInvalidInterval indicates a non-positive interval.
	ErrInvalidInterval = errors.New("invalid interval")
)
