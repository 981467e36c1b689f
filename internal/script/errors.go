package script

import (
	"errors"
	"fmt"
)

// Errors returned by the script host.
var (
	// ErrHostClosed is returned when loading into a closed host.
	ErrHostClosed = errors.New("script host is closed")

	// ErrScriptClosed is returned when calling into a closed script.
	ErrScriptClosed = errors.New("script is closed")

	// ErrUnknownEvent is raised in Lua by events.on for an unknown name.
	ErrUnknownEvent = errors.New("unknown event name")
)

// Error reports a failure loading or running a script.
type Error struct {
	// Script is the script name, usually its file name.
	Script string
	// Err is the underlying Lua or I/O error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("script %s: %v", e.Script, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}
