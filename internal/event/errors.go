package event

import (
	"errors"
	"fmt"
)

// ErrListenerPanic is matched by every PanicError.
var ErrListenerPanic = errors.New("listener panicked")

// PanicError describes a listener that panicked during Fire.
type PanicError struct {
	// Handler is the name of the handler that was firing.
	Handler string

	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace at the time of the panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("listener panic in handler %s: %v", e.Handler, e.Value)
}

// Is allows errors.Is to match PanicError with ErrListenerPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrListenerPanic
}
