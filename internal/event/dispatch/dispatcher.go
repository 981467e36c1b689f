package dispatch

import "time"

// Result represents the outcome of one listener invocation.
type Result struct {
	// Panicked is true if the listener panicked. The value and stack go
	// to the executor's panic handler.
	Panicked bool

	// Duration is how long the listener took to run.
	Duration time.Duration
}

// IsSuccess returns true if the listener returned normally.
func (r Result) IsSuccess() bool {
	return !r.Panicked
}

// PanicHandler is called when a listener panics during execution.
// It receives the panic value and the stack trace.
type PanicHandler func(panicValue any, stack []byte)

// defaultPanicHandler is a no-op panic handler.
func defaultPanicHandler(any, []byte) {}
