package dispatch

import (
	"runtime/debug"
	"time"
)

// Executor runs listener invocations with panic recovery and timing.
type Executor struct {
	panicHandler PanicHandler
}

// NewExecutor creates a new executor with the given options.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{
		panicHandler: defaultPanicHandler,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithPanicHandler sets the panic handler for the executor.
func WithPanicHandler(h PanicHandler) ExecutorOption {
	return func(e *Executor) {
		if h != nil {
			e.panicHandler = h
		}
	}
}

// Execute runs call and returns the result.
// A panic inside call is recovered and reported, never propagated.
func (e *Executor) Execute(call func()) (result Result) {
	start := time.Now()

	defer func() {
		result.Duration = time.Since(start)

		if r := recover(); r != nil {
			stack := debug.Stack()

			result.Panicked = true

			// A panicking panic handler must not take the dispatch pass down with it.
			func() {
				defer func() {
					_ = recover()
				}()
				e.panicHandler(r, stack)
			}()
		}
	}()

	call()
	return result
}
