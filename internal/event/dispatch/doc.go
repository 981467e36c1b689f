// Package dispatch provides guarded listener invocation for event handlers.
//
// A handler delivers one event to many listeners in a single synchronous pass.
// A misbehaving listener must not abort that pass, so every invocation goes
// through an Executor that recovers panics, captures the stack and measures
// how long the listener ran.
//
// # Usage
//
//	exec := dispatch.NewExecutor(
//	    dispatch.WithPanicHandler(func(value any, stack []byte) {
//	        log.Printf("listener panic: %v\n%s", value, stack)
//	    }),
//	)
//	result := exec.Execute(func() { listener.Process(evt) })
//	if result.Panicked {
//	    // listener misbehaved; continue with the next one
//	}
package dispatch
