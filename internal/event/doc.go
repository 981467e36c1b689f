// Package event provides the typed event registry and dispatcher for fanout.
//
// A Handler[E] owns the subscriber list for exactly one event category. Every
// listener that wants to observe that category subscribes through a Ref, a
// non-owning handle that the handler resolves on each delivery. The handler
// never keeps a listener alive: when the owner drops its last reference the
// subscription goes dead and is pruned lazily on the next Fire.
//
// # Architecture
//
//	              ┌────────────────────────────────────┐
//	  Fire(e) ──▶ │            Handler[E]              │
//	              │  active:  [ref1, ref2, ref3]       │──▶ Process(e) in order
//	              │  pending: [ref4]  (added in Fire)  │
//	              └────────────────────────────────────┘
//	                              │
//	                              ▼
//	              dispatch.Executor (panic isolation)
//
// # Delivery Rules
//
//   - Listeners are visited in subscription order.
//   - A ref that no longer resolves is dropped permanently after the pass.
//   - Subscriptions made while a pass is running go to the pending buffer and
//     first see the next Fire, never the current one.
//   - A panicking listener is recovered and reported; the remaining listeners
//     of the same Fire still run.
//
// # Subscription Handles
//
// Three kinds of Ref are provided:
//
//   - Weak: a weak pointer to a value whose pointer type implements Listener[E].
//   - WeakFunc: a weak pointer plus a method expression, for observers that
//     serve several categories with differently named methods.
//   - Probe: a listener plus an owner-supplied liveness probe, for listeners
//     whose end of life is an explicit event rather than garbage collection.
//
// Weak and WeakFunc panic for zero-size types and for pointer-free types
// smaller than 16 bytes. The collector never frees the former individually
// and may keep the latter alive through a neighbour in the same tiny block.
// Give such listeners a Probe instead.
//
// # Basic Usage
//
//	type Logger struct{ lines []string }
//
//	func (l *Logger) Process(e events.KeyDownEvent) {
//	    l.lines = append(l.lines, string(e.Rune))
//	}
//
//	h := event.NewHandler[events.KeyDownEvent](event.WithName("keydown"))
//	logger := &Logger{}
//	h.Subscribe(event.Weak[events.KeyDownEvent](logger))
//	h.Fire(events.KeyDownEvent{Rune: 'a'})
//
// An observer serving several categories:
//
//	type Monitor struct{ ... }
//
//	func (m *Monitor) OnKeyDown(e events.KeyDownEvent) { ... }
//	func (m *Monitor) OnResize(e events.ResizeEvent)   { ... }
//
//	keyDown.Subscribe(event.WeakFunc(mon, (*Monitor).OnKeyDown))
//	resized.Subscribe(event.WeakFunc(mon, (*Monitor).OnResize))
//
// # Thread Safety
//
// Handlers are designed for a single delivery goroutine, but they are safe for
// concurrent use: a mutex guards the active and pending lists and is never held
// while listeners run. Listeners must manage their own thread safety.
package event
