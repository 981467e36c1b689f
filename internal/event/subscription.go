package event

import (
	"fmt"
	"reflect"
	"sync/atomic"
	"weak"
)

// Listener is implemented by observers of one event type.
type Listener[E any] interface {
	Process(event E)
}

// ListenerFunc adapts a plain function to the Listener interface.
// Functions cannot be weakly referenced; pair them with Probe.
type ListenerFunc[E any] func(event E)

// Process calls f(event).
func (f ListenerFunc[E]) Process(event E) {
	f(event)
}

// Ref is a non-owning subscription handle.
// Resolve returns the listener while it is alive. Once Resolve reports false
// the handle is dead and the handler discards it.
type Ref[E any] interface {
	Resolve() (Listener[E], bool)
}

// weakRef resolves through a weak pointer. bind must not capture the target.
type weakRef[E any, T any] struct {
	ptr  weak.Pointer[T]
	bind func(*T) Listener[E]
}

func (r weakRef[E, T]) Resolve() (Listener[E], bool) {
	p := r.ptr.Value()
	if p == nil {
		return nil, false
	}
	return r.bind(p), true
}

// tinySize is the runtime's tiny allocator block size. Pointer-free objects
// smaller than this share a block with their neighbours and are freed only
// when every object in the block is unreachable.
const tinySize = 16

// mustBeWeakable panics unless a weak pointer to T is released when its
// target becomes unreachable. Zero-size values all share one address and
// small pointer-free values may share a tiny block, so neither ever
// reliably dies.
func mustBeWeakable[T any]() {
	t := reflect.TypeFor[T]()
	switch {
	case t.Size() == 0:
		panic(fmt.Sprintf("event: %s has zero size and cannot be weakly referenced; use Probe", t))
	case t.Size() < tinySize && !hasPointers(t):
		panic(fmt.Sprintf("event: %s is smaller than %d bytes with no pointers and cannot be weakly referenced; use Probe", t, tinySize))
	}
}

func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Map, reflect.Chan,
		reflect.Func, reflect.Interface, reflect.Slice, reflect.String:
		return true
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
	}
	return false
}

// Weak returns a handle that does not keep listener alive.
// The type parameter E selects the category when *T implements several.
// Returns nil for a nil listener.
//
// T must be at least 16 bytes or contain a pointer, and must not be zero
// size. Smaller values are not released individually by the collector, so
// Weak panics for them; subscribe such listeners with Probe.
func Weak[E any, T any, P interface {
	*T
	Listener[E]
}](listener P) Ref[E] {
	if listener == nil {
		return nil
	}
	mustBeWeakable[T]()
	return weakRef[E, T]{
		ptr:  weak.Make((*T)(listener)),
		bind: func(p *T) Listener[E] { return P(p) },
	}
}

// boundMethod binds a method expression to a resolved owner.
type boundMethod[E any, T any] struct {
	owner  *T
	method func(*T, E)
}

func (b boundMethod[E, T]) Process(event E) {
	b.method(b.owner, event)
}

// WeakFunc returns a handle that calls method on owner while owner is alive.
// method should be a method expression such as (*Monitor).OnKeyDown; a closure
// that captures owner would keep it alive forever.
// Returns nil if owner or method is nil. T has the same size requirements
// as for Weak.
func WeakFunc[E any, T any](owner *T, method func(*T, E)) Ref[E] {
	if owner == nil || method == nil {
		return nil
	}
	mustBeWeakable[T]()
	return weakRef[E, T]{
		ptr: weak.Make(owner),
		bind: func(p *T) Listener[E] {
			return boundMethod[E, T]{owner: p, method: method}
		},
	}
}

// probeRef resolves while its owner-supplied probe reports alive.
type probeRef[E any] struct {
	listener Listener[E]
	alive    func() bool
	dead     atomic.Bool
}

func (r *probeRef[E]) Resolve() (Listener[E], bool) {
	if r.dead.Load() {
		return nil, false
	}
	if !r.alive() {
		r.dead.Store(true)
		return nil, false
	}
	return r.listener, true
}

// Probe returns a handle whose liveness is decided by alive.
// Once alive reports false the handle stays dead. The handler holds listener
// until the next Fire after death prunes it.
// Returns nil if listener or alive is nil.
func Probe[E any](listener Listener[E], alive func() bool) Ref[E] {
	if listener == nil || alive == nil {
		return nil
	}
	return &probeRef[E]{listener: listener, alive: alive}
}

// subscription is one entry in a handler's active or pending list.
type subscription[E any] struct {
	ref  Ref[E]
	dead atomic.Bool
}
