package event

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/fanout/internal/event/dispatch"
)

// Handler is the registry and dispatcher for one event category.
//
// The active list is only ever replaced, never mutated in place, while a
// Fire pass is running; subscriptions made during a pass are parked in the
// pending buffer and merged after it.
type Handler[E any] struct {
	name         string
	log          zerolog.Logger
	exec         *dispatch.Executor
	panicHandler func(*PanicError)
	slowAfter    time.Duration

	mu      sync.Mutex
	active  []*subscription[E]
	pending []*subscription[E]
	passes  int

	// Stats
	fired     atomic.Uint64
	delivered atomic.Uint64
	pruned    atomic.Uint64
	panicked  atomic.Uint64
	slow      atomic.Uint64
}

// NewHandler creates an empty handler.
func NewHandler[E any](opts ...HandlerOption) *Handler[E] {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	h := &Handler[E]{
		name:         cfg.name,
		log:          cfg.logger.With().Str("handler", cfg.name).Logger(),
		panicHandler: cfg.panicHandler,
		slowAfter:    cfg.slowAfter,
	}
	h.exec = dispatch.NewExecutor(dispatch.WithPanicHandler(h.reportPanic))
	return h
}

// Name returns the handler name.
func (h *Handler[E]) Name() string {
	return h.name
}

// Subscribe adds ref to the handler. It never fails; a nil ref is ignored.
//
// Subscribe may be called from inside a listener while this or any other
// handler is firing. A subscription made during a pass of this handler is
// delivered starting with the next Fire.
func (h *Handler[E]) Subscribe(ref Ref[E]) {
	if ref == nil {
		return
	}
	sub := &subscription[E]{ref: ref}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.passes > 0 {
		h.pending = append(h.pending, sub)
		return
	}
	h.active = append(h.active, sub)
}

// Fire delivers event to every live subscriber in subscription order.
// Dead subscriptions are removed as a side effect. Fire does not return until
// every listener has run.
func (h *Handler[E]) Fire(event E) {
	h.fired.Add(1)

	subs := h.beginPass()

	sawDead := false
	for _, sub := range subs {
		if sub.dead.Load() {
			sawDead = true
			continue
		}

		listener, ok := sub.ref.Resolve()
		if !ok {
			sub.dead.Store(true)
			sawDead = true
			continue
		}

		result := h.exec.Execute(func() { listener.Process(event) })
		if result.IsSuccess() {
			h.delivered.Add(1)
		}
		if h.slowAfter > 0 && result.Duration >= h.slowAfter {
			h.slow.Add(1)
			h.log.Warn().Dur("took", result.Duration).Dur("threshold", h.slowAfter).Msg("slow listener")
		}
	}

	h.endPass(sawDead)
}

// beginPass takes the snapshot a pass iterates over.
// Pending subscriptions were added strictly before this pass began, so they
// are merged first.
func (h *Handler[E]) beginPass() []*subscription[E] {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.pending) > 0 {
		h.active = slices.Concat(h.active, h.pending)
		h.pending = nil
	}
	h.passes++
	return h.active
}

// endPass prunes dead subscriptions and, once no pass is running, merges
// the pending buffer.
func (h *Handler[E]) endPass(sawDead bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.passes--

	if sawDead {
		kept := make([]*subscription[E], 0, len(h.active))
		for _, sub := range h.active {
			if !sub.dead.Load() {
				kept = append(kept, sub)
			}
		}
		if removed := len(h.active) - len(kept); removed > 0 {
			h.pruned.Add(uint64(removed))
			h.log.Debug().Int("pruned", removed).Int("remaining", len(kept)).Msg("pruned dead subscriptions")
		}
		h.active = kept
	}

	if h.passes == 0 && len(h.pending) > 0 {
		h.active = slices.Concat(h.active, h.pending)
		h.pending = nil
	}
}

// reportPanic is the executor's panic handler.
func (h *Handler[E]) reportPanic(value any, stack []byte) {
	h.panicked.Add(1)

	perr := &PanicError{
		Handler: h.name,
		Value:   value,
		Stack:   string(stack),
	}
	h.log.Error().Err(perr).Str("stack", perr.Stack).Msg("listener panicked")

	if h.panicHandler != nil {
		h.panicHandler(perr)
	}
}

// Len returns the number of subscriptions in the active list.
// Dead subscriptions are counted until a Fire prunes them.
func (h *Handler[E]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.active)
}

// Pending returns the number of subscriptions waiting to be merged.
func (h *Handler[E]) Pending() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pending)
}

// Stats returns delivery statistics.
func (h *Handler[E]) Stats() Stats {
	return Stats{
		Fired:     h.fired.Load(),
		Delivered: h.delivered.Load(),
		Pruned:    h.pruned.Load(),
		Panicked:  h.panicked.Load(),
		Slow:      h.slow.Load(),
	}
}

// Stats contains delivery statistics for a handler.
type Stats struct {
	// Fired is the number of Fire calls.
	Fired uint64

	// Delivered is the number of listener invocations that returned normally.
	Delivered uint64

	// Pruned is the number of dead subscriptions removed.
	Pruned uint64

	// Panicked is the number of listener invocations that panicked.
	Panicked uint64

	// Slow is the number of listener invocations that reached the slow
	// threshold.
	Slow uint64
}

// Reporter is implemented by every Handler regardless of its event type.
// It lets metrics and diagnostics walk a heterogeneous set of handlers.
type Reporter interface {
	Name() string
	Len() int
	Stats() Stats
}

var _ Reporter = (*Handler[struct{}])(nil)
