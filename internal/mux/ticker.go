package mux

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dshills/fanout/internal/event"
	"github.com/dshills/fanout/internal/event/events"
	"github.com/dshills/fanout/internal/source"
)

// Ticker fires an update event on every tick of one repeating interval.
// It is registered once and never re-armed.
type Ticker struct {
	arming
	update *event.Handler[events.UpdateEvent]
	every  time.Duration
	tick   atomic.Uint64
}

// NewTicker creates an unarmed ticker firing every DefaultTickInterval
// unless WithTickInterval says otherwise.
func NewTicker(opts ...Option) *Ticker {
	o := newOptions(opts)
	return &Ticker{
		update: newHandler[events.UpdateEvent](o, "timer.update"),
		every:  o.tickInterval,
	}
}

// Update returns the update handler.
func (t *Ticker) Update() *event.Handler[events.UpdateEvent] {
	return t.update
}

// Interval returns the tick period.
func (t *Ticker) Interval() time.Duration {
	return t.every
}

// Start registers the interval with s. It may be called once.
func (t *Ticker) Start(s source.IntervalScheduler) error {
	if err := t.arm(); err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("%w: %w", ErrInterval, source.ErrNilSource)
	}
	if err := s.SetInterval(t.onTick, t.every); err != nil {
		return fmt.Errorf("%w: %w", ErrInterval, err)
	}
	return nil
}

// Count returns the number of ticks fired.
func (t *Ticker) Count() uint64 {
	return t.tick.Load()
}

// Handlers returns the update handler.
func (t *Ticker) Handlers() []event.Reporter {
	return []event.Reporter{t.update}
}

func (t *Ticker) onTick() {
	t.update.Fire(events.UpdateEvent{Tick: t.tick.Add(1)})
}
