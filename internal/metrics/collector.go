// Package metrics exposes handler delivery statistics to Prometheus.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dshills/fanout/internal/event"
)

// Namespace prefixes every metric name.
const Namespace = "fanout"

// LoopStats is implemented by an event loop that counts frames and
// recovered callback panics.
type LoopStats interface {
	Frames() uint64
	Panics() uint64
}

// Collector reads handler statistics at scrape time.
// Handlers are labelled by name.
type Collector struct {
	mu        sync.RWMutex
	reporters []event.Reporter
	loop      LoopStats

	fired     *prometheus.Desc
	delivered *prometheus.Desc
	pruned    *prometheus.Desc
	panicked  *prometheus.Desc
	slow      *prometheus.Desc
	listeners *prometheus.Desc
	frames    *prometheus.Desc
	loopPanic *prometheus.Desc
}

// NewCollector returns a collector over the given handlers.
func NewCollector(reporters ...event.Reporter) *Collector {
	handlerDesc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "handler", name),
			help, []string{"handler"}, nil,
		)
	}
	return &Collector{
		reporters: append([]event.Reporter(nil), reporters...),
		fired:     handlerDesc("fired_total", "Events fired on the handler."),
		delivered: handlerDesc("delivered_total", "Listener invocations that returned normally."),
		pruned:    handlerDesc("pruned_total", "Dead subscriptions removed."),
		panicked:  handlerDesc("panics_total", "Listener invocations that panicked."),
		slow:      handlerDesc("slow_total", "Listener invocations that reached the slow threshold."),
		listeners: handlerDesc("listeners", "Active subscriptions, dead ones included until pruned."),
		frames: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "loop", "frames_total"),
			"Frames rendered by the event loop.", nil, nil,
		),
		loopPanic: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "loop", "panics_total"),
			"Loop callbacks that panicked.", nil, nil,
		),
	}
}

// Add registers more handlers.
func (c *Collector) Add(reporters ...event.Reporter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reporters = append(c.reporters, reporters...)
}

// SetLoop sets the event loop whose counters are exported.
func (c *Collector) SetLoop(loop LoopStats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loop = loop
}

// Reporters returns the handlers being collected.
func (c *Collector) Reporters() []event.Reporter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]event.Reporter(nil), c.reporters...)
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.fired
	ch <- c.delivered
	ch <- c.pruned
	ch <- c.panicked
	ch <- c.slow
	ch <- c.listeners
	ch <- c.frames
	ch <- c.loopPanic
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	reporters := append([]event.Reporter(nil), c.reporters...)
	loop := c.loop
	c.mu.RUnlock()

	for _, r := range reporters {
		name := r.Name()
		st := r.Stats()
		ch <- prometheus.MustNewConstMetric(c.fired, prometheus.CounterValue, float64(st.Fired), name)
		ch <- prometheus.MustNewConstMetric(c.delivered, prometheus.CounterValue, float64(st.Delivered), name)
		ch <- prometheus.MustNewConstMetric(c.pruned, prometheus.CounterValue, float64(st.Pruned), name)
		ch <- prometheus.MustNewConstMetric(c.panicked, prometheus.CounterValue, float64(st.Panicked), name)
		ch <- prometheus.MustNewConstMetric(c.slow, prometheus.CounterValue, float64(st.Slow), name)
		ch <- prometheus.MustNewConstMetric(c.listeners, prometheus.GaugeValue, float64(r.Len()), name)
	}

	if loop != nil {
		ch <- prometheus.MustNewConstMetric(c.frames, prometheus.CounterValue, float64(loop.Frames()))
		ch <- prometheus.MustNewConstMetric(c.loopPanic, prometheus.CounterValue, float64(loop.Panics()))
	}
}

var _ prometheus.Collector = (*Collector)(nil)
