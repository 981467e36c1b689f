package metrics

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/fanout/internal/event"
)

type loop struct{ frames, panics uint64 }

func (l loop) Frames() uint64 { return l.frames }
func (l loop) Panics() uint64 { return l.panics }

type counter struct{ n *int }

func (c *counter) Process(int) { *c.n++ }

// handlers returns two handlers with known statistics.
func handlers(t *testing.T) (*event.Handler[int], *event.Handler[string]) {
	t.Helper()
	nums := event.NewHandler[int](event.WithName("test.nums"))
	words := event.NewHandler[string](event.WithName("test.words"))

	n := 0
	c := &counter{n: &n}
	nums.Subscribe(event.Weak[int](c))
	nums.Subscribe(event.Probe[int](event.ListenerFunc[int](func(int) { panic("boom") }), func() bool { return true }))
	nums.Fire(1)
	nums.Fire(2)
	runtime.KeepAlive(c)
	require.Equal(t, 2, n)

	words.Fire("nobody")
	return nums, words
}

func metricFor(t *testing.T, families []*dto.MetricFamily, name, handler string) *dto.Metric {
	t.Helper()
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if handler == "" {
				return m
			}
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "handler" && lp.GetValue() == handler {
					return m
				}
			}
		}
	}
	t.Fatalf("metric %s{handler=%q} not found", name, handler)
	return nil
}

func TestCollector(t *testing.T) {
	nums, words := handlers(t)
	c := NewCollector(nums)
	c.Add(words)
	c.SetLoop(loop{frames: 42, panics: 1})

	reg, err := NewRegistry(c)
	require.NoError(t, err)
	families, err := reg.Gather()
	require.NoError(t, err)

	assert.Equal(t, 2.0, metricFor(t, families, "fanout_handler_fired_total", "test.nums").GetCounter().GetValue())
	assert.Equal(t, 2.0, metricFor(t, families, "fanout_handler_delivered_total", "test.nums").GetCounter().GetValue())
	assert.Equal(t, 2.0, metricFor(t, families, "fanout_handler_panics_total", "test.nums").GetCounter().GetValue())
	assert.Equal(t, 2.0, metricFor(t, families, "fanout_handler_listeners", "test.nums").GetGauge().GetValue())
	assert.Equal(t, 0.0, metricFor(t, families, "fanout_handler_slow_total", "test.nums").GetCounter().GetValue())
	assert.Equal(t, 1.0, metricFor(t, families, "fanout_handler_fired_total", "test.words").GetCounter().GetValue())
	assert.Equal(t, 0.0, metricFor(t, families, "fanout_handler_listeners", "test.words").GetGauge().GetValue())
	assert.Equal(t, 42.0, metricFor(t, families, "fanout_loop_frames_total", "").GetCounter().GetValue())
	assert.Equal(t, 1.0, metricFor(t, families, "fanout_loop_panics_total", "").GetCounter().GetValue())
}

func TestCollectorWithoutLoop(t *testing.T) {
	nums, _ := handlers(t)
	c := NewCollector(nums)
	// six series for one handler
	assert.Equal(t, 6, testutil.CollectAndCount(c))
}

func TestServerRoutes(t *testing.T) {
	nums, words := handlers(t)
	c := NewCollector(nums, words)
	reg, err := NewRegistry(c)
	require.NoError(t, err)
	s := NewServer("127.0.0.1:0", reg, c, zerolog.Nop())

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())

	rr = httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `fanout_handler_fired_total{handler="test.nums"} 2`)
	assert.Contains(t, rr.Body.String(), "go_goroutines")

	rr = httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/handlers", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var got []HandlerStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, HandlerStatus{Name: "test.nums", Listeners: 2, Fired: 2, Delivered: 2, Panicked: 2}, got[0])
	assert.Equal(t, "test.words", got[1].Name)

	rr = httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/metrics", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestServerLifecycle(t *testing.T) {
	c := NewCollector()
	reg, err := NewRegistry(c)
	require.NoError(t, err)
	s := NewServer("127.0.0.1:0", reg, c, zerolog.Nop())

	require.NoError(t, s.Shutdown(context.Background()), "shutdown before start is a no-op")
	require.NoError(t, s.Start())
	assert.ErrorIs(t, s.Start(), ErrServerStarted)

	resp, err := http.Get("http://" + s.Addr() + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	require.NoError(t, s.Shutdown(context.Background()))
}
