package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// ErrServerStarted is returned by Start when the server is already listening.
var ErrServerStarted = errors.New("metrics server already started")

// NewRegistry returns a registry holding c plus the Go runtime and process
// collectors.
func NewRegistry(c *Collector) (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	for _, col := range []prometheus.Collector{
		c,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// HandlerStatus is one entry of the /handlers listing.
type HandlerStatus struct {
	Name      string `json:"name"`
	Listeners int    `json:"listeners"`
	Fired     uint64 `json:"fired"`
	Delivered uint64 `json:"delivered"`
	Pruned    uint64 `json:"pruned"`
	Panicked  uint64 `json:"panicked"`
	Slow      uint64 `json:"slow"`
}

// Server serves /metrics, /handlers and /healthz over HTTP.
type Server struct {
	log       zerolog.Logger
	collector *Collector
	srv       *http.Server

	mu sync.Mutex
	ln net.Listener
}

// NewServer creates a server for addr. reg is gathered on /metrics and c
// backs /handlers.
func NewServer(addr string, reg prometheus.Gatherer, c *Collector, log zerolog.Logger) *Server {
	s := &Server{log: log, collector: c}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.routes(reg),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes(reg prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/handlers", s.handleHandlers)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return r
}

func (s *Server) handleHandlers(w http.ResponseWriter, r *http.Request) {
	reporters := s.collector.Reporters()
	out := make([]HandlerStatus, 0, len(reporters))
	for _, rep := range reporters {
		st := rep.Stats()
		out = append(out, HandlerStatus{
			Name:      rep.Name(),
			Listeners: rep.Len(),
			Fired:     st.Fired,
			Delivered: st.Delivered,
			Pruned:    st.Pruned,
			Panicked:  st.Panicked,
			Slow:      st.Slow,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// Handler returns the HTTP handler, for embedding or tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return ErrServerStarted
	}

	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	s.ln = ln

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("metrics server stopped")
		}
	}()
	s.log.Info().Str("addr", ln.Addr().String()).Msg("metrics server listening")
	return nil
}

// Addr returns the listening address, or the configured one before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.srv.Addr
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	started := s.ln != nil
	s.mu.Unlock()
	if !started {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
