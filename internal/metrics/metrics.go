package metrics

import (
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	// Aggregation metrics
	WindowComputations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "devtime_window_computations_total",
			Help: "Total number of window aggregations performed",
		},
	)

	WindowDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "devtime_window_computation_duration_seconds",
			Help:    "Window aggregation duration in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		},
	)

	SessionsScanned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "devtime_sessions_scanned_total",
			Help: "Total coding sessions scanned by window aggregations",
		},
	)

	// Cache metrics
	StatsCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devtime_stats_cache_hits_total",
			Help: "Daily stats cache hits",
		},
		[]string{"tier"},
	)

	StatsCacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "devtime_stats_cache_misses_total",
			Help: "Daily stats cache misses and forced recomputations",
		},
	)

	// Activity metrics
	ActivityChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devtime_activity_checks_total",
			Help: "Current activity lookups by resulting state",
		},
		[]string{"state"},
	)

	// Compile scheduler metrics
	CompileRunsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "devtime_compile_runs_total",
			Help: "Total nightly compile runs",
		},
	)

	CompileUsersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devtime_compile_users_total",
			Help: "Users processed by nightly compile runs",
		},
		[]string{"result"},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(
		WindowComputations,
		WindowDuration,
		SessionsScanned,
		StatsCacheHits,
		StatsCacheMisses,
		ActivityChecks,
		CompileRunsTotal,
		CompileUsersTotal,
	)
}

// Server is the metrics HTTP server
type Server struct {
	server   *http.Server
	logger   zerolog.Logger
	listener net.Listener // Optional pre-created listener (for systemd socket activation)
}

// NewServer creates a new metrics server
func NewServer(addr string, logger zerolog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &Server{
		server: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
		logger: logger.With().Str("component", "metrics").Logger(),
	}
}

// Handler returns the HTTP handler serving /metrics and /health.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// SetListener sets a pre-created listener for systemd socket activation
func (s *Server) SetListener(ln net.Listener) {
	s.listener = ln
}

// Start starts the metrics server
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("Starting metrics server")
	go func() {
		var err error
		if s.listener != nil {
			s.logger.Debug().Msg("Using systemd socket-activated metrics listener")
			err = s.server.Serve(s.listener)
		} else {
			err = s.server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("Metrics server error")
		}
	}()
	return nil
}

// Stop stops the metrics server
func (s *Server) Stop() error {
	s.logger.Info().Msg("Stopping metrics server")
	return s.server.Close()
}
