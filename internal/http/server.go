// Package http serves the parse API together with health and metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"nowplaying/internal/core"
	"nowplaying/internal/flood"
)

const shutdownTimeout = 10 * time.Second

// Processor builds songs from parse requests.
type Processor interface {
	Process(ctx context.Context, req core.Request, connector core.Connector) (*core.Outcome, error)
}

// RateLimiter decides whether a client may send another request.
type RateLimiter interface {
	Allow(clientID string) (bool, time.Duration)
	Stats() flood.Stats
}

// SeenCounter reports how many song identities are remembered.
type SeenCounter interface {
	Size() int
}

type readiness struct {
	Status    string       `json:"status"`
	Service   string       `json:"service"`
	SeenSongs int          `json:"seen_songs"`
	RateLimit *flood.Stats `json:"rate_limit,omitempty"`
}

type Server struct {
	config          *core.ServerConfig
	logger          *zap.Logger
	server          *http.Server
	metrics         *Metrics
	processor       Processor
	limiter         RateLimiter
	seen            SeenCounter
	maxRequestBytes int64
}

// NewServer wires the routes. limiter may be nil to disable rate limiting and seen may be
// nil when no seen store is shared with the processor.
func NewServer(
	config *core.Config,
	processor Processor,
	limiter RateLimiter,
	seen SeenCounter,
	logger *zap.Logger,
) *Server {
	s := &Server{
		config:          &config.Server,
		logger:          logger,
		metrics:         newMetrics(),
		processor:       processor,
		limiter:         limiter,
		seen:            seen,
		maxRequestBytes: config.App.MaxRequestBytes,
	}
	s.server = createHTTPServer(&config.Server, requestIDHandler(s.routes()))
	return s
}

func createHTTPServer(config *core.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      handler,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", statusHandler(`{"status":"ok","service":"nowplaying"}`))
	mux.HandleFunc("GET /readyz", s.readyHandler)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("POST /v1/parse", s.handleParse)
	mux.HandleFunc("GET /{$}", homeHandler(s.logger))

	return mux
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Metrics() *Metrics {
	return s.metrics
}

func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("addr", s.server.Addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shutdown HTTP server gracefully", zap.Error(err))
		}
	}()

	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

func statusHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	}
}

func (s *Server) readyHandler(w http.ResponseWriter, _ *http.Request) {
	body := readiness{Status: "ready", Service: "nowplaying"}
	if s.seen != nil {
		body.SeenSongs = s.seen.Size()
	}
	if s.limiter != nil {
		stats := s.limiter.Stats()
		body.RateLimit = &stats
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Debug("Failed to write readiness", zap.Error(err))
	}
}

func homeHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(homePage)); err != nil {
			logger.Debug("Failed to write home page", zap.Error(err))
		}
	}
}

const homePage = `<!DOCTYPE html>
<html>
<head>
    <title>nowplaying</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; }
        .header { color: #333; }
        .endpoint { margin: 10px 0; }
        .endpoint a { text-decoration: none; color: #0066cc; }
        .endpoint a:hover { text-decoration: underline; }
        code { background: #f4f4f4; padding: 2px 4px; }
    </style>
</head>
<body>
    <h1 class="header">🎵 nowplaying</h1>
    <p>Turns media page titles, descriptions and media sessions into artist/track/album records.</p>

    <h2>Endpoints</h2>
    <div class="endpoint">🎶 <code>POST /v1/parse</code> - Parse a source into a song</div>
    <div class="endpoint">📊 <a href="/metrics">Metrics</a> - Prometheus metrics</div>
    <div class="endpoint">💚 <a href="/healthz">Health</a> - Health check</div>
    <div class="endpoint">✅ <a href="/readyz">Ready</a> - Readiness check</div>
</body>
</html>`
