// Package controller contains the controller-specific logic for the HTTP API.
package controller

import (
	"context"
	"net/http"
	"time"

	"layerplane/internal/auth"
	"layerplane/internal/controller/handlers"
	"layerplane/internal/controller/middleware"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Options configures the API middleware.
type Options struct {
	Credentials    *auth.Credentials
	RateLimit      float64
	RateLimitBurst int
	MetricsHandler http.Handler

	// Longest time a handler may block on the metadata push. The write
	// timeout leaves writeMargin on top of it.
	PushTimeout time.Duration
}

const (
	defaultWriteTimeout = 5 * time.Minute
	writeMargin         = 30 * time.Second
)

// Server is the HTTP server for the controller API.
type Server struct {
	httpServer *http.Server
}

// New creates a new controller server.
func New(addr string, services handlers.Services, opts Options) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      NewHandler(services, opts),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: writeTimeout(opts.PushTimeout),
		},
	}
}

func writeTimeout(push time.Duration) time.Duration {
	if t := push + writeMargin; push > 0 && t > defaultWriteTimeout {
		return t
	}
	return defaultWriteTimeout
}

// NewHandler builds the routed and wrapped API handler.
func NewHandler(services handlers.Services, opts Options) http.Handler {
	h := handlers.New(services)
	authMW := middleware.BasicAuth(opts.Credentials)
	rateMW := middleware.NewRateLimiter(opts.RateLimit, opts.RateLimitBurst).Middleware()
	protect := func(fn http.HandlerFunc) http.Handler {
		return authMW(rateMW(fn))
	}

	mux := http.NewServeMux()

	// Probes stay open for the orchestrator.
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
	if opts.MetricsHandler != nil {
		mux.Handle("GET /metrics", opts.MetricsHandler)
	}

	mux.Handle("POST /jobs", protect(h.CreateJobs))
	mux.Handle("POST /metajobs", protect(h.PublishMetadata))
	mux.Handle("GET /publishs/{name}", protect(h.GetPublishStatus))

	return otelhttp.NewHandler(middleware.RequestID(mux), "layerplane-api")
}

// Run starts the HTTP server. It blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutDownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return s.Shutdown(shutDownCtx)
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
