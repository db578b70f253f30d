// Package server exposes the map queries over HTTP.
//
// Routes:
//
//	GET /markings/:id        position of a named marking
//	GET /forbidden?x=&y=     whether a position is forbidden
//	GET /map                 the loaded map as GeoJSON
//	GET /healthz             liveness plus entity counts
//	GET /metrics             Prometheus metrics
//
// The server only reads the Map it was given; handlers run concurrently
// without locking.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mmr-tortoise/mapserver/internal/logger"
	"github.com/mmr-tortoise/mapserver/internal/mapstore"
	"github.com/mmr-tortoise/mapserver/internal/metrics"
)

// ShutdownTimeout bounds how long Run waits for in-flight requests after
// its context is cancelled.
const ShutdownTimeout = 10 * time.Second

// Server is the HTTP query service for one loaded map.
type Server struct {
	engine *gin.Engine
	store  *mapstore.Map
	log    *slog.Logger
}

// New creates a Server answering queries against m. The map must be fully
// loaded before it is passed in.
func New(m *mapstore.Map, log *slog.Logger) *Server {
	if log == nil {
		log = logger.Discard()
	}
	s := &Server{store: m, log: log}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.AccessMiddleware(s.log))

	r.GET("/markings/:id", s.handleMarking)
	r.GET("/forbidden", s.handleForbidden)
	r.GET("/map", s.handleMap)
	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	s.engine = r
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

// Run serves h on addr until ctx is cancelled, then shuts down gracefully,
// waiting at most ShutdownTimeout for in-flight requests.
func Run(ctx context.Context, addr string, h http.Handler, log *slog.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return Serve(ctx, ln, h, log)
}

// Serve is Run on an existing listener. The listener is closed on return.
func Serve(ctx context.Context, ln net.Listener, h http.Handler, log *slog.Logger) error {
	if log == nil {
		log = logger.Discard()
	}

	httpServer := &http.Server{
		Handler:      h,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server_started", "addr", ln.Addr().String())
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("server_shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	log.Info("server_stopped")
	return nil
}
