// Package server exposes the retrieval engine over HTTP. The surface is
// deliberately small: upload a report archive, ask questions about it,
// inspect the current session.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evidex/evidex/internal/config"
	"github.com/evidex/evidex/internal/retrieval"
)

// Engine is the retrieval surface the HTTP layer drives.
type Engine interface {
	BuildSession(ctx context.Context, archive []byte, filename string) (*retrieval.BuildResult, error)
	Answer(ctx context.Context, question string) (string, error)
	SessionStats() (*retrieval.Stats, error)
}

var _ Engine = (*retrieval.Engine)(nil)

// Server serves the upload/query API.
type Server struct {
	cfg    *config.Config
	engine Engine
}

// New creates a server around an engine.
func New(cfg *config.Config, engine Engine) *Server {
	return &Server{cfg: cfg, engine: engine}
}

// Handler returns the full middleware-wrapped handler chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/upload", s.handleUpload)
	mux.HandleFunc("/query", s.handleQuery)
	mux.HandleFunc("/stats", s.handleStats)

	var h http.Handler = mux
	h = rateLimitMiddleware(s.cfg.Server.RateLimit, s.cfg.Server.RateBurst, h)
	h = corsMiddleware(s.cfg.Server.AllowedOrigins, h)
	h = logMiddleware(h)
	return h
}

// Run starts the HTTP server and blocks until SIGINT/SIGTERM or a listen
// failure. Shutdown waits for in-flight requests up to a short grace period.
func (s *Server) Run() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		errs <- srv.ListenAndServe()
	}()
	log.Printf("Listening on http://%s", addr)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigc:
		log.Printf("Received %v, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	case err := <-errs:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
