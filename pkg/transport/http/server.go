// Package http serves the streamable HTTP transport: it bounds request
// bodies, applies read and write timeouts, and drains in-flight requests
// when the serving context ends.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// Server runs one http.Server until its context is cancelled.
type Server struct {
	srv             *http.Server
	maxBody         int64
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithAddr sets the listen address. Default ":8080".
func WithAddr(addr string) ServerOption {
	return func(s *Server) { s.srv.Addr = addr }
}

// WithMaxBodySize caps request bodies at n bytes. Default 10 MiB; zero
// removes the cap.
func WithMaxBodySize(n int64) ServerOption {
	return func(s *Server) { s.maxBody = n }
}

// WithTimeouts sets the read and write timeouts. A zero write timeout
// keeps long-lived event streams open.
func WithTimeouts(read, write time.Duration) ServerOption {
	return func(s *Server) {
		s.srv.ReadHeaderTimeout = read
		s.srv.ReadTimeout = read
		s.srv.WriteTimeout = write
	}
}

// WithShutdownTimeout bounds how long in-flight requests may take to
// finish after cancellation. Default 30s.
func WithShutdownTimeout(d time.Duration) ServerOption {
	return func(s *Server) { s.shutdownTimeout = d }
}

// WithLogger sets the logger for lifecycle events.
func WithLogger(l *slog.Logger) ServerOption {
	return func(s *Server) { s.logger = l }
}

// NewServer returns a Server for handler.
func NewServer(handler http.Handler, opts ...ServerOption) *Server {
	s := &Server{
		srv: &http.Server{
			Addr:              ":8080",
			ReadHeaderTimeout: 30 * time.Second,
			ReadTimeout:       30 * time.Second,
		},
		maxBody:         10 << 20,
		shutdownTimeout: 30 * time.Second,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.maxBody > 0 {
		handler = http.MaxBytesHandler(handler, s.maxBody)
	}
	s.srv.Handler = handler
	s.srv.ErrorLog = slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn)
	return s
}

// ListenAndServe listens on the configured address and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully. It returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server listening", "addr", ln.Addr().String())
		if err := s.srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return s.shutdown()
	})

	return g.Wait()
}

func (s *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	s.logger.Info("draining connections", "timeout", s.shutdownTimeout)
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Error("shutdown incomplete", "error", err)
		return err
	}
	s.logger.Info("server stopped")
	return nil
}
