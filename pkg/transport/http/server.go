package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/rhuss/strom/pkg/transport"
)

// Server wraps an http.Server with the transport adapter and manages
// the full lifecycle including startup and graceful shutdown.
type Server struct {
	httpServer *http.Server
	adapter    *Adapter
	registry   *transport.SessionRegistry
	config     ServerConfig
	logger     *slog.Logger
}

// ServerConfig holds configuration for the transport server.
type ServerConfig struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	ShutdownTimeout   time.Duration
	Adapter           Config
	Logger            *slog.Logger
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:              ":8000",
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		ShutdownTimeout:   30 * time.Second,
		Adapter:           DefaultConfig(),
		Logger:            slog.Default(),
	}
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithAddr sets the listen address.
func WithAddr(addr string) ServerOption {
	return func(s *Server) { s.config.Addr = addr }
}

// WithMaxBodySize sets the maximum request body size.
func WithMaxBodySize(n int64) ServerOption {
	return func(s *Server) { s.config.Adapter.MaxBodySize = n }
}

// WithTimeouts sets the read and write timeouts. The write timeout does
// not apply to streams.
func WithTimeouts(read, write time.Duration) ServerOption {
	return func(s *Server) {
		s.config.ReadTimeout = read
		s.config.WriteTimeout = write
	}
}

// WithShutdownTimeout sets the graceful shutdown deadline.
func WithShutdownTimeout(d time.Duration) ServerOption {
	return func(s *Server) { s.config.ShutdownTimeout = d }
}

// WithGates sets the gates protecting stream and session endpoints.
func WithGates(gates ...Gate) ServerOption {
	return func(s *Server) { s.config.Adapter.Gates = gates }
}

// WithMetricsPath serves prometheus metrics on path. Empty disables it.
func WithMetricsPath(path string) ServerOption {
	return func(s *Server) { s.config.Adapter.MetricsPath = path }
}

// WithMetricsInterval sets the default metrics stream interval in seconds.
func WithMetricsInterval(seconds int) ServerOption {
	return func(s *Server) { s.config.Adapter.MetricsInterval = seconds }
}

// WithVersion sets the version reported by GET /.
func WithVersion(v string) ServerOption {
	return func(s *Server) { s.config.Adapter.Version = v }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) ServerOption {
	return func(s *Server) { s.config.Logger = l; s.logger = l }
}

// NewServer creates a new transport server for handler. Sessions in
// registry are cancelled when the server shuts down; registry may be nil.
// Default middleware (recovery, request ID, logging) is applied automatically.
func NewServer(handler transport.StreamHandler, registry *transport.SessionRegistry, opts ...ServerOption) *Server {
	s := &Server{
		config:   DefaultServerConfig(),
		logger:   slog.Default(),
		registry: registry,
	}

	for _, opt := range opts {
		opt(s)
	}

	defaultMW := []transport.Middleware{
		transport.Recovery(),
		transport.RequestID(),
		transport.Logging(s.logger),
	}

	s.adapter = NewAdapter(handler, registry, s.config.Adapter, defaultMW...)

	s.httpServer = &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.adapter.Handler(),
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		ReadTimeout:       s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	// Open streams never go idle on their own, so end them when shutdown
	// begins; the drain then only waits for handlers to return.
	s.httpServer.RegisterOnShutdown(func() {
		if s.registry == nil {
			return
		}
		if n := s.registry.CancelAll(); n > 0 {
			s.logger.Info("cancelled active streams", slog.Int("count", n))
		}
	})

	return s
}

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("server starting", slog.String("addr", ln.Addr().String()))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	}

	return s.shutdown()
}

func (s *Server) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down gracefully", slog.Duration("timeout", s.config.ShutdownTimeout))
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("shutdown error", slog.String("error", err.Error()))
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

