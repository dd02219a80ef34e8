package monitoring

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// MetricsPath is where the server exposes metrics.
const MetricsPath = "/metrics"

// Server serves a registry over HTTP.
type Server struct {
	log    zerolog.Logger
	server *http.Server
	ln     net.Listener
	done   chan struct{}
}

// NewServer creates a server for registry on addr. Nothing listens until Run.
func NewServer(addr string, registry *prometheus.Registry, log zerolog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle(MetricsPath, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return &Server{
		log: log.With().Str("s", "monitoring").Logger(),
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Run binds the listener and serves in the background. Bind errors are
// returned; later serve errors are logged.
func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.done = make(chan struct{})

	s.log.Info().Str("addr", ln.Addr().String()+MetricsPath).Msg("serving metrics")
	go func() {
		defer close(s.done)
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("metrics server stopped")
		}
	}()
	return nil
}

// Addr returns the bound address, or the configured one before Run.
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.server.Addr
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.ln == nil {
		return nil
	}
	s.log.Debug().Msg("shutting down metrics server")
	err := s.server.Shutdown(ctx)
	<-s.done
	return err
}
