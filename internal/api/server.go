// Package api exposes the daemon's localhost HTTP surface. It is a thin
// JSON adapter over the service layer plus the Prometheus endpoint; no
// crypto decisions are made here.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docseal/go-backend/internal/service"
)

type Server struct {
	addr    string
	log     *slog.Logger
	service *service.Service
	httpSrv *http.Server
}

func NewServer(addr string, svc *service.Service, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{addr: addr, log: log, service: svc}
	mux := http.NewServeMux()
	s.routes(mux)
	s.httpSrv = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	mux.HandleFunc("GET /v1/documents", s.handleListDocuments)
	mux.HandleFunc("POST /v1/documents", s.handleUpload)
	mux.HandleFunc("GET /v1/documents/{id}/content", s.handleOpen)
	mux.HandleFunc("POST /v1/documents/{id}/verify", s.handleVerify)
	mux.HandleFunc("POST /v1/documents/{id}/deactivate", s.handleDeactivate)
	mux.HandleFunc("GET /v1/documents/{id}/shares", s.handleListShares)
	mux.HandleFunc("POST /v1/documents/{id}/shares", s.handleShare)
	mux.HandleFunc("DELETE /v1/documents/{id}/shares/{commitment}", s.handleRevoke)
	mux.Handle("GET /metrics", promhttp.HandlerFor(
		s.service.Metrics().Registry,
		promhttp.HandlerOpts{},
	))
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.log.Info("api listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
