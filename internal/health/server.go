// Package health serves the repeater's optional observability HTTP
// endpoints: a liveness probe and the Prometheus metrics exposition.
// It has no bearing on the dispatch loop's resource model -- it never
// touches the client table, only whatever the core has already recorded
// into its Metrics.
package health

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatsProvider reports the handful of facts the health endpoint wants
// from a running repeater.
type StatsProvider interface {
	ClientCount() int
}

// Server is a small HTTP server exposing /healthz and /metrics.
type Server struct {
	addr     string
	provider StatsProvider
	server   *http.Server
	listener net.Listener
}

// NewServer builds a Server listening on addr. It does not start
// listening until Start is called.
func NewServer(addr string, provider StatsProvider) *Server {
	s := &Server{addr: addr, provider: provider}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", promhttp.Handler())

	s.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return s
}

// Start begins serving in a background goroutine.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = ln
	go s.server.Serve(ln)
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK\n"))
}
