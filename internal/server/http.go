package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
)

// HTTPServer wraps an *http.Server to provide start/shutdown lifecycle for
// the admin listener.
type HTTPServer struct {
	httpServer *http.Server
}

// Extracted constants to avoid magic numbers and centralize tuning knobs.
const (
	maxHeaderBytes    = 1 << 20 // 1 MB
	readHeaderTimeout = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
)

// newHTTPServer builds a configured *http.Server for the given address and handler.
func newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		MaxHeaderBytes:    maxHeaderBytes,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}

// normalizeAddr ensures the provided port is a valid address (accepts "8080" or ":8080").
func normalizeAddr(port string) string {
	if port == "" || strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

// NewHTTPServer prepares a server for handler on port ("3001" or ":3001").
func NewHTTPServer(port string, handler http.Handler) *HTTPServer {
	return &HTTPServer{httpServer: newHTTPServer(normalizeAddr(port), handler)}
}

// Run serves until Shutdown; an orderly shutdown returns nil. Shutdown may
// be called before Run, in which case Run returns at once.
func (s *HTTPServer) Run() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server, allowing in-flight requests to complete.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
