package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"todo_server/internal/logger"
	"todo_server/internal/protocol"
)

// Mode selects how accepted connections are serviced.
type Mode string

const (
	// ModeSequential services one request per connection, one connection at
	// a time, on the accepting goroutine.
	ModeSequential Mode = "sequential"
	// ModeConcurrent gives every connection its own goroutine, which keeps
	// reading requests until the peer closes.
	ModeConcurrent Mode = "concurrent"
)

const (
	defaultAddr          = "0.0.0.0:3000"
	defaultShutdownGrace = 3 * time.Second
	acceptRetryDelay     = 10 * time.Millisecond
)

// Dispatcher turns a parsed request into a reply. A non-nil error asks the
// connection to close after the reply is written.
type Dispatcher interface {
	Dispatch(ctx context.Context, remote string, req protocol.Request) (protocol.Response, error)
}

type Config struct {
	Addr          string
	Mode          Mode
	Limits        protocol.Limits
	ShutdownGrace time.Duration
}

// Server is the raw TCP listener of the task protocol. There are no read or
// write deadlines and no connection limit: an idle peer holds its goroutine
// (or, in sequential mode, the whole server) until it closes.
type Server struct {
	cfg        Config
	dispatcher Dispatcher
	log        *logger.Logger

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}

	wg      sync.WaitGroup
	closing atomic.Bool
}

func New(cfg Config, d Dispatcher, log *logger.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeConcurrent
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = defaultShutdownGrace
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		cfg:        cfg,
		dispatcher: d,
		log:        log,
		conns:      make(map[net.Conn]struct{}),
	}
}

// ListenAndServe binds the configured address and serves until ctx is
// cancelled or Shutdown is called.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln. It returns nil once the listener is
// closed by ctx or Shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	s.log.Infow("server_listening", "addr", ln.Addr().String(), "mode", string(s.cfg.Mode))

	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.closing.Load() || ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Errorw("accept_failed", "err", err)
			time.Sleep(acceptRetryDelay)
			continue
		}

		if !s.admit(conn) {
			_ = conn.Close()
			continue
		}
		if s.cfg.Mode == ModeSequential {
			s.serveConn(ctx, conn, false)
			continue
		}
		go s.serveConn(ctx, conn, true)
	}
}

// Addr is the bound address, nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown stops accepting and waits for open connections. When ctx or the
// grace period runs out first, the remaining connections are closed.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing.Store(true)
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	grace := time.NewTimer(s.cfg.ShutdownGrace)
	defer grace.Stop()

	select {
	case <-done:
		return nil
	case <-grace.C:
	case <-ctx.Done():
	}

	s.mu.Lock()
	n := len(s.conns)
	for c := range s.conns {
		_ = c.Close()
	}
	s.mu.Unlock()
	s.log.Warnw("shutdown_forced", "open_conns", n)

	<-done
	return ctx.Err()
}

// admit registers c with the wait group unless Shutdown has begun. closing
// is only set under mu, so no Add can race the Wait in Shutdown.
func (s *Server) admit(c net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing.Load() {
		return false
	}
	s.wg.Add(1)
	s.conns[c] = struct{}{}
	return true
}

func (s *Server) untrack(c net.Conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
}
