package server

import (
	"context"
	"errors"
	"io"
	"net"

	"todo_server/internal/protocol"
)

const (
	msgRequestTooLarge  = "Request too large"
	msgBadContentLength = "Invalid Content-Length"
)

// serveConn owns an admitted conn until it returns. Every fault ends here:
// it is logged and only this connection is closed.
func (s *Server) serveConn(ctx context.Context, conn net.Conn, persistent bool) {
	remote := conn.RemoteAddr().String()
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorw("conn_panic", "remote", remote, "panic", r)
		}
		s.untrack(conn)
		if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.log.Debugw("conn_close_failed", "remote", remote, "err", err)
		}
		s.wg.Done()
	}()

	s.log.Debugw("conn_accepted", "remote", remote)
	r := protocol.NewReader(conn, s.cfg.Limits)

	for {
		raw, err := r.Next()
		if err != nil {
			s.readFailed(conn, remote, err)
			return
		}

		resp, faultErr := s.dispatcher.Dispatch(ctx, remote, protocol.ParseRequest(raw))
		if _, err := io.WriteString(conn, resp.Build()); err != nil {
			s.log.Warnw("conn_write_failed", "remote", remote, "err", err)
			return
		}
		if faultErr != nil {
			s.log.Warnw("request_fault", "remote", remote, "err", faultErr)
			return
		}
		if !persistent {
			return
		}
	}
}

// readFailed logs why reading stopped and answers framing violations.
func (s *Server) readFailed(conn net.Conn, remote string, err error) {
	switch {
	case errors.Is(err, io.EOF):
		s.log.Debugw("conn_closed_by_peer", "remote", remote)
	case protocol.IsFramingError(err):
		msg := msgRequestTooLarge
		if errors.Is(err, protocol.ErrBadContentLength) {
			msg = msgBadContentLength
		}
		s.log.Warnw("conn_framing_rejected", "remote", remote, "err", err)
		reply := protocol.BadRequest(protocol.ErrorBody(msg)).Build()
		if _, werr := io.WriteString(conn, reply); werr != nil {
			s.log.Debugw("conn_write_failed", "remote", remote, "err", werr)
		}
	case s.closing.Load():
		s.log.Debugw("conn_closed_on_shutdown", "remote", remote)
	default:
		s.log.Warnw("conn_read_failed", "remote", remote, "err", err)
	}
}
