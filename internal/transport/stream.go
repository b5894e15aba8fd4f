package transport

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/danmuck/gbanetboot/internal/transfer"
	"github.com/rs/zerolog/log"
)

// StreamListener is the transfer socket. Connections beyond the first wait
// in the kernel backlog and are reset when the listener closes.
type StreamListener struct {
	ln     *net.TCPListener
	window time.Duration
}

var _ transfer.StreamListener = (*StreamListener)(nil)

func ListenStream(ctx context.Context, cfg Config) (*StreamListener, error) {
	cfg = cfg.WithDefaults()
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp4", cfg.Address())
	if err != nil {
		return nil, fmt.Errorf("transport: could not listen on tcp socket: %w", err)
	}
	tcp, ok := ln.(*net.TCPListener)
	if !ok {
		_ = ln.Close()
		return nil, fmt.Errorf("transport: unexpected listener %T", ln)
	}
	log.Debug().Stringer("addr", tcp.Addr()).Msg("transport.ListenStream bound")
	return &StreamListener{ln: tcp, window: cfg.PollWindow}, nil
}

func (l *StreamListener) Addr() net.Addr {
	return l.ln.Addr()
}

func (l *StreamListener) Accept() (transfer.StreamConn, error) {
	if err := l.ln.SetDeadline(time.Now().Add(l.window)); err != nil {
		return nil, err
	}
	c, err := l.ln.AcceptTCP()
	if err != nil {
		if isTimeout(err) {
			return nil, transfer.ErrWouldBlock
		}
		return nil, err
	}
	return &StreamConn{conn: c, window: l.window}, nil
}

func (l *StreamListener) Close() error {
	return l.ln.Close()
}

// StreamConn is the accepted transfer connection.
type StreamConn struct {
	conn   *net.TCPConn
	window time.Duration
}

var _ transfer.StreamConn = (*StreamConn)(nil)

func (c *StreamConn) Read(b []byte) (int, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.window)); err != nil {
		return 0, err
	}
	n, err := c.conn.Read(b)
	if n > 0 {
		return n, nil
	}
	if isTimeout(err) {
		return 0, transfer.ErrWouldBlock
	}
	return n, err
}

func (c *StreamConn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *StreamConn) Close() error {
	return c.conn.Close()
}
