package transfer

import (
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/danmuck/gbanetboot/internal/protocol"
	"github.com/rs/zerolog/log"
)

// PollResult is the outcome of one transfer poll.
type PollResult int

const (
	StillWaiting PollResult = iota
	Complete
)

func (r PollResult) String() string {
	if r == Complete {
		return "complete"
	}
	return "still_waiting"
}

// Listener accepts the single transfer connection of a session and pulls
// payload bytes into the assembly buffer.
type Listener struct {
	ln      StreamListener
	writer  *ChunkWriter
	maxSize int64

	conn     StreamConn
	remote   net.Addr
	accepted bool
}

// NewListener polls ln and flushes through writer. maxSize <= 0 selects
// protocol.MaxPayloadBytes.
func NewListener(ln StreamListener, writer *ChunkWriter, maxSize int64) *Listener {
	if maxSize <= 0 {
		maxSize = protocol.MaxPayloadBytes
	}
	return &Listener{ln: ln, writer: writer, maxSize: maxSize}
}

// Remote is the accepted sender, nil until a connection arrives.
func (l *Listener) Remote() net.Addr {
	return l.remote
}

func (l *Listener) Accepted() bool {
	return l.accepted
}

// Poll runs one accept-or-receive step. Once a connection has been accepted
// no further connection is accepted for the session.
func (l *Listener) Poll(s *Session, buf []byte) (PollResult, error) {
	if s.Completed {
		return Complete, nil
	}
	if l.conn == nil {
		if l.accepted {
			// accepted connection already torn down
			return StillWaiting, nil
		}
		conn, err := l.ln.Accept()
		if errors.Is(err, ErrWouldBlock) {
			return StillWaiting, nil
		}
		if err != nil {
			return StillWaiting, fmt.Errorf("%w: %w", ErrAccept, err)
		}
		l.conn = conn
		l.remote = conn.RemoteAddr()
		l.accepted = true
		log.Info().Str("session", s.ID).Stringer("from", l.remote).Msg("transfer.Listener.Poll connection accepted")
	}

	want := len(buf) - s.BufferOffset
	if remaining := l.maxSize - s.FileSize; int64(want) > remaining {
		want = int(remaining)
	}
	n, err := l.conn.Read(buf[s.BufferOffset : s.BufferOffset+want])
	eof := errors.Is(err, io.EOF)
	if err != nil && !eof && !errors.Is(err, ErrWouldBlock) {
		return StillWaiting, fmt.Errorf("%w: %w", ErrReceive, err)
	}
	if n == 0 && !eof {
		return StillWaiting, nil
	}

	s.BufferOffset += n
	s.FileSize += int64(n)
	capped := s.FileSize >= l.maxSize

	if eof || capped || s.BufferOffset == len(buf) {
		if err := l.writer.Commit(s, buf); err != nil {
			return StillWaiting, err
		}
	}
	if eof || capped {
		s.Completed = true
		log.Info().
			Str("session", s.ID).
			Int64("bytes", s.FileSize).
			Bool("capped", capped).
			Msg("transfer.Listener.Poll transfer complete")
		return Complete, nil
	}
	return StillWaiting, nil
}

// Close closes the accepted connection, if any, and the listening socket.
func (l *Listener) Close() error {
	var errs []error
	if l.conn != nil {
		errs = append(errs, l.conn.Close())
		l.conn = nil
	}
	if l.ln != nil {
		errs = append(errs, l.ln.Close())
		l.ln = nil
	}
	return errors.Join(errs...)
}
