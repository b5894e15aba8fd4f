package transfer

import "net"

// DatagramChannel is the connectionless discovery socket.
// ReadFrom returns ErrWouldBlock when no datagram is pending.
type DatagramChannel interface {
	ReadFrom(b []byte) (int, net.Addr, error)
	WriteTo(b []byte, addr net.Addr) (int, error)
	Close() error
}

// StreamConn is an accepted transfer connection.
// Read returns ErrWouldBlock when no bytes are available and io.EOF once the
// sender has closed its side.
type StreamConn interface {
	Read(b []byte) (int, error)
	RemoteAddr() net.Addr
	Close() error
}

// StreamListener is the connection-oriented transfer socket.
// Accept returns ErrWouldBlock when no connection is pending.
type StreamListener interface {
	Accept() (StreamConn, error)
	Close() error
}
