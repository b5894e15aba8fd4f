// Package fakes provides scripted channel and storage doubles for tests of the
// receive engine. Nothing here touches real sockets or disks.
package fakes

import (
	"io"
	"net"

	"github.com/danmuck/gbanetboot/internal/transfer"
)

// Addr is a fixed net.Addr.
type Addr string

func (a Addr) Network() string { return "fake" }
func (a Addr) String() string  { return string(a) }

// Packet is one scripted datagram read; a non-nil Err is returned instead of data.
type Packet struct {
	Data []byte
	Addr net.Addr
	Err  error
}

// Datagram is a scripted transfer.DatagramChannel.
type Datagram struct {
	Inbox    []Packet
	Sent     []Packet
	WriteErr error
	Reads    int
	Closed   bool
}

var _ transfer.DatagramChannel = (*Datagram)(nil)

func (d *Datagram) Queue(data []byte, from string) {
	d.Inbox = append(d.Inbox, Packet{Data: data, Addr: Addr(from)})
}

func (d *Datagram) ReadFrom(b []byte) (int, net.Addr, error) {
	d.Reads++
	if len(d.Inbox) == 0 {
		return 0, nil, transfer.ErrWouldBlock
	}
	p := d.Inbox[0]
	d.Inbox = d.Inbox[1:]
	if p.Err != nil {
		return 0, nil, p.Err
	}
	n := copy(b, p.Data)
	return n, p.Addr, nil
}

func (d *Datagram) WriteTo(b []byte, addr net.Addr) (int, error) {
	if d.WriteErr != nil {
		return 0, d.WriteErr
	}
	d.Sent = append(d.Sent, Packet{Data: append([]byte(nil), b...), Addr: addr})
	return len(b), nil
}

func (d *Datagram) Close() error {
	d.Closed = true
	return nil
}

// Step is one scripted stream read: either Data or Err.
type Step struct {
	Data []byte
	Err  error
}

// Chunks splits data into steps of at most size bytes.
func Chunks(data []byte, size int) []Step {
	steps := make([]Step, 0, len(data)/size+1)
	for len(data) > 0 {
		n := size
		if n > len(data) {
			n = len(data)
		}
		steps = append(steps, Step{Data: data[:n]})
		data = data[n:]
	}
	return steps
}

// EOF is the orderly-close step.
func EOF() Step {
	return Step{Err: io.EOF}
}

// Conn is a scripted transfer.StreamConn. Reads past the script would block.
type Conn struct {
	Steps  []Step
	Remote net.Addr
	Reads  int
	Closed bool
}

var _ transfer.StreamConn = (*Conn)(nil)

func (c *Conn) Read(b []byte) (int, error) {
	c.Reads++
	if len(c.Steps) == 0 {
		return 0, transfer.ErrWouldBlock
	}
	step := &c.Steps[0]
	if step.Err != nil {
		err := step.Err
		if err != io.EOF {
			c.Steps = c.Steps[1:]
		}
		return 0, err
	}
	n := copy(b, step.Data)
	step.Data = step.Data[n:]
	if len(step.Data) == 0 {
		c.Steps = c.Steps[1:]
	}
	return n, nil
}

func (c *Conn) RemoteAddr() net.Addr {
	if c.Remote == nil {
		return Addr("sender:1")
	}
	return c.Remote
}

func (c *Conn) Close() error {
	c.Closed = true
	return nil
}

// Stream is a scripted transfer.StreamListener.
type Stream struct {
	Pending   []*Conn
	AcceptErr error
	Accepts   int
	Closed    bool
}

var _ transfer.StreamListener = (*Stream)(nil)

func (s *Stream) Accept() (transfer.StreamConn, error) {
	if s.AcceptErr != nil {
		return nil, s.AcceptErr
	}
	if len(s.Pending) == 0 {
		return nil, transfer.ErrWouldBlock
	}
	c := s.Pending[0]
	s.Pending = s.Pending[1:]
	s.Accepts++
	return c, nil
}

func (s *Stream) Close() error {
	s.Closed = true
	return nil
}
