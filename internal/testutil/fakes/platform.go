package fakes

import (
	"context"
	"net"

	"github.com/danmuck/gbanetboot/internal/platform"
	"github.com/danmuck/gbanetboot/internal/transfer"
)

// Input replays Script one entry per Scan; scans past the script press nothing.
type Input struct {
	Script   [][]platform.Action
	Terminal bool
	Scans    int

	current []platform.Action
}

func (in *Input) Scan() {
	in.current = nil
	if in.Scans < len(in.Script) {
		in.current = in.Script[in.Scans]
	}
	in.Scans++
}

func (in *Input) Pressed(a platform.Action) bool {
	for _, p := range in.current {
		if p == a {
			return true
		}
	}
	return false
}

func (in *Input) Interactive() bool {
	return in.Terminal
}

// Link reports Ups in order, repeating the last value. An empty Ups means up.
type Link struct {
	Ups     []bool
	UpErr   error
	IP      net.IP
	AddrErr error
	Queries int
}

func (l *Link) Up() (bool, error) {
	l.Queries++
	if l.UpErr != nil {
		return false, l.UpErr
	}
	if len(l.Ups) == 0 {
		return true, nil
	}
	up := l.Ups[0]
	if len(l.Ups) > 1 {
		l.Ups = l.Ups[1:]
	}
	return up, nil
}

func (l *Link) Addr() (net.IP, error) {
	if l.AddrErr != nil {
		return nil, l.AddrErr
	}
	if l.IP == nil {
		return net.IPv4(192, 168, 0, 2), nil
	}
	return l.IP, nil
}

// Handoff records Load and Reset calls.
type Handoff struct {
	VerifyErr error
	LoadErr   error
	ResetErr  error
	Verifies  int
	Loads     int
	Resets    int
}

func (h *Handoff) Verify() error {
	h.Verifies++
	return h.VerifyErr
}

func (h *Handoff) Load() error {
	h.Loads++
	return h.LoadErr
}

func (h *Handoff) Reset() error {
	h.Resets++
	return h.ResetErr
}

// Network hands out the scripted channels.
type Network struct {
	Datagram    *Datagram
	Stream      *Stream
	DatagramErr error
	StreamErr   error
	Opens       []string
}

func (n *Network) OpenDatagram(context.Context) (transfer.DatagramChannel, error) {
	n.Opens = append(n.Opens, "datagram")
	if n.DatagramErr != nil {
		return nil, n.DatagramErr
	}
	if n.Datagram == nil {
		n.Datagram = &Datagram{}
	}
	return n.Datagram, nil
}

func (n *Network) OpenStream(context.Context) (transfer.StreamListener, error) {
	n.Opens = append(n.Opens, "stream")
	if n.StreamErr != nil {
		return nil, n.StreamErr
	}
	if n.Stream == nil {
		n.Stream = &Stream{}
	}
	return n.Stream, nil
}
