package transport

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/danmuck/gbanetboot/internal/transfer"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/ipv4"
)

// Datagram is the discovery socket. Replies go out on the interface the
// last request arrived on when the platform reports it.
type Datagram struct {
	conn   *net.UDPConn
	pc     *ipv4.PacketConn
	window time.Duration

	controlMessages bool
	lastIfIndex     int
}

var _ transfer.DatagramChannel = (*Datagram)(nil)

func ListenDatagram(ctx context.Context, cfg Config) (*Datagram, error) {
	cfg = cfg.WithDefaults()
	var lc net.ListenConfig
	pconn, err := lc.ListenPacket(ctx, "udp4", cfg.Address())
	if err != nil {
		return nil, fmt.Errorf("transport: could not bind udp socket: %w", err)
	}
	conn, ok := pconn.(*net.UDPConn)
	if !ok {
		_ = pconn.Close()
		return nil, fmt.Errorf("transport: unexpected packet conn %T", pconn)
	}

	d := &Datagram{conn: conn, pc: ipv4.NewPacketConn(conn), window: cfg.PollWindow}
	if err := d.pc.SetControlMessage(ipv4.FlagInterface|ipv4.FlagDst, true); err != nil {
		log.Debug().Err(err).Msg("transport.ListenDatagram control messages unavailable")
	} else {
		d.controlMessages = true
	}
	log.Debug().Stringer("addr", conn.LocalAddr()).Msg("transport.ListenDatagram bound")
	return d, nil
}

func (d *Datagram) LocalAddr() net.Addr {
	return d.conn.LocalAddr()
}

func (d *Datagram) ReadFrom(b []byte) (int, net.Addr, error) {
	if err := d.pc.SetReadDeadline(time.Now().Add(d.window)); err != nil {
		return 0, nil, err
	}
	n, cm, src, err := d.pc.ReadFrom(b)
	if err != nil {
		if isTimeout(err) {
			return 0, nil, transfer.ErrWouldBlock
		}
		return 0, nil, err
	}
	d.lastIfIndex = 0
	if cm != nil {
		d.lastIfIndex = cm.IfIndex
		log.Trace().Stringer("dst", cm.Dst).Int("ifindex", cm.IfIndex).Msg("transport.Datagram.ReadFrom")
	}
	return n, src, nil
}

func (d *Datagram) WriteTo(b []byte, addr net.Addr) (int, error) {
	var cm *ipv4.ControlMessage
	if d.controlMessages && d.lastIfIndex > 0 {
		cm = &ipv4.ControlMessage{IfIndex: d.lastIfIndex}
	}
	return d.pc.WriteTo(b, cm, addr)
}

func (d *Datagram) Close() error {
	return d.pc.Close()
}
