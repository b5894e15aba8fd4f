package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/danmuck/gbanetboot/internal/protocol"
	"github.com/danmuck/gbanetboot/internal/testutil/testlog"
	"github.com/danmuck/gbanetboot/internal/transfer"
)

func loopbackConfig() Config {
	return Config{Host: "127.0.0.1", Port: 0, PollWindow: 5 * time.Millisecond}
}

func TestDatagramWouldBlockThenAcknowledges(t *testing.T) {
	testlog.Start(t)
	d, err := ListenDatagram(context.Background(), loopbackConfig())
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer d.Close()

	buf := make([]byte, 256)
	if _, _, err := d.ReadFrom(buf); !errors.Is(err, transfer.ErrWouldBlock) {
		t.Fatalf("expected would-block on empty socket, got %v", err)
	}

	sender, err := net.DialUDP("udp4", nil, d.LocalAddr().(*net.UDPAddr))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer sender.Close()
	if _, err := sender.Write([]byte(protocol.InitRequest)); err != nil {
		t.Fatalf("send request: %v", err)
	}

	var res transfer.DiscoveryResult
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		res, _, err = transfer.PollDiscovery(d, buf)
		if err != nil {
			t.Fatalf("poll: %v", err)
		}
		if res != transfer.DiscoveryIdle {
			break
		}
	}
	if res != transfer.DiscoveryAcknowledged {
		t.Fatalf("expected acknowledgment, got %v", res)
	}

	_ = sender.SetReadDeadline(time.Now().Add(2 * time.Second))
	reply := make([]byte, 256)
	n, err := sender.Read(reply)
	if err != nil {
		t.Fatalf("read ack: %v", err)
	}
	if string(reply[:n]) != protocol.InitAck {
		t.Fatalf("unexpected ack: %q", reply[:n])
	}
}

func TestStreamAcceptReadAndClose(t *testing.T) {
	testlog.Start(t)
	l, err := ListenStream(context.Background(), loopbackConfig())
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()

	if _, err := l.Accept(); !errors.Is(err, transfer.ErrWouldBlock) {
		t.Fatalf("expected would-block accept, got %v", err)
	}

	sender, err := net.Dial("tcp4", l.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	var conn transfer.StreamConn
	deadline := time.Now().Add(2 * time.Second)
	for conn == nil && time.Now().Before(deadline) {
		conn, err = l.Accept()
		if err != nil && !errors.Is(err, transfer.ErrWouldBlock) {
			t.Fatalf("accept: %v", err)
		}
	}
	if conn == nil {
		t.Fatalf("connection never accepted")
	}
	defer conn.Close()

	buf := make([]byte, 64)
	if _, err := conn.Read(buf); !errors.Is(err, transfer.ErrWouldBlock) {
		t.Fatalf("expected would-block read, got %v", err)
	}

	if _, err := sender.Write([]byte("rom-bytes")); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = sender.Close()

	var got []byte
	sawEOF := false
	for !sawEOF && time.Now().Before(deadline) {
		n, err := conn.Read(buf)
		got = append(got, buf[:n]...)
		switch {
		case errors.Is(err, io.EOF):
			sawEOF = true
		case err != nil && !errors.Is(err, transfer.ErrWouldBlock):
			t.Fatalf("read: %v", err)
		}
	}
	if !sawEOF {
		t.Fatalf("orderly close never observed")
	}
	if string(got) != "rom-bytes" {
		t.Fatalf("unexpected payload: %q", got)
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.WithDefaults()
	if cfg.PollWindow != time.Millisecond {
		t.Fatalf("unexpected poll window: %v", cfg.PollWindow)
	}
	if DefaultConfig().Address() != ":31313" {
		t.Fatalf("unexpected default address: %q", DefaultConfig().Address())
	}
}
