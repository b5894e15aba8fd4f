package receiver

import (
	"context"
	"net"

	"github.com/danmuck/gbanetboot/internal/buffers"
	"github.com/danmuck/gbanetboot/internal/platform"
	"github.com/danmuck/gbanetboot/internal/storage"
	"github.com/danmuck/gbanetboot/internal/transfer"
)

// LinkStatus reports whether the network link is usable.
type LinkStatus interface {
	Up() (bool, error)
	Addr() (net.IP, error)
}

// Input is polled once per tick; Pressed reports keys newly pressed at the
// last Scan.
type Input interface {
	Scan()
	Pressed(a platform.Action) bool
	Interactive() bool
}

// Handoff loads the next program and transfers control to it.
type Handoff interface {
	Load() error
	Reset() error
}

// verifier is implemented by handoffs that can check their staging region
// before any network work starts.
type verifier interface {
	Verify() error
}

// Network opens the discovery and transfer channels.
type Network interface {
	OpenDatagram(ctx context.Context) (transfer.DatagramChannel, error)
	OpenStream(ctx context.Context) (transfer.StreamListener, error)
}

// Observer receives session snapshots from the driver goroutine.
type Observer interface {
	OnState(s transfer.Session)
	OnProgress(s transfer.Session)
	OnDiscovery(r transfer.DiscoveryResult)
}

// Deps are the collaborators of a Driver.
type Deps struct {
	Link      LinkStatus
	Input     Input
	Handoff   Handoff
	Network   Network
	Storage   storage.Storage
	Allocator buffers.Allocator
	Observer  Observer
}

// NopObserver ignores every callback.
type NopObserver struct{}

func (NopObserver) OnState(transfer.Session)             {}
func (NopObserver) OnProgress(transfer.Session)          {}
func (NopObserver) OnDiscovery(transfer.DiscoveryResult) {}

// MultiObserver fans callbacks out in order.
type MultiObserver []Observer

func (m MultiObserver) OnState(s transfer.Session) {
	for _, o := range m {
		o.OnState(s)
	}
}

func (m MultiObserver) OnProgress(s transfer.Session) {
	for _, o := range m {
		o.OnProgress(s)
	}
}

func (m MultiObserver) OnDiscovery(r transfer.DiscoveryResult) {
	for _, o := range m {
		o.OnDiscovery(r)
	}
}
