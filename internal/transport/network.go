package transport

import (
	"context"

	"github.com/danmuck/gbanetboot/internal/transfer"
)

// Network opens both channels on the configured port.
type Network struct {
	cfg Config
}

func NewNetwork(cfg Config) Network {
	return Network{cfg: cfg.WithDefaults()}
}

func (n Network) Config() Config {
	return n.cfg
}

func (n Network) OpenDatagram(ctx context.Context) (transfer.DatagramChannel, error) {
	d, err := ListenDatagram(ctx, n.cfg)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (n Network) OpenStream(ctx context.Context) (transfer.StreamListener, error) {
	l, err := ListenStream(ctx, n.cfg)
	if err != nil {
		return nil, err
	}
	return l, nil
}
