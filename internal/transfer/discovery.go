package transfer

import (
	"errors"
	"fmt"
	"net"

	"github.com/danmuck/gbanetboot/internal/protocol"
	"github.com/rs/zerolog/log"
)

// DiscoveryResult describes what one discovery poll did.
type DiscoveryResult int

const (
	DiscoveryIdle DiscoveryResult = iota
	DiscoveryIgnored
	DiscoveryAcknowledged
)

func (r DiscoveryResult) String() string {
	switch r {
	case DiscoveryIdle:
		return "idle"
	case DiscoveryIgnored:
		return "ignored"
	case DiscoveryAcknowledged:
		return "acknowledged"
	default:
		return "unknown"
	}
}

// PollDiscovery performs one non-blocking read on ch into buf and answers a
// valid init request with the ack token. The returned address is the
// datagram source, nil when idle.
func PollDiscovery(ch DatagramChannel, buf []byte) (DiscoveryResult, net.Addr, error) {
	n, src, err := ch.ReadFrom(buf)
	if errors.Is(err, ErrWouldBlock) {
		return DiscoveryIdle, nil, nil
	}
	if err != nil {
		return DiscoveryIdle, nil, fmt.Errorf("%w: %w", ErrDiscoveryReceive, err)
	}
	if !protocol.IsInitRequest(buf[:n]) {
		log.Debug().Stringer("from", src).Int("bytes", n).Msg("transfer.PollDiscovery ignored datagram")
		return DiscoveryIgnored, src, nil
	}

	log.Info().Stringer("from", src).Msg("transfer.PollDiscovery init request, acknowledging")
	if _, err := ch.WriteTo(protocol.AckPayload(), src); err != nil {
		return DiscoveryIgnored, src, fmt.Errorf("%w: %w", ErrDiscoveryReply, err)
	}
	return DiscoveryAcknowledged, src, nil
}
