package protocol

import (
	"bytes"
	"fmt"
)

const (
	// DefaultPort is shared by the discovery datagram and transfer stream channels.
	DefaultPort = 31313

	InitRequest = "gba_net_boot_init_beta_0001"
	InitAck     = "gba_net_boot_ack_beta_0001"

	// MaxPayloadBytes caps one transfer regardless of what the sender intends.
	MaxPayloadBytes int64 = 32 * 1024 * 1024
)

var (
	initRequest = []byte(InitRequest)
	initAck     = []byte(InitAck)
)

// IsInitRequest reports whether datagram starts with the init token.
// Trailing bytes are accepted; senders pad datagrams to a fixed size.
func IsInitRequest(datagram []byte) bool {
	return bytes.HasPrefix(datagram, initRequest)
}

// CheckInitRequest is IsInitRequest with an error for logging call sites.
func CheckInitRequest(datagram []byte) error {
	if !IsInitRequest(datagram) {
		return ErrNotInitRequest
	}
	return nil
}

// AckPayload returns a fresh copy of the acknowledgment datagram.
func AckPayload() []byte {
	out := make([]byte, len(initAck))
	copy(out, initAck)
	return out
}

// ValidatePort rejects ports outside 1..65535.
func ValidatePort(port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, port)
	}
	return nil
}
