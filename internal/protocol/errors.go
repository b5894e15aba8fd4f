package protocol

import "errors"

var (
	ErrNotInitRequest = errors.New("protocol: datagram is not an init request")
	ErrInvalidPort    = errors.New("protocol: invalid port")
)
