package transport

import (
	"errors"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/danmuck/gbanetboot/internal/protocol"
)

// Config controls where the channels bind and how long a poll may wait.
type Config struct {
	Host       string
	Port       int
	PollWindow time.Duration
}

func DefaultConfig() Config {
	return Config{
		Host:       "",
		Port:       protocol.DefaultPort,
		PollWindow: time.Millisecond,
	}
}

// WithDefaults fills zero fields from DefaultConfig. Port 0 is kept so tests
// can bind ephemeral ports.
func (c Config) WithDefaults() Config {
	if c.PollWindow <= 0 {
		c.PollWindow = DefaultConfig().PollWindow
	}
	return c
}

func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
