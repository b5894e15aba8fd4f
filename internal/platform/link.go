package platform

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

var ErrNoAddress = errors.New("platform: no usable ipv4 address")

// NetLink reports link status from the host's network interfaces. An empty
// Interface accepts any non-loopback interface that is up and running.
type NetLink struct {
	Interface string

	interfaces func() ([]net.Interface, error)
	addrs      func(net.Interface) ([]net.Addr, error)
}

func NewNetLink(iface string) *NetLink {
	return &NetLink{
		Interface:  strings.TrimSpace(iface),
		interfaces: net.Interfaces,
		addrs:      func(i net.Interface) ([]net.Addr, error) { return i.Addrs() },
	}
}

// Up reports whether a matching interface carries an IPv4 address.
func (l *NetLink) Up() (bool, error) {
	ip, err := l.Addr()
	if errors.Is(err, ErrNoAddress) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return ip != nil, nil
}

// Addr returns the first IPv4 address of a matching interface.
func (l *NetLink) Addr() (net.IP, error) {
	ifaces, err := l.interfaces()
	if err != nil {
		return nil, fmt.Errorf("platform: could not list interfaces: %w", err)
	}
	for _, iface := range ifaces {
		if l.Interface != "" && iface.Name != l.Interface {
			continue
		}
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagRunning == 0 {
			continue
		}
		addrs, err := l.addrs(iface)
		if err != nil {
			return nil, fmt.Errorf("platform: could not get IP info for %s: %w", iface.Name, err)
		}
		for _, a := range addrs {
			var ip net.IP
			switch v := a.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip4 := ip.To4(); ip4 != nil && !ip4.IsLoopback() {
				return ip4, nil
			}
		}
	}
	return nil, ErrNoAddress
}
