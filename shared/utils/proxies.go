package utils

import (
	"fmt"
	"net"
	"strings"
)

// Proxies is the set of peers whose forwarding headers are believed. A nil
// set trusts nobody.
type Proxies struct {
	nets []*net.IPNet
}

// ParseProxies accepts CIDR ranges and bare addresses.
func ParseProxies(entries []string) (*Proxies, error) {
	p := &Proxies{}
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if !strings.Contains(e, "/") {
			ip := net.ParseIP(e)
			if ip == nil {
				return nil, fmt.Errorf("invalid proxy address %q", e)
			}
			bits := 8 * net.IPv6len
			if v4 := ip.To4(); v4 != nil {
				ip, bits = v4, 8*net.IPv4len
			}
			p.nets = append(p.nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(e)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy range %q: %w", e, err)
		}
		p.nets = append(p.nets, n)
	}
	return p, nil
}

// MustParseProxies is ParseProxies for lists already checked at config load.
func MustParseProxies(entries []string) *Proxies {
	p, err := ParseProxies(entries)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Proxies) Contains(ip net.IP) bool {
	if p == nil || ip == nil {
		return false
	}
	for _, n := range p.nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
