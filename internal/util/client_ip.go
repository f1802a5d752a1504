package util

import (
	"net"
	"net/http"
	"strings"
)

// TrustedProxies is the set of proxy addresses whose forwarded headers are
// believed. Rate limiting keys on the resolved client IP, so forwarded
// headers from arbitrary peers must not be trusted.
type TrustedProxies struct {
	nets []*net.IPNet
}

// NewTrustedProxies builds the allowlist from CIDR or bare-IP entries.
// An empty list means no proxy is trusted and the TCP peer is the client.
func NewTrustedProxies(entries []string) (*TrustedProxies, error) {
	var nets []*net.IPNet
	for _, raw := range entries {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}
		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				return nil, &net.ParseError{Type: "IP address", Text: entry}
			}
			bits := 32
			if ip.To4() == nil {
				bits = 128
			}
			nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, cidr, err := net.ParseCIDR(entry)
		if err != nil {
			return nil, err
		}
		nets = append(nets, cidr)
	}
	if len(nets) == 0 {
		return nil, nil
	}
	return &TrustedProxies{nets: nets}, nil
}

// Contains reports whether ip falls inside any trusted range. A nil
// receiver trusts nothing.
func (t *TrustedProxies) Contains(ip net.IP) bool {
	if t == nil || ip == nil {
		return false
	}
	for _, n := range t.nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP resolves the originating client address for a request. When the
// direct peer is a trusted proxy, X-Forwarded-For is walked right to left
// and the first untrusted hop wins; otherwise the peer address is returned
// as-is.
func ClientIP(r *http.Request, trusted *TrustedProxies) string {
	peer := hostIP(r.RemoteAddr)
	if peer == nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	if !trusted.Contains(peer) {
		return peer.String()
	}

	hops := forwardedHops(r.Header.Get("X-Forwarded-For"))
	for i := len(hops) - 1; i >= 0; i-- {
		if !trusted.Contains(hops[i]) {
			return hops[i].String()
		}
	}
	if len(hops) > 0 {
		// Every listed hop is a trusted proxy; the leftmost entry is the
		// closest thing to a client we have.
		return hops[0].String()
	}
	if realIP := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); realIP != nil {
		return realIP.String()
	}
	return peer.String()
}

func forwardedHops(header string) []net.IP {
	if strings.TrimSpace(header) == "" {
		return nil
	}
	parts := strings.Split(header, ",")
	hops := make([]net.IP, 0, len(parts))
	for _, part := range parts {
		if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
			hops = append(hops, ip)
		}
	}
	return hops
}

func hostIP(addr string) net.IP {
	addr = strings.TrimSpace(addr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	return net.ParseIP(addr)
}
