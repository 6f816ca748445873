package pkg

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// TrustedProxies holds the peer networks whose forwarding headers are believed.
type TrustedProxies []*net.IPNet

// ParseTrustedProxies accepts CIDRs and bare addresses.
func ParseTrustedProxies(entries []string) (TrustedProxies, error) {
	proxies := make(TrustedProxies, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				return nil, fmt.Errorf("trusted proxy %q is not an ip", entry)
			}
			bits := 8 * net.IPv6len
			if ip.To4() != nil {
				ip, bits = ip.To4(), 8*net.IPv4len
			}
			proxies = append(proxies, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}

		_, ipNet, err := net.ParseCIDR(entry)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", entry, err)
		}
		proxies = append(proxies, ipNet)
	}
	return proxies, nil
}

func (tp TrustedProxies) Contains(ip net.IP) bool {
	for _, ipNet := range tp {
		if ipNet.Contains(ip) {
			return true
		}
	}
	return false
}

// ReadUserIP resolves the caller address. The socket peer is the caller unless
// it is a trusted proxy, in which case X-Real-Ip, or else the nearest untrusted
// hop of X-Forwarded-For, names the client.
func ReadUserIP(r *http.Request, trusted TrustedProxies) (string, error) {
	peer := parseHostIP(r.RemoteAddr)
	if peer == nil {
		return "", fmt.Errorf("ip addr %s is invalid", r.RemoteAddr)
	}
	if !trusted.Contains(peer) {
		return peer.String(), nil
	}

	if realIP := parseHostIP(r.Header.Get("X-Real-Ip")); realIP != nil {
		return realIP.String(), nil
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := parseHostIP(hops[i])
		if hop == nil {
			break
		}
		if !trusted.Contains(hop) {
			return hop.String(), nil
		}
	}

	return peer.String(), nil
}

func parseHostIP(addr string) net.IP {
	addr = strings.TrimSpace(addr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	return net.ParseIP(addr)
}
