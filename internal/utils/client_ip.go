package utils

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// TrustedProxies lists the peers whose forwarding headers are believed.
type TrustedProxies []*net.IPNet

// ParseTrustedProxies accepts bare IPs and CIDR blocks.
func ParseTrustedProxies(entries []string) (TrustedProxies, error) {
	out := make(TrustedProxies, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if !strings.Contains(e, "/") {
			ip := net.ParseIP(e)
			if ip == nil {
				return nil, fmt.Errorf("invalid proxy address %q", e)
			}
			bits := 8 * net.IPv6len
			if ip4 := ip.To4(); ip4 != nil {
				ip, bits = ip4, 8*net.IPv4len
			}
			out = append(out, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, block, err := net.ParseCIDR(e)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy range %q: %w", e, err)
		}
		out = append(out, block)
	}
	return out, nil
}

// Contains reports whether ip falls in any trusted range.
func (t TrustedProxies) Contains(ip net.IP) bool {
	for _, block := range t {
		if block.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP returns the address of the peer that sent r. Forwarding headers
// are only read when that peer is a trusted proxy; X-Forwarded-For and
// Forwarded are then walked right to left and the first untrusted hop wins.
// Returns "" when nothing parses.
func ClientIP(r *http.Request, trusted TrustedProxies) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	peer := net.ParseIP(host)
	if peer == nil {
		return ""
	}
	if !trusted.Contains(peer) {
		return peer.String()
	}

	if hops := forwardedForHops(r); len(hops) > 0 {
		return trusted.firstUntrusted(hops, peer)
	}

	for _, h := range []string{"CF-Connecting-IP", "X-Real-IP"} {
		if ip := net.ParseIP(strings.TrimSpace(r.Header.Get(h))); ip != nil {
			return ip.String()
		}
	}
	return peer.String()
}

// firstUntrusted walks hops from the closest proxy outwards. An unparsable
// hop ends the walk since nothing before it can be attributed.
func (t TrustedProxies) firstUntrusted(hops []string, peer net.IP) string {
	last := peer
	for i := len(hops) - 1; i >= 0; i-- {
		ip := net.ParseIP(hops[i])
		if ip == nil {
			break
		}
		if !t.Contains(ip) {
			return ip.String()
		}
		last = ip
	}
	return last.String()
}

// forwardedForHops prefers X-Forwarded-For and falls back to the for=
// parameters of RFC 7239 Forwarded, in header order.
func forwardedForHops(r *http.Request) []string {
	var hops []string
	for _, v := range r.Header.Values("X-Forwarded-For") {
		for _, hop := range strings.Split(v, ",") {
			hops = append(hops, strings.TrimSpace(hop))
		}
	}
	if len(hops) > 0 {
		return hops
	}

	for _, v := range r.Header.Values("Forwarded") {
		for _, element := range strings.Split(v, ",") {
			for _, pair := range strings.Split(element, ";") {
				pair = strings.TrimSpace(pair)
				if len(pair) < 4 || !strings.EqualFold(pair[:4], "for=") {
					continue
				}
				hops = append(hops, forwardedNode(pair[4:]))
			}
		}
	}
	return hops
}

// forwardedNode strips quoting, an IPv6 bracket pair and any port.
func forwardedNode(v string) string {
	v = strings.Trim(v, `"`)
	if strings.HasPrefix(v, "[") {
		if end := strings.Index(v, "]"); end > 0 {
			return v[1:end]
		}
	}
	if host, _, err := net.SplitHostPort(v); err == nil {
		return host
	}
	return v
}
