package edgetrust

import (
	"net"
	"net/netip"
	"strings"
)

// parseIP extracts an IP address from a forwarded header value.
// It handles:
//   - Leading/trailing whitespace: "  192.168.1.1  "
//   - Port suffixes: "192.168.1.1:8080" or "[::1]:8080"
//   - Quoted values: "\"192.168.1.1\"" or "'192.168.1.1'"
//   - IPv6 brackets: "[::1]"
//
// The port, when present, is returned separately.
//
// Returns an invalid netip.Addr (IsValid() == false) if parsing fails.
func parseIP(s string) (netip.Addr, string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return netip.Addr{}, ""
	}

	s = trimMatchedChar(s, '"')
	s = trimMatchedChar(s, '\'')
	if s == "" {
		return netip.Addr{}, ""
	}

	var port string
	if host, p, err := net.SplitHostPort(s); err == nil {
		s = host
		port = p
	}

	s = trimMatchedPair(s, '[', ']')

	ip, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, ""
	}
	return ip, port
}

// parseRemoteAddr extracts the peer address from Request.RemoteAddr, which is
// "ip:port" for TCP listeners but may be a bare address in tests and some
// adapters.
func parseRemoteAddr(remoteAddr string) (netip.Addr, string) {
	remoteAddr = strings.TrimSpace(remoteAddr)
	if remoteAddr == "" {
		return netip.Addr{}, ""
	}

	if addrPort, err := netip.ParseAddrPort(remoteAddr); err == nil {
		return addrPort.Addr(), remoteAddrPort(remoteAddr)
	}

	ip, err := netip.ParseAddr(trimMatchedPair(remoteAddr, '[', ']'))
	if err != nil {
		return netip.Addr{}, ""
	}
	return ip, ""
}

func remoteAddrPort(remoteAddr string) string {
	if _, port, err := net.SplitHostPort(remoteAddr); err == nil {
		return port
	}
	return ""
}

// normalizeIP unmaps IPv4-mapped IPv6 addresses and drops zones, so peers on
// dual-stack listeners are matched against IPv4 ranges.
func normalizeIP(ip netip.Addr) netip.Addr {
	if ip.Is4In6() {
		ip = ip.Unmap()
	}
	return ip.WithZone("")
}

// trimMatchedPair removes one leading and trailing delimiter when both match.
func trimMatchedPair(s string, start, end byte) string {
	if len(s) < 2 {
		return s
	}

	if s[0] != start || s[len(s)-1] != end {
		return s
	}

	return s[1 : len(s)-1]
}

// trimMatchedChar removes one matching leading and trailing character.
func trimMatchedChar(s string, ch byte) string {
	return trimMatchedPair(s, ch, ch)
}
