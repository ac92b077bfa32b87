// Package netutil cleans the client metadata recorded on a session.
package netutil

import (
	"net"
	"net/netip"
	"strings"
	"unicode/utf8"
)

const (
	MaxUserAgentLength = 512
	// maxRawIPLength caps what is stored when the address does not parse.
	maxRawIPLength = 64
)

// NormalizeIP reduces a remote address ("192.0.2.4:1234", "[2001:db8::1]:443",
// a bare IP) to its canonical IP text. Zones are dropped and IPv4-mapped IPv6
// addresses are unmapped. ok is false when raw holds no IP.
func NormalizeIP(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	host := raw
	if h, _, err := net.SplitHostPort(raw); err == nil {
		host = h
	}
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return raw, false
	}
	return addr.WithZone("").Unmap().String(), true
}

// SessionIP is what a session stores for the client address: the normalized
// IP, or the trimmed input capped at a column-friendly length.
func SessionIP(raw string) string {
	ip, ok := NormalizeIP(raw)
	if ok || len(ip) <= maxRawIPLength {
		return ip
	}
	return ip[:maxRawIPLength]
}

// TruncateUserAgent cuts ua to MaxUserAgentLength runes.
func TruncateUserAgent(ua string) string {
	ua = strings.TrimSpace(ua)
	if utf8.RuneCountInString(ua) <= MaxUserAgentLength {
		return ua
	}
	n := 0
	for i := range ua {
		if n == MaxUserAgentLength {
			return ua[:i]
		}
		n++
	}
	return ua
}
