// Package limiter provides per-client request rate limiting for the HTTP
// lookup surface.
package limiter

import (
	"net"
	"net/netip"
)

// Limiter decides whether a client may make another request
type Limiter interface {
	// Allow reports whether a request from client is within the limit
	Allow(client string) bool

	// Close releases connections and background work
	Close() error
}

// v6ClientBits groups IPv6 clients by their /64, the usual size of one
// subscriber allocation
const v6ClientBits = 64

// ClientKey returns the rate limiting key for a remote address such as
// http.Request.RemoteAddr. IPv4 clients are keyed by address, IPv6 clients by
// their /64. Anything unparsable is used as is.
func ClientKey(remoteAddr string) string {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return host
	}
	addr = addr.WithZone("").Unmap()
	if addr.Is4() {
		return addr.String()
	}
	prefix, err := addr.Prefix(v6ClientBits)
	if err != nil {
		return addr.String()
	}
	return prefix.String()
}
