// Package netx resolves the network origin of a caller.
package netx

import (
	"net"
	"strings"
)

// Origin returns the first address listed in forwardedFor, as set by a
// fronting proxy, or else the host part of peerAddr.
func Origin(forwardedFor []string, peerAddr string) string {
	for _, v := range forwardedFor {
		first, _, _ := strings.Cut(v, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	return HostOf(peerAddr)
}

// HostOf strips the port from addr when it has one.
func HostOf(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
