package middlewares

import (
	"net/http"
	"net/netip"
	"strings"
)

// ClientIP rewrites r.RemoteAddr to the address of the originating client.
// Forwarding headers are only honoured when the immediate peer is one of the
// trusted proxies, so a direct caller cannot spoof its address.
func ClientIP(trusted []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			peer, ok := parseRemoteAddr(r.RemoteAddr)
			if ok {
				client := peer.Addr()
				if isTrusted(client, trusted) {
					if forwarded, found := forwardedClient(r.Header, trusted); found {
						client = forwarded
					}
				}
				r.RemoteAddr = netip.AddrPortFrom(client, peer.Port()).String()
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RemoteIP returns the host part of r.RemoteAddr once ClientIP has run.
func RemoteIP(r *http.Request) string {
	if peer, ok := parseRemoteAddr(r.RemoteAddr); ok {
		return peer.Addr().String()
	}
	return r.RemoteAddr
}

func parseRemoteAddr(remote string) (netip.AddrPort, bool) {
	if ap, err := netip.ParseAddrPort(remote); err == nil {
		return netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port()), true
	}
	if addr, err := netip.ParseAddr(strings.TrimSpace(remote)); err == nil {
		return netip.AddrPortFrom(addr.Unmap(), 0), true
	}
	return netip.AddrPort{}, false
}

func forwardedClient(h http.Header, trusted []netip.Prefix) (netip.Addr, bool) {
	for _, name := range []string{"True-Client-IP", "X-Real-IP"} {
		if addr, err := netip.ParseAddr(strings.TrimSpace(h.Get(name))); err == nil {
			return addr.Unmap(), true
		}
	}

	// X-Forwarded-For is appended to by every hop; the rightmost untrusted
	// entry is the first one a trusted proxy did not vouch for.
	hops := strings.Split(strings.Join(h.Values("X-Forwarded-For"), ","), ",")
	var last netip.Addr
	for i := len(hops) - 1; i >= 0; i-- {
		addr, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			break
		}
		last = addr.Unmap()
		if !isTrusted(last, trusted) {
			return last, true
		}
	}
	return last, last.IsValid()
}

func isTrusted(addr netip.Addr, trusted []netip.Prefix) bool {
	for _, prefix := range trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
