package metadata

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/mssola/useragent"

	"civicfund/pkg/requestcontext"
)

// TrustedProxies lists the peers whose X-Forwarded-For and X-Real-IP
// headers are believed. A nil *TrustedProxies trusts nobody.
type TrustedProxies struct {
	prefixes []netip.Prefix
}

// ParseTrustedProxies accepts bare addresses and CIDR ranges.
func ParseTrustedProxies(entries []string) (*TrustedProxies, error) {
	t := &TrustedProxies{}
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", entry, err)
			}
			t.prefixes = append(t.prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", entry, err)
		}
		addr = addr.Unmap()
		t.prefixes = append(t.prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return t, nil
}

func (t *TrustedProxies) trusts(addr netip.Addr) bool {
	if t == nil || !addr.IsValid() {
		return false
	}
	addr = addr.Unmap()
	for _, p := range t.prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientMetadata extracts client IP address and User-Agent from the request
// and adds them to the context for rate limiting and audit events. Forwarding
// headers are ignored; use WithTrustedProxies behind a reverse proxy.
func ClientMetadata(next http.Handler) http.Handler {
	return WithTrustedProxies(nil)(next)
}

// WithTrustedProxies is ClientMetadata honoring forwarding headers sent by
// trusted.
func WithTrustedProxies(trusted *TrustedProxies) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ua := r.Header.Get("User-Agent")
			ctx := requestcontext.WithClientMetadata(r.Context(), trusted.ClientIP(r), ua)
			ctx = requestcontext.WithDevice(ctx, DeviceLabel(ua))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIP resolves the client address. The peer address is used unless the
// peer is a trusted proxy; then X-Forwarded-For is walked from the right,
// skipping trusted hops, and X-Real-IP is the fallback.
func (t *TrustedProxies) ClientIP(r *http.Request) string {
	peer := remoteHost(r.RemoteAddr)
	peerAddr, err := netip.ParseAddr(peer)
	if err != nil || !t.trusts(peerAddr) {
		if peer == "" {
			return "unknown"
		}
		return peer
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			addr, err := netip.ParseAddr(hop)
			if err != nil {
				break
			}
			if !t.trusts(addr) || i == 0 {
				return addr.Unmap().String()
			}
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		if addr, err := netip.ParseAddr(xri); err == nil {
			return addr.Unmap().String()
		}
	}
	return peer
}

func remoteHost(remoteAddr string) string {
	if remoteAddr == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}

// DeviceLabel summarizes a User-Agent as "Browser on OS" for audit logs.
func DeviceLabel(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return "unknown"
	}
	ua := useragent.New(userAgent)
	if ua.Bot() {
		return "bot"
	}
	browser, _ := ua.Browser()
	platform := ua.OS()
	label := browser
	switch {
	case browser == "" && platform == "":
		return "unknown"
	case browser == "":
		label = platform
	case platform != "":
		label += " on " + platform
	}
	if ua.Mobile() {
		label += " (mobile)"
	}
	return label
}
