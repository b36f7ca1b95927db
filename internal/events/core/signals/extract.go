package signals

import (
	"net/netip"
	"strings"

	"capi-event-relay/internal/events/core/domain"
)

// RequestMeta is the transport information the HTTP adapter observed.
type RequestMeta struct {
	RemoteAddr      string
	ForwardedFor    string
	UserAgentHeader string
}

// Extract derives the client address and user agent. A valid address in the
// trusted forwarded header wins over the transport address; anything that
// isn't an IP literal is dropped rather than guessed at.
func Extract(meta RequestMeta, user domain.UserData) domain.Signals {
	var s domain.Signals

	if ip, ok := firstForwarded(meta.ForwardedFor); ok {
		s.ClientIPAddress = ip
	} else if ip, ok := parseIP(meta.RemoteAddr); ok {
		s.ClientIPAddress = ip
	}

	if user.UserAgent != nil && strings.TrimSpace(*user.UserAgent) != "" {
		s.UserAgent = strings.TrimSpace(*user.UserAgent)
	} else {
		s.UserAgent = strings.TrimSpace(meta.UserAgentHeader)
	}

	return s
}

// firstForwarded reads the left-most entry, which proxies append to as the
// original client address.
func firstForwarded(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	first, _, _ := strings.Cut(header, ",")
	return parseIP(first)
}

func parseIP(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	if addr, err := netip.ParseAddr(raw); err == nil {
		return addr.Unmap().WithZone("").String(), true
	}
	if ap, err := netip.ParseAddrPort(raw); err == nil {
		return ap.Addr().Unmap().WithZone("").String(), true
	}
	return "", false
}
