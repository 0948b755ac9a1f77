package httpguard

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the address recorded for a safe device. Proxy headers are
// checked in order: CF-Connecting-IP, DO-Connecting-IP, the first valid entry
// of X-Forwarded-For, X-Real-IP. RemoteAddr is the fallback.
// Only deploy behind proxies that overwrite these headers.
func ClientIP(r *http.Request) string {
	for _, header := range []string{"CF-Connecting-IP", "DO-Connecting-IP"} {
		if ip := parseIP(r.Header.Get(header)); ip != "" {
			return ip
		}
	}
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		for part := range strings.SplitSeq(forwarded, ",") {
			if ip := parseIP(part); ip != "" {
				return ip
			}
		}
	}
	if ip := parseIP(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return parseIP(r.RemoteAddr)
	}
	return parseIP(host)
}

func parseIP(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil {
		return ""
	}
	return ip.String()
}
