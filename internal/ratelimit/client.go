package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// UnknownClient is the key shared by requests with no usable address.
const UnknownClient = "unknown"

// ClientKey derives the rate-limit key for r. It prefers proxy-supplied
// headers (CF-Connecting-IP, the first X-Forwarded-For hop, X-Real-IP),
// then the connection's remote host, and finally UnknownClient.
func ClientKey(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	if r.RemoteAddr != "" {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if host != "" {
			return host
		}
	}

	return UnknownClient
}
