package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// ClientAddr returns a function that derives the client address of a
// request. The remote address is used unless trustForwarded is set, in
// which case the first X-Forwarded-For entry wins. Only enable
// trustForwarded behind a proxy that overwrites the header.
func ClientAddr(trustForwarded bool) func(*http.Request) string {
	return func(r *http.Request) string {
		if trustForwarded {
			if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
				first, _, _ := strings.Cut(fwd, ",")
				if ip := strings.TrimSpace(first); ip != "" {
					return ip
				}
			}
		}
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			return r.RemoteAddr
		}
		return host
	}
}

// Key builds the limiter key for a client on an endpoint. Each endpoint
// has its own quota.
func Key(endpoint, client string) string {
	return endpoint + "|" + client
}

// endpointOf identifies the endpoint a request was routed to. The
// ServeMux pattern is preferred so that path parameters share a quota.
func endpointOf(r *http.Request) string {
	if r.Pattern != "" {
		return r.Pattern
	}
	return r.Method + " " + r.URL.Path
}
