// Package localonly rejects requests whose peer is not the local machine.
package localonly

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

const Code = "FORBIDDEN_REMOTE_ACCESS"

var allowed = map[string]struct{}{
	"127.0.0.1":        {},
	"::1":              {},
	"::ffff:127.0.0.1": {},
	"localhost":        {},
}

// IsLoopback reports whether remoteAddr (host or host:port, as found in
// http.Request.RemoteAddr) is the local machine. An empty address counts as
// local. Forwarding headers are never consulted.
func IsLoopback(remoteAddr string) bool {
	if remoteAddr == "" {
		return true
	}

	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	if host == "" {
		return true
	}

	if _, ok := allowed[host]; ok {
		return true
	}
	_, ok := allowed[strings.TrimPrefix(host, "::ffff:")]

	return ok
}

// Middleware answers 403 to every non-local request before it reaches the
// rest of the chain.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IsLoopback(r.RemoteAddr) {
			next.ServeHTTP(w, r)

			return
		}

		slog.Warn("Blocked remote access attempt",
			"remote_addr", r.RemoteAddr,
			"method", r.Method,
			"path", r.URL.Path,
			"timestamp", time.Now().UTC().Format(time.RFC3339))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error":   "Access Denied",
			"message": "This admin panel is restricted to localhost only.",
			"code":    Code,
		})
	})
}
