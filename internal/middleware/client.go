package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/hongminglow/lateral-entry-be/internal/models"
)

// ClientIP prefers the first X-Forwarded-For hop, then the socket peer.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if real := strings.TrimSpace(r.Header.Get("X-Real-IP")); real != "" {
		return real
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ActorFrom describes who is acting for audit entries. UserID is zero when anonymous.
func ActorFrom(r *http.Request) models.Actor {
	actor := models.Actor{IPAddress: ClientIP(r), UserAgent: r.UserAgent()}
	if user, ok := UserFrom(r.Context()); ok {
		actor.UserID = user.UserID
	}
	return actor
}
