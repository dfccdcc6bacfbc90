package antifraud

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// ExtractRealIP resolves the client IP for scoring. Precedence: X-Real-IP,
// then the first entry of X-Forwarded-For, then the socket address, then the
// loopback fallback.
func ExtractRealIP(c *gin.Context) string {
	if ip := strings.TrimSpace(c.GetHeader("X-Real-IP")); ip != "" {
		return ip
	}

	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}

	if c.Request != nil && c.Request.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil {
			return host
		}
		return c.Request.RemoteAddr
	}

	return "127.0.0.1"
}

// ExtractUserAgent returns the User-Agent header or "Unknown"
func ExtractUserAgent(c *gin.Context) string {
	if ua := c.GetHeader("User-Agent"); ua != "" {
		return ua
	}
	return "Unknown"
}
