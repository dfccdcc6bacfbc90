package antifraud

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestContext(remoteAddr string, headers map[string]string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/register", nil)
	c.Request.RemoteAddr = remoteAddr
	for key, value := range headers {
		c.Request.Header.Set(key, value)
	}
	return c
}

func TestExtractRealIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		expected   string
	}{
		{
			name:       "x-real-ip wins",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Real-IP": "203.0.113.9", "X-Forwarded-For": "198.51.100.1"},
			expected:   "203.0.113.9",
		},
		{
			name:       "first forwarded entry",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.1, 10.0.0.1"},
			expected:   "198.51.100.1",
		},
		{
			name:       "socket address fallback",
			remoteAddr: "192.0.2.44:5678",
			headers:    nil,
			expected:   "192.0.2.44",
		},
		{
			name:       "loopback default",
			remoteAddr: "",
			headers:    nil,
			expected:   "127.0.0.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestContext(tt.remoteAddr, tt.headers)
			assert.Equal(t, tt.expected, ExtractRealIP(c))
		})
	}
}

func TestExtractUserAgent(t *testing.T) {
	c := newTestContext("10.0.0.1:1234", map[string]string{"User-Agent": "registration-app/2.1"})
	assert.Equal(t, "registration-app/2.1", ExtractUserAgent(c))

	c = newTestContext("10.0.0.1:1234", nil)
	c.Request.Header.Del("User-Agent")
	assert.Equal(t, "Unknown", ExtractUserAgent(c))
}
