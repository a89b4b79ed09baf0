package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseHostNoPort(t *testing.T) {
	assert.Equal(t, "10.0.0.1", ParseHostNoPort("10.0.0.1:8080"))
	assert.Equal(t, "::1", ParseHostNoPort("[::1]:8080"))
	assert.Equal(t, "::1", ParseHostNoPort("[::1]"))
	assert.Equal(t, "shelf.example.com", ParseHostNoPort("shelf.example.com"))
	assert.Equal(t, "", ParseHostNoPort(""))
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		trustProxy bool
		headers    map[string]string
		want       string
	}{
		{"remote addr", false, nil, "8.8.8.8"},
		{"headers ignored without trust", false, map[string]string{"X-Forwarded-For": "10.0.0.1"}, "8.8.8.8"},
		{"cloudflare first", true, map[string]string{"CF-Connecting-IP": "1.1.1.1", "X-Forwarded-For": "10.0.0.1"}, "1.1.1.1"},
		{"left-most forwarded", true, map[string]string{"X-Forwarded-For": " 10.0.0.1 , 8.8.4.4"}, "10.0.0.1"},
		{"real ip", true, map[string]string{"X-Real-IP": "10.0.0.2"}, "10.0.0.2"},
		{"garbage skipped", true, map[string]string{"X-Forwarded-For": "not-an-ip", "X-Real-IP": "10.0.0.3"}, "10.0.0.3"},
		{"mapped v4 unmapped", true, map[string]string{"X-Real-IP": "::ffff:10.0.0.4"}, "10.0.0.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/bookmarks", nil)
			r.RemoteAddr = "8.8.8.8:4242"
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(r, tt.trustProxy))
		})
	}
}

func TestIPMatcher(t *testing.T) {
	m, invalid := NewIPMatcher([]string{"10.0.0.0/8", " 127.0.0.1 ", "", "::1", "bogus", "192.168.1.7/24"})
	assert.Equal(t, []string{"bogus"}, invalid)
	assert.Equal(t, 4, m.Len())
	assert.False(t, m.IsEmpty())

	assert.True(t, m.Allow("10.20.30.40"))
	assert.True(t, m.Allow("127.0.0.1"))
	assert.True(t, m.Allow("::ffff:127.0.0.1"))
	assert.True(t, m.Allow("::1"))
	assert.True(t, m.Allow("192.168.1.200"))
	assert.False(t, m.Allow("127.0.0.2"))
	assert.False(t, m.Allow("8.8.8.8"))
	assert.False(t, m.Allow(""))

	empty, invalid := NewIPMatcher(nil)
	assert.True(t, empty.IsEmpty())
	assert.Empty(t, invalid)
}
