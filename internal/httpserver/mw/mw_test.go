package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/shelf/internal/auth"
	"github.com/MrSnakeDoc/shelf/internal/logger"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func do(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestRateLimit_PerIP(t *testing.T) {
	h := RateLimit(RateLimitConfig{Burst: 2, RefillPerMin: 1})(ok)

	req := func(ip string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = ip + ":1234"
		return r
	}

	rec := do(h, req("10.0.0.1"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, do(h, req("10.0.0.1")).Code)

	rec = do(h, req("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	// Another client has its own bucket.
	assert.Equal(t, http.StatusOK, do(h, req("10.0.0.2")).Code)
}

func TestRateLimit_PerOwner(t *testing.T) {
	h := RateLimit(RateLimitConfig{Burst: 1, RefillPerMin: 1})(ok)

	asOwner := func(owner string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = "10.0.0.1:1234"
		return r.WithContext(auth.WithSession(r.Context(), &auth.Session{OwnerID: owner}))
	}

	assert.Equal(t, http.StatusOK, do(h, asOwner("u1")).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(h, asOwner("u1")).Code)
	// Same IP, different owner.
	assert.Equal(t, http.StatusOK, do(h, asOwner("u2")).Code)
}

func TestLimiter_RefillAndSweep(t *testing.T) {
	l := newLimiter(RateLimitConfig{Burst: 1, RefillPerMin: 60, IdleTTL: time.Minute})
	now := time.Now()

	allowed, _, _ := l.allow("k", now)
	require.True(t, allowed)
	allowed, _, retry := l.allow("k", now)
	require.False(t, allowed)
	assert.Equal(t, 1, retry)

	allowed, _, _ = l.allow("k", now.Add(time.Second))
	assert.True(t, allowed, "one token per second refills")

	l.allow("idle", now)
	l.sweepMaybe(now.Add(2 * time.Minute))
	assert.Equal(t, 0, l.size())
}

func TestLimiter_Defaults(t *testing.T) {
	l := newLimiter(RateLimitConfig{})
	assert.Equal(t, 1, l.cfg.Burst)
	assert.Equal(t, 1, l.cfg.RefillPerMin)
	assert.Equal(t, time.Minute, l.cfg.SweepInterval)
	assert.Equal(t, 15*time.Minute, l.cfg.IdleTTL)
}

func TestLimiter_MaxEntriesTriggersSweep(t *testing.T) {
	l := newLimiter(RateLimitConfig{Burst: 1, MaxEntries: 2, IdleTTL: time.Second})
	now := time.Now()

	l.allow("a", now)
	l.allow("b", now)
	l.allow("c", now.Add(time.Minute))
	assert.Equal(t, 1, l.size())
}

func TestAllowOnlyCIDRS(t *testing.T) {
	log := logger.NewNop()

	tests := []struct {
		name       string
		allowed    []string
		trustProxy bool
		remote     string
		xff        string
		want       int
	}{
		{"empty list passes", nil, false, "8.8.8.8:1", "", http.StatusOK},
		{"cidr match", []string{"10.0.0.0/8"}, false, "10.1.2.3:1", "", http.StatusOK},
		{"exact ip", []string{"127.0.0.1"}, false, "127.0.0.1:1", "", http.StatusOK},
		{"outside", []string{"10.0.0.0/8"}, false, "8.8.8.8:1", "", http.StatusForbidden},
		{"xff ignored without trust", []string{"10.0.0.0/8"}, false, "8.8.8.8:1", "10.0.0.1", http.StatusForbidden},
		{"xff honoured with trust", []string{"10.0.0.0/8"}, true, "8.8.8.8:1", "10.0.0.1, 8.8.8.8", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/readyz", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			rec := do(AllowOnlyCIDRS(tt.allowed, tt.trustProxy, log)(ok), r)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestEnforceHost(t *testing.T) {
	log := logger.NewNop()

	tests := []struct {
		name    string
		allowed []string
		host    string
		want    int
	}{
		{"empty list passes", nil, "anything", http.StatusOK},
		{"exact", []string{"shelf.example.com"}, "shelf.example.com", http.StatusOK},
		{"port ignored", []string{"localhost"}, "localhost:8080", http.StatusOK},
		{"wildcard", []string{"*.example.com"}, "shelf.example.com", http.StatusOK},
		{"wildcard is not apex", []string{"*.example.com"}, "example.com", http.StatusForbidden},
		{"other host", []string{"shelf.example.com"}, "evil.test", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Host = tt.host
			rec := do(EnforceHost(tt.allowed, log)(ok), r)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestLogPassesThrough(t *testing.T) {
	h := Log(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hi"))
	}))
	rec := do(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hi", rec.Body.String())
}
