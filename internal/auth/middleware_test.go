package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	storeredis "github.com/MrSnakeDoc/shelf/internal/store/redis"
)

type brokenRevoker struct{}

func (brokenRevoker) Revoke(context.Context, string, time.Duration) error { return errors.New("down") }
func (brokenRevoker) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("down")
}

// ownerEcho writes the resolved owner, or "anonymous".
var ownerEcho = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	owner, err := ContextResolver{}.Resolve(r.Context())
	if err != nil {
		_, _ = w.Write([]byte("anonymous"))
		return
	}
	_, _ = w.Write([]byte(owner))
})

func serve(h http.Handler, r *http.Request) string {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec.Body.String()
}

func TestMiddleware(t *testing.T) {
	issuer := newTestIssuer(t)
	m := mr.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	revocations := storeredis.NewRevocations(client)

	h := Middleware(issuer, revocations, logger.NewNop())(ownerEcho)

	token, session, err := issuer.Issue(Identity{Subject: "u1"}, KindBrowser, time.Hour)
	require.NoError(t, err)

	t.Run("no token", func(t *testing.T) {
		assert.Equal(t, "anonymous", serve(h, httptest.NewRequest(http.MethodGet, "/", nil)))
	})

	t.Run("cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
		assert.Equal(t, "u1", serve(h, r))
	})

	t.Run("bearer", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		assert.Equal(t, "u1", serve(h, r))
	})

	t.Run("invalid token is anonymous", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "garbage"})
		assert.Equal(t, "anonymous", serve(h, r))
	})

	t.Run("revoked token is anonymous", func(t *testing.T) {
		other, s, err := issuer.Issue(Identity{Subject: "u2"}, KindAPI, time.Hour)
		require.NoError(t, err)
		require.NoError(t, revocations.Revoke(context.Background(), s.TokenID, time.Hour))

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+other)
		assert.Equal(t, "anonymous", serve(h, r))

		// The first token is untouched.
		r = httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		assert.Equal(t, "u1", serve(h, r))
	})

	t.Run("revocation check failure fails closed", func(t *testing.T) {
		closed := Middleware(issuer, brokenRevoker{}, logger.NewNop())(ownerEcho)
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
		assert.Equal(t, "anonymous", serve(closed, r))
	})

	t.Run("session reaches handler", func(t *testing.T) {
		var got *Session
		inspect := Middleware(issuer, nil, logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = FromContext(r.Context())
		}))
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
		serve(inspect, r)
		require.NotNil(t, got)
		assert.Equal(t, session.TokenID, got.TokenID)
	})
}

func TestTokenFromRequestPrefersBearer(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "cookie"})
	r.Header.Set("Authorization", "Bearer header")
	assert.Equal(t, "header", TokenFromRequest(r))

	r.Header.Set("Authorization", "Basic abc")
	assert.Equal(t, "cookie", TokenFromRequest(r))
}

func TestContextResolver(t *testing.T) {
	_, err := ContextResolver{}.Resolve(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = ContextResolver{}.Resolve(WithSession(context.Background(), &Session{}))
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	owner, err := ContextResolver{}.Resolve(WithSession(context.Background(), &Session{OwnerID: "u1"}))
	require.NoError(t, err)
	assert.Equal(t, "u1", owner)
}

func TestStateCookieRoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	SetStateCookie(rec, "abc", true)

	r := httptest.NewRequest(http.MethodGet, "/auth/callback", nil)
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}

	rec = httptest.NewRecorder()
	assert.Equal(t, "abc", ConsumeStateCookie(rec, r, true))
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, -1, cleared[0].MaxAge)

	assert.Empty(t, ConsumeStateCookie(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), true))
}
