package auth

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const (
	testIssuer   = "https://idp.example.com"
	testClientID = "shelf"
)

type fakeIDP struct {
	key    *rsa.PrivateKey
	claims jwt.MapClaims
	server *httptest.Server
}

func newFakeIDP(t *testing.T) *fakeIDP {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	f := &fakeIDP{
		key: key,
		claims: jwt.MapClaims{
			"iss":     testIssuer,
			"aud":     testClientID,
			"sub":     "idp-user-42",
			"name":    "Ada Lovelace",
			"email":   "ada@example.com",
			"picture": "https://img.example.com/ada.png",
			"iat":     time.Now().Unix(),
			"exp":     time.Now().Add(time.Hour).Unix(),
		},
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.token))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeIDP) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || r.PostForm.Get("code") != "good-code" {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
		return
	}

	idToken, err := jwt.NewWithClaims(jwt.SigningMethodRS256, f.claims).SignedString(f.key)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"access_token": "at",
		"token_type":   "Bearer",
		"expires_in":   3600,
		"id_token":     idToken,
	})
}

func (f *fakeIDP) provider() *OIDCProvider {
	oauthCfg := &oauth2.Config{
		ClientID:     testClientID,
		ClientSecret: "secret",
		RedirectURL:  "http://shelf.test/auth/callback",
		Endpoint: oauth2.Endpoint{
			AuthURL:   testIssuer + "/authorize",
			TokenURL:  f.server.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: []string{oidc.ScopeOpenID, "email", "profile"},
	}
	keys := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&f.key.PublicKey}}
	return newOIDCProvider(oauthCfg, oidc.NewVerifier(testIssuer, keys, &oidc.Config{ClientID: testClientID}))
}

func TestOIDCAuthCodeURL(t *testing.T) {
	p := newFakeIDP(t).provider()

	u, err := url.Parse(p.AuthCodeURL("state-123"))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "state-123", q.Get("state"))
	assert.Equal(t, testClientID, q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Contains(t, q.Get("scope"), "openid")
}

func TestOIDCExchange(t *testing.T) {
	f := newFakeIDP(t)

	id, err := f.provider().Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "idp-user-42", id.Subject)
	assert.Equal(t, "Ada Lovelace", id.Name)
	assert.Equal(t, "ada@example.com", id.Email)
	assert.Equal(t, "https://img.example.com/ada.png", id.AvatarURL)
}

func TestOIDCExchangeFallsBackToPreferredUsername(t *testing.T) {
	f := newFakeIDP(t)
	delete(f.claims, "name")
	f.claims["preferred_username"] = "ada"

	id, err := f.provider().Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "ada", id.Name)
}

func TestOIDCExchangeRejects(t *testing.T) {
	t.Run("bad code", func(t *testing.T) {
		_, err := newFakeIDP(t).provider().Exchange(context.Background(), "bad-code")
		assert.Error(t, err)
	})

	t.Run("wrong audience", func(t *testing.T) {
		f := newFakeIDP(t)
		f.claims["aud"] = "someone-else"
		_, err := f.provider().Exchange(context.Background(), "good-code")
		assert.Error(t, err)
	})

	t.Run("expired id token", func(t *testing.T) {
		f := newFakeIDP(t)
		f.claims["exp"] = time.Now().Add(-time.Hour).Unix()
		_, err := f.provider().Exchange(context.Background(), "good-code")
		assert.Error(t, err)
	})

	t.Run("signed by another key", func(t *testing.T) {
		f := newFakeIDP(t)
		p := f.provider()
		other, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		f.key = other
		_, err = p.Exchange(context.Background(), "good-code")
		assert.Error(t, err)
	})
}

func TestNewStateIsRandom(t *testing.T) {
	a, b := NewState(), NewState()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
