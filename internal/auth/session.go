// Package auth turns an identity provider login into a signed session and
// resolves that session back to an owner id on every request.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/MrSnakeDoc/shelf/internal/config"
)

// Token kinds.
const (
	KindBrowser = "browser"
	KindAPI     = "api"
)

// ErrWeakSecret is returned when the signing secret is too short.
var ErrWeakSecret = fmt.Errorf("session secret must be at least %d bytes", config.MinSessionSecretLen)

// Identity is what a login method knows about the user.
type Identity struct {
	Subject   string
	Name      string
	Email     string
	AvatarURL string
}

// Session is the authenticated user attached to a request.
type Session struct {
	OwnerID   string
	Name      string
	Email     string
	AvatarURL string
	Kind      string
	TokenID   string
	ExpiresAt time.Time
}

// DisplayName is the best human label for the header.
func (s *Session) DisplayName() string {
	switch {
	case s.Name != "":
		return s.Name
	case s.Email != "":
		return s.Email
	default:
		return s.OwnerID
	}
}

// Claims is the JWT payload. The subject is the owner id.
type Claims struct {
	jwt.RegisteredClaims
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"picture,omitempty"`
	Kind      string `json:"kind"`
}

// Issuer signs and verifies session tokens (HS256).
type Issuer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewIssuer returns an Issuer. issuer is written to and required in the iss claim.
func NewIssuer(secret []byte, issuer string) (*Issuer, error) {
	if len(secret) < config.MinSessionSecretLen {
		return nil, ErrWeakSecret
	}
	return &Issuer{secret: secret, issuer: issuer, now: time.Now}, nil
}

// Issue signs a token of the given kind for id, valid for ttl.
func (i *Issuer) Issue(id Identity, kind string, ttl time.Duration) (string, *Session, error) {
	if id.Subject == "" {
		return "", nil, errors.New("identity has no subject")
	}

	now := i.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    i.issuer,
			Subject:   id.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Name:      id.Name,
		Email:     id.Email,
		AvatarURL: id.AvatarURL,
		Kind:      kind,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign session: %w", err)
	}
	return signed, claims.session(), nil
}

// Parse verifies raw and returns its session. Only HS256 is accepted.
func (i *Issuer) Parse(raw string) (*Session, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, errors.New("parse session: missing subject or token id")
	}
	return claims.session(), nil
}

func (c *Claims) session() *Session {
	s := &Session{
		OwnerID:   c.Subject,
		Name:      c.Name,
		Email:     c.Email,
		AvatarURL: c.AvatarURL,
		Kind:      c.Kind,
		TokenID:   c.ID,
	}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time
	}
	return s
}
