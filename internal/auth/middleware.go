package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/logger"
)

type sessionKey struct{}

// Revoker is the sign-out list.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Middleware extracts a session token from the Authorization Bearer header
// (preferred) or the session cookie. A valid, unrevoked token puts its
// *Session in the request context. Anything else leaves the request
// anonymous; the service decides what anonymous callers may do.
func Middleware(issuer *Issuer, revoker Revoker, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := TokenFromRequest(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			session, err := issuer.Parse(raw)
			if err != nil {
				log.Debug("ignoring invalid session token", logger.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			if revoker != nil {
				revoked, err := revoker.IsRevoked(r.Context(), session.TokenID)
				if err != nil {
					// Cannot prove the token is live: treat as anonymous.
					log.Warn("revocation check failed",
						logger.Owner(session.OwnerID),
						logger.Error(err))
					next.ServeHTTP(w, r)
					return
				}
				if revoked {
					next.ServeHTTP(w, r)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// TokenFromRequest returns the raw bearer token or session cookie value.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// WithSession attaches s to ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the request session, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}
