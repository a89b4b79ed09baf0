package deps

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/shelf/internal/auth"
	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/logger"
)

// RevisionReader returns the current list revision of an owner.
type RevisionReader interface {
	Current(ctx context.Context, ownerID string) (int64, error)
}

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time // for testing, defaults to time.Now
	AllowedHosts []string         // Host headers allowed to access the server
	AllowedCIDRS []string         // IPs allowed to access readyz/infra/metrics
	TrustProxy   bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)

	Bookmarks   *domain.Service // Bookmark core (create, delete, list)
	Store       domain.Gateway  // Backing gateway, pinged by readyz
	StoreDriver string          // redis, sqlite, mongo or memory
	RedisClient *redis.Client   // Redis client connection
	Revisions   RevisionReader  // List revisions (nil: always 0)

	Sessions      *auth.Issuer          // Session and API token signer
	Revoker       auth.Revoker          // Sign-out list (nil: logout only clears the cookie)
	Identity      auth.IdentityProvider // OIDC login (nil when not configured)
	ProviderLabel string                // Button label on the login page
	DevLogin      bool                  // Enable POST /auth/dev
	SecureCookies bool                  // Set Secure on cookies
	SessionTTL    time.Duration         // Browser session lifetime
	APITokenTTL   time.Duration         // CLI token lifetime

	PollInterval    time.Duration       // Page refresh interval
	Metrics         prometheus.Gatherer // Served on /metrics
	RateLimitBurst  int                 // Requests per client before throttling
	RateLimitRefill int                 // Tokens per minute
}

// Now returns TimeNow() or time.Now().
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
