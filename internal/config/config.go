package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// MinSessionSecretLen is the minimum accepted length of SHELF_SESSION_SECRET (HS256 key).
const MinSessionSecretLen = 32

// Store drivers accepted by SHELF_STORE_DRIVER.
const (
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request timeout applied by the router

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	PublicURL    string        // external base URL, used to build the OIDC callback (ex: https://shelf.domain.ext)
	PollInterval time.Duration // refresh interval of the bookmark list (page script + shelfctl watch)

	// Bookmark store
	StoreDriver  string        // "redis" | "sqlite" | "mongo" | "memory"
	SQLitePath   string        // path of the sqlite database file
	MongoURI     string        // ex: mongodb://localhost:27017
	MongoDB      string        // database name
	MongoTimeout time.Duration // connect + ping timeout

	// Redis (sessions revocation, list revisions, and the default store)
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	// Sessions & identity provider
	SessionSecret     string        // HS256 signing key for session and API tokens
	SessionTTL        time.Duration // lifetime of a browser session
	APITokenTTL       time.Duration // lifetime of a CLI token issued from the page
	SecureCookies     bool          // set the Secure attribute on cookies (disable for plain http dev)
	OIDCIssuer        string        // optional, empty = OIDC login disabled
	OIDCClientID      string
	OIDCClientSecret  string
	OIDCProviderLabel string // button label on the login page (ex: "Google")
	DevLogin          bool   // enable the username-only login form (never in production)

	// Abuse protection on write routes
	RateLimitBurst     int
	RateLimitRefillMin int // tokens refilled per client per minute

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict access to readyz/infra/metrics (e.g. "1.2.3.4, 10.0.0.0/8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

func Load() *Config {
	// Optional dotenv file; real environment variables always win.
	envFile := getenv("SHELF_ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err == nil {
		log.Printf("[INFO] loaded environment from %s", envFile)
	}

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("SHELF_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("SHELF_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("SHELF_REQUEST_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("SHELF_LOG_LEVEL", "info"),
		PrettyLog: mustBool("SHELF_PRETTY_LOG", true),

		PublicURL:    strings.TrimRight(requireEnv("SHELF_PUBLIC_URL"), "/"),
		PollInterval: mustDuration("SHELF_POLL_INTERVAL", 2*time.Second),

		// Store settings
		StoreDriver:  strings.ToLower(getenv("SHELF_STORE_DRIVER", StoreRedis)),
		SQLitePath:   getenv("SHELF_SQLITE_PATH", "/data/shelf.db"),
		MongoURI:     getenv("SHELF_MONGO_URI", ""),
		MongoDB:      getenv("SHELF_MONGO_DATABASE", "shelf"),
		MongoTimeout: mustDuration("SHELF_MONGO_TIMEOUT", 10*time.Second),

		// Redis settings
		RedisAddr:             requireEnv("SHELF_REDIS_ADDR"),
		RedisUser:             getenv("SHELF_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("SHELF_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("SHELF_REDIS_PASSWORD", ""),
		RedisDB:               requireEnvInt("SHELF_REDIS_DB"),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Sessions
		SessionSecret:     requireEnv("SHELF_SESSION_SECRET"),
		SessionTTL:        mustDuration("SHELF_SESSION_TTL", 7*24*time.Hour),
		APITokenTTL:       mustDuration("SHELF_API_TOKEN_TTL", 30*24*time.Hour),
		SecureCookies:     mustBool("SHELF_SECURE_COOKIES", true),
		OIDCIssuer:        getenv("SHELF_OIDC_ISSUER", ""),
		OIDCClientID:      getenv("SHELF_OIDC_CLIENT_ID", ""),
		OIDCClientSecret:  getenv("SHELF_OIDC_CLIENT_SECRET", ""),
		OIDCProviderLabel: getenv("SHELF_OIDC_PROVIDER_LABEL", "your identity provider"),
		DevLogin:          mustBool("SHELF_DEV_LOGIN", false),

		RateLimitBurst:     getenvInt("SHELF_RATE_LIMIT_BURST", 30),
		RateLimitRefillMin: getenvInt("SHELF_RATE_LIMIT_PER_MIN", 120),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("SHELF_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("SHELF_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("SHELF_TRUST_PROXY", true),
	}

	if err := cfg.validate(); err != nil {
		panic(fmt.Sprintf("❌ FATAL: %v", err))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		cfgCopy.SessionSecret = "***REDACTED***"
		cfgCopy.OIDCClientSecret = "***REDACTED***"
		cfgCopy.MongoURI = redactURI(cfg.MongoURI)
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// OIDCEnabled reports whether an external identity provider is configured.
func (c *Config) OIDCEnabled() bool {
	return c.OIDCIssuer != "" && c.OIDCClientID != ""
}

// OIDCRedirectURL is the callback registered with the identity provider.
func (c *Config) OIDCRedirectURL() string {
	return c.PublicURL + "/auth/callback"
}

func (c *Config) validate() error {
	if c.RedisPasswordRequired && c.RedisPassword == "" {
		return fmt.Errorf("SHELF_REDIS_PASSWORD is required when SHELF_REDIS_PASSWORD_REQUIRED=true")
	}
	if len(c.SessionSecret) < MinSessionSecretLen {
		return fmt.Errorf("SHELF_SESSION_SECRET must be at least %d bytes", MinSessionSecretLen)
	}
	switch c.StoreDriver {
	case StoreRedis, StoreSQLite, StoreMemory:
	case StoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("SHELF_MONGO_URI is required when SHELF_STORE_DRIVER=mongo")
		}
	default:
		return fmt.Errorf("unknown SHELF_STORE_DRIVER %q", c.StoreDriver)
	}
	if c.OIDCIssuer != "" && (c.OIDCClientID == "" || c.OIDCClientSecret == "") {
		return fmt.Errorf("SHELF_OIDC_CLIENT_ID and SHELF_OIDC_CLIENT_SECRET are required with SHELF_OIDC_ISSUER")
	}
	if !c.OIDCEnabled() && !c.DevLogin {
		return fmt.Errorf("no login method: set SHELF_OIDC_ISSUER or SHELF_DEV_LOGIN=true")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("SHELF_POLL_INTERVAL must be > 0")
	}
	return nil
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func requireEnvInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid integer value for %s: %s", key, v))
	}
	return i
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

// redactURI hides the userinfo part of a connection string.
// Example: "mongodb://user:pw@host:27017" -> "mongodb://***@host:27017"
func redactURI(uri string) string {
	scheme := strings.Index(uri, "://")
	at := strings.LastIndex(uri, "@")
	if scheme == -1 || at == -1 || at < scheme {
		return uri
	}
	return uri[:scheme+3] + "***" + uri[at:]
}
