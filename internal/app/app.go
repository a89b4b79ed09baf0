package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/shelf/internal/auth"
	"github.com/MrSnakeDoc/shelf/internal/config"
	"github.com/MrSnakeDoc/shelf/internal/connect"
	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/httpserver"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/metrics"
	"github.com/MrSnakeDoc/shelf/internal/redis"
	"github.com/MrSnakeDoc/shelf/internal/store"
	"github.com/MrSnakeDoc/shelf/internal/store/memory"
	mongostore "github.com/MrSnakeDoc/shelf/internal/store/mongo"
	redisstore "github.com/MrSnakeDoc/shelf/internal/store/redis"
	"github.com/MrSnakeDoc/shelf/internal/store/sqlite"
	"github.com/MrSnakeDoc/shelf/internal/utils"
	"github.com/MrSnakeDoc/shelf/internal/version"
)

// resource is something closed on shutdown, in reverse order of opening.
type resource struct {
	name   string
	closer io.Closer
}

type App struct {
	cfg       *config.Config
	logger    logger.Logger
	server    *httpserver.Server
	resources []resource
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)
	ctx := context.Background()
	a := &App{cfg: cfg, logger: loggerClient}

	// Initialize Redis early - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.New(ctx, redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	if err != nil {
		a.fail("Failed to connect to Redis", err)
	}
	a.track("redis", redisClient)
	loggerClient.Info("Redis initialized successfully")

	gateway, err := a.openStore(ctx, redisClient)
	if err != nil {
		a.fail("Failed to open bookmark store", err)
	}
	gateway = store.Instrument(cfg.StoreDriver, gateway)
	loggerClient.Info("bookmark store ready", logger.String("driver", cfg.StoreDriver))

	issuer, err := auth.NewIssuer([]byte(cfg.SessionSecret), cfg.PublicURL)
	if err != nil {
		a.fail("Invalid session secret", err)
	}

	var identity auth.IdentityProvider
	if cfg.OIDCEnabled() {
		provider, err := auth.NewOIDCProvider(ctx, auth.OIDCConfig{
			Issuer:       cfg.OIDCIssuer,
			ClientID:     cfg.OIDCClientID,
			ClientSecret: cfg.OIDCClientSecret,
			RedirectURL:  cfg.OIDCRedirectURL(),
		})
		if err != nil {
			a.fail("Failed to set up OIDC login", err)
		}
		identity = provider
		loggerClient.Info("OIDC login enabled", logger.String("issuer", cfg.OIDCIssuer))
	}
	if cfg.DevLogin {
		loggerClient.Warn("development login is enabled, anyone can sign in as any name")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics.RegisterCollectors(registry)

	revisions := redisstore.NewRevisions(redisClient)
	service := domain.NewService(auth.ContextResolver{}, gateway, revisions, loggerClient)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		TimeNow:         time.Now,
		AllowedHosts:    cfg.AllowedHosts,
		AllowedCIDRS:    cfg.AllowedCIDRS,
		TrustProxy:      cfg.TrustProxy,
		Bookmarks:       service,
		Store:           gateway,
		StoreDriver:     cfg.StoreDriver,
		RedisClient:     redisClient,
		Revisions:       revisions,
		Sessions:        issuer,
		Revoker:         redisstore.NewRevocations(redisClient),
		Identity:        identity,
		ProviderLabel:   cfg.OIDCProviderLabel,
		DevLogin:        cfg.DevLogin,
		SecureCookies:   cfg.SecureCookies,
		SessionTTL:      cfg.SessionTTL,
		APITokenTTL:     cfg.APITokenTTL,
		PollInterval:    cfg.PollInterval,
		Metrics:         registry,
		RateLimitBurst:  cfg.RateLimitBurst,
		RateLimitRefill: cfg.RateLimitRefillMin,
	}

	a.server = httpserver.New(cfg, loggerClient, d)
	return a
}

// openStore returns the gateway selected by SHELF_STORE_DRIVER.
func (a *App) openStore(ctx context.Context, redisClient *goredis.Client) (domain.Gateway, error) {
	switch a.cfg.StoreDriver {
	case config.StoreRedis:
		return redisstore.NewStore(redisClient), nil

	case config.StoreSQLite:
		st, err := sqlite.Open(ctx, a.cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.track("sqlite", st)
		return st, nil

	case config.StoreMongo:
		client, err := mongostore.Connect(ctx, a.cfg.MongoURI, connect.Policy{
			ConnectTimeout: a.cfg.MongoTimeout,
			RetryInterval:  a.cfg.RedisRetryInterval,
			MaxWait:        a.cfg.RedisMaxWait,
			PingTimeout:    a.cfg.RedisPingTimeout,
			WarnThreshold:  a.cfg.RedisWarnThreshold,
		}, a.logger)
		if err != nil {
			return nil, err
		}
		a.track("mongo", utils.CloserFunc(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
			defer cancel()
			return client.Disconnect(ctx)
		}))
		return mongostore.NewStore(ctx, client.Database(a.cfg.MongoDB).Collection(mongostore.Collection))

	case config.StoreMemory:
		a.logger.Warn("memory store selected, bookmarks are lost on restart")
		return memory.NewStore(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", a.cfg.StoreDriver)
}

func (a *App) track(name string, c io.Closer) {
	a.resources = append(a.resources, resource{name: name, closer: c})
}

// fail logs err, releases what was opened so far and exits.
func (a *App) fail(msg string, err error) {
	a.logger.Errorf("%s: %v", msg, err)
	a.closeResources()
	os.Exit(1)
}

func (a *App) closeResources() {
	for i := len(a.resources) - 1; i >= 0; i-- {
		r := a.resources[i]
		utils.CloseLogged(r.closer, r.name, a.logger)
	}
	a.resources = nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Shelf v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Shelf %s", version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.server.Start(); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("⏳ Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := a.server.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("failed to stop server: %w", err)
		}
		return nil
	})

	err := g.Wait()
	a.closeResources()
	if err != nil {
		return err
	}

	a.logger.Info("✅ Shelf stopped cleanly")
	return nil
}
