package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/shelf/internal/connect"
	"github.com/MrSnakeDoc/shelf/internal/logger"
)

// ConnectOptions defines the Redis client and its startup retry behavior.
type ConnectOptions struct {
	Addr           string        // Redis address (ex: "localhost:6379")
	User           string        // Optional username
	Password       string        // Optional password
	RedisDB        int           // Redis DB number
	DialTimeout    time.Duration // Redis dial timeout
	ReadTimeout    time.Duration // Redis read timeout
	WriteTimeout   time.Duration // Redis write timeout
	PoolSize       int           // Redis connection pool size
	ConnectTimeout time.Duration // Total time allowed for connection attempts (ex: 30s)
	RetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	MaxWait        time.Duration // max wait between retries (ex: 10s)
	PingTimeout    time.Duration // timeout for each ping attempt (ex: 2s)
	WarnThreshold  int           // warn after this many attempts
}

func (o ConnectOptions) policy() connect.Policy {
	return connect.Policy{
		ConnectTimeout: o.ConnectTimeout,
		RetryInterval:  o.RetryInterval,
		MaxWait:        o.MaxWait,
		PingTimeout:    o.PingTimeout,
		WarnThreshold:  o.WarnThreshold,
	}
}

// New creates a Redis client and blocks until it answers PING.
// It keeps retrying until ConnectTimeout is reached or ctx is cancelled.
func New(ctx context.Context, opts ConnectOptions, log logger.Logger) (*redis.Client, error) {
	if err := opts.policy().Validate(); err != nil {
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Username:     opts.User,
		Password:     opts.Password,
		DB:           opts.RedisDB,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		PoolSize:     opts.PoolSize,
	})

	target := connect.Target{
		Name: "redis",
		Addr: opts.Addr,
		Ping: func(ctx context.Context) error { return client.Ping(ctx).Err() },
	}
	if err := connect.WithRetry(ctx, target, opts.policy(), log); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// Check pings the client once with its own timeout; used by readiness probes.
func Check(ctx context.Context, client *redis.Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return client.Ping(ctx).Err()
}
