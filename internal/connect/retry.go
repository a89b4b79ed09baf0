// Package connect waits for a backing service (redis, mongo, sqlite) to answer
// a ping, retrying with capped exponential backoff until a deadline.
package connect

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/logger"
)

// Policy defines the retry behavior.
type Policy struct {
	ConnectTimeout time.Duration // Total time allowed for connection attempts (ex: 30s)
	RetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	MaxWait        time.Duration // max wait between retries (ex: 10s)
	PingTimeout    time.Duration // timeout for each ping attempt (ex: 2s)
	WarnThreshold  int           // warn after this many attempts, error afterwards
}

// Target is the service being reached.
type Target struct {
	Name string // "redis", "mongo", ...
	Addr string // only used for logging, never contains credentials
	Ping func(ctx context.Context) error
}

// attemptLogger handles all connection logging for one target.
type attemptLogger struct {
	logger logger.Logger
	target Target
}

func (al *attemptLogger) logStart(timeout time.Duration) {
	al.logger.Info("connecting to "+al.target.Name,
		logger.String("addr", al.target.Addr),
		logger.Duration("timeout", timeout))
}

func (al *attemptLogger) logSuccess(attempts int, elapsed time.Duration) {
	if attempts > 1 {
		al.logger.Warn("connected to "+al.target.Name+" after retry",
			logger.String("addr", al.target.Addr),
			logger.Int("attempts", attempts),
			logger.Duration("elapsed", elapsed))
		return
	}
	al.logger.Info("connected to "+al.target.Name,
		logger.String("addr", al.target.Addr))
}

func (al *attemptLogger) logTimeout(attempts int, timeout time.Duration, err error) {
	al.logger.Error(al.target.Name+" unavailable - failed to connect after timeout",
		logger.String("addr", al.target.Addr),
		logger.Int("attempts", attempts),
		logger.Duration("timeout", timeout),
		logger.Error(err))
}

func (al *attemptLogger) logRetry(attempt int, remaining, nextRetry time.Duration, warnThreshold int, err error) {
	switch {
	case remaining < 10*time.Second:
		al.logger.Error(al.target.Name+" still down - retrying but timeout approaching",
			logger.String("addr", al.target.Addr),
			logger.Int("attempt", attempt),
			logger.Duration("remaining", remaining),
			logger.Duration("next_retry_in", nextRetry),
			logger.Error(err))
	case attempt <= warnThreshold:
		al.logger.Warn(al.target.Name+" connection failed, retrying",
			logger.String("addr", al.target.Addr),
			logger.Int("attempt", attempt),
			logger.Duration("next_retry_in", nextRetry),
			logger.Error(err))
	default:
		al.logger.Error(al.target.Name+" still unavailable - connection attempts failing",
			logger.String("addr", al.target.Addr),
			logger.Int("attempt", attempt),
			logger.Duration("next_retry_in", nextRetry),
			logger.Error(err))
	}
}

// Validate ensures all policy values are usable.
func (p Policy) Validate() error {
	if p.ConnectTimeout <= 0 {
		return fmt.Errorf("ConnectTimeout must be > 0, got %v", p.ConnectTimeout)
	}
	if p.RetryInterval <= 0 {
		return fmt.Errorf("RetryInterval must be > 0, got %v", p.RetryInterval)
	}
	if p.MaxWait <= 0 {
		return fmt.Errorf("MaxWait must be > 0, got %v", p.MaxWait)
	}
	if p.PingTimeout <= 0 {
		return fmt.Errorf("PingTimeout must be > 0, got %v", p.PingTimeout)
	}
	if p.WarnThreshold < 0 {
		return fmt.Errorf("WarnThreshold must be >= 0, got %d", p.WarnThreshold)
	}
	return nil
}

// WithRetry pings target until it answers or policy.ConnectTimeout elapses.
// The wait between attempts doubles up to policy.MaxWait.
func WithRetry(ctx context.Context, target Target, policy Policy, log logger.Logger) error {
	if err := policy.Validate(); err != nil {
		log.Error("invalid connect policy",
			logger.String("target", target.Name),
			logger.Error(err))
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, policy.ConnectTimeout)
	defer cancel()

	al := &attemptLogger{logger: log, target: target}
	al.logStart(policy.ConnectTimeout)

	attempt := 0
	wait := policy.RetryInterval

	for {
		attempt++

		pingCtx, pingCancel := context.WithTimeout(ctx, policy.PingTimeout)
		err := target.Ping(pingCtx)
		pingCancel()

		if err == nil {
			al.logSuccess(attempt, policy.ConnectTimeout-timeLeft(ctx))
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			al.logTimeout(attempt, policy.ConnectTimeout, err)
			return fmt.Errorf("%s unavailable at %s after %d attempts (timeout: %v): %w",
				target.Name, target.Addr, attempt, policy.ConnectTimeout, err)

		case <-timer.C:
			al.logRetry(attempt, timeLeft(ctx), wait, policy.WarnThreshold, err)
			wait *= 2
			if wait > policy.MaxWait {
				wait = policy.MaxWait
			}
		}
	}
}

// timeLeft returns the remaining time before context deadline.
func timeLeft(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0
	}
	return time.Until(deadline)
}
