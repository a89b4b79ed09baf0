package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/logger"
)

// FetchFunc is one refresh of the polled view.
type FetchFunc func(ctx context.Context) error

// Poller runs a fetch on a fixed interval until stopped.
//
// Each tick starts its fetch in a new goroutine, so a slow fetch never delays
// the next tick and fetches may overlap. Fetch errors are logged and the next
// tick retries; there is no backoff.
type Poller struct {
	name     string
	interval time.Duration
	fetch    FetchFunc
	logger   logger.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	running sync.WaitGroup
}

// NewPoller creates a poller. name only appears in logs.
func NewPoller(name string, interval time.Duration, fetch FetchFunc, log logger.Logger) *Poller {
	return &Poller{
		name:     name,
		interval: interval,
		fetch:    fetch,
		logger:   log,
	}
}

// Start fetches once immediately, then on every tick, until Stop is called or ctx is done.
func (p *Poller) Start(ctx context.Context) error {
	if p.interval <= 0 {
		return errors.New("poll interval must be positive")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return errors.New("poller already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.tick(ctx)

	ticker := time.NewTicker(p.interval)
	p.running.Add(1)
	go func() {
		defer p.running.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.tick(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()

	p.logger.Debug("poller started",
		logger.String("poller", p.name),
		logger.Duration("interval", p.interval))
	return nil
}

// Stop cancels the loop and any in-flight fetch, and waits for them to return.
// Calling Stop more than once, or before Start, is a no-op.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	p.running.Wait()
}

func (p *Poller) tick(ctx context.Context) {
	p.running.Add(1)
	go func() {
		defer p.running.Done()
		if err := p.fetch(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Warn("poll failed",
				logger.String("poller", p.name),
				logger.Error(err))
		}
	}()
}
