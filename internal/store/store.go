// Package store holds what every bookmark gateway backend shares: build
// options, ordering, and a metrics decorator.
package store

import (
	"context"
	"sort"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/idgen"
	"github.com/MrSnakeDoc/shelf/internal/metrics"
)

// Options are the knobs common to all backends.
type Options struct {
	Now   func() time.Time
	NewID idgen.Generator
}

// Option customises a backend.
type Option func(*Options)

// WithClock overrides the timestamp source (tests).
func WithClock(now func() time.Time) Option { return func(o *Options) { o.Now = now } }

// WithIDGenerator overrides the id source (tests).
func WithIDGenerator(gen idgen.Generator) Option { return func(o *Options) { o.NewID = gen } }

// Apply resolves opts on top of the defaults.
func Apply(opts ...Option) Options {
	o := Options{
		Now:   time.Now,
		NewID: idgen.Default,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewBookmark builds the record a backend is about to persist.
func (o Options) NewBookmark(ownerID, title, url string) *domain.Bookmark {
	// Millisecond precision survives every backend (bson dates are ms).
	now := o.Now().UTC().Truncate(time.Millisecond)
	return &domain.Bookmark{
		ID:        o.NewID(),
		OwnerID:   ownerID,
		Title:     title,
		URL:       url,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SortNewestFirst orders by CreatedAt descending, then ID descending.
func SortNewestFirst(bookmarks []*domain.Bookmark) {
	sort.SliceStable(bookmarks, func(i, j int) bool {
		a, b := bookmarks[i], bookmarks[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}

// instrumented records per-call latency of the wrapped gateway.
type instrumented struct {
	driver string
	next   domain.Gateway
}

// Instrument wraps gw so each call is observed in metrics.StoreLatency.
// Ping is forwarded when gw implements domain.Pinger.
func Instrument(driver string, gw domain.Gateway) domain.Gateway {
	return &instrumented{driver: driver, next: gw}
}

func (i *instrumented) observe(call string, start time.Time) {
	metrics.StoreLatency.WithLabelValues(i.driver, call).Observe(time.Since(start).Seconds())
}

func (i *instrumented) Create(ctx context.Context, ownerID, title, url string) (*domain.Bookmark, error) {
	defer i.observe("create", time.Now())
	return i.next.Create(ctx, ownerID, title, url)
}

func (i *instrumented) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Bookmark, error) {
	defer i.observe("list_by_owner", time.Now())
	return i.next.ListByOwner(ctx, ownerID)
}

func (i *instrumented) FindByID(ctx context.Context, id string) (*domain.Bookmark, error) {
	defer i.observe("find_by_id", time.Now())
	return i.next.FindByID(ctx, id)
}

func (i *instrumented) DeleteByID(ctx context.Context, id string) error {
	defer i.observe("delete_by_id", time.Now())
	return i.next.DeleteByID(ctx, id)
}

func (i *instrumented) Ping(ctx context.Context) error {
	if p, ok := i.next.(domain.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
