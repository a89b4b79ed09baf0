// Package storetest is the conformance suite every domain.Gateway backend runs.
package storetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/store"
)

// Factory builds a fresh, empty gateway with the given options.
type Factory func(t *testing.T, opts ...store.Option) domain.Gateway

// Clock is a manually advanced time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts at a fixed instant.
func NewClock() *Clock {
	return &Clock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Run executes the whole suite against newGateway.
func Run(t *testing.T, newGateway Factory) {
	t.Run("create assigns identity and timestamps", func(t *testing.T) {
		clock := NewClock()
		gw := newGateway(t, store.WithClock(clock.Now))
		ctx := context.Background()

		b, err := gw.Create(ctx, "u1", "Docs", "https://example.com")
		require.NoError(t, err)
		assert.NotEmpty(t, b.ID)
		assert.Equal(t, "u1", b.OwnerID)
		assert.Equal(t, "Docs", b.Title)
		assert.Equal(t, "https://example.com", b.URL)
		assert.True(t, b.CreatedAt.Equal(clock.Now()), "CreatedAt = %v", b.CreatedAt)
		assert.True(t, b.UpdatedAt.Equal(b.CreatedAt))

		got, err := gw.FindByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, b.ID, got.ID)
		assert.Equal(t, b.OwnerID, got.OwnerID)
		assert.True(t, got.CreatedAt.Equal(b.CreatedAt))
	})

	t.Run("ids are unique", func(t *testing.T) {
		gw := newGateway(t)
		ctx := context.Background()

		seen := make(map[string]bool)
		for i := 0; i < 20; i++ {
			b, err := gw.Create(ctx, "u1", "t", "u")
			require.NoError(t, err)
			require.False(t, seen[b.ID], "duplicate id %s", b.ID)
			seen[b.ID] = true
		}
	})

	t.Run("list is newest first", func(t *testing.T) {
		clock := NewClock()
		gw := newGateway(t, store.WithClock(clock.Now))
		ctx := context.Background()

		var created []string
		for _, title := range []string{"first", "second", "third"} {
			b, err := gw.Create(ctx, "u1", title, "https://example.com/"+title)
			require.NoError(t, err)
			created = append(created, b.ID)
			clock.Advance(time.Second)
		}

		list, err := gw.ListByOwner(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, []string{created[2], created[1], created[0]}, ids(list))
		for i := 1; i < len(list); i++ {
			assert.False(t, list[i].CreatedAt.After(list[i-1].CreatedAt))
		}
	})

	t.Run("equal timestamps fall back to id order", func(t *testing.T) {
		clock := NewClock()
		gw := newGateway(t, store.WithClock(clock.Now))
		ctx := context.Background()

		a, err := gw.Create(ctx, "u1", "a", "u")
		require.NoError(t, err)
		b, err := gw.Create(ctx, "u1", "b", "u")
		require.NoError(t, err)

		list, err := gw.ListByOwner(ctx, "u1")
		require.NoError(t, err)
		want := []string{a.ID, b.ID}
		if b.ID < a.ID {
			want = []string{b.ID, a.ID}
		}
		assert.Equal(t, []string{want[1], want[0]}, ids(list))
	})

	t.Run("list is scoped to owner", func(t *testing.T) {
		gw := newGateway(t)
		ctx := context.Background()

		mine, err := gw.Create(ctx, "u1", "mine", "https://a")
		require.NoError(t, err)
		theirs, err := gw.Create(ctx, "u2", "theirs", "https://b")
		require.NoError(t, err)

		list, err := gw.ListByOwner(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, []string{mine.ID}, ids(list))

		list, err = gw.ListByOwner(ctx, "u2")
		require.NoError(t, err)
		assert.Equal(t, []string{theirs.ID}, ids(list))
	})

	t.Run("empty list is not nil", func(t *testing.T) {
		gw := newGateway(t)

		list, err := gw.ListByOwner(context.Background(), "nobody")
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	})

	t.Run("find unknown id", func(t *testing.T) {
		gw := newGateway(t)

		_, err := gw.FindByID(context.Background(), "does-not-exist")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("delete removes record and list entry", func(t *testing.T) {
		gw := newGateway(t)
		ctx := context.Background()

		b, err := gw.Create(ctx, "u1", "Docs", "https://example.com")
		require.NoError(t, err)
		keep, err := gw.Create(ctx, "u1", "Keep", "https://keep.example.com")
		require.NoError(t, err)

		require.NoError(t, gw.DeleteByID(ctx, b.ID))

		_, err = gw.FindByID(ctx, b.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		list, err := gw.ListByOwner(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, []string{keep.ID}, ids(list))
	})

	t.Run("delete unknown id is not silent", func(t *testing.T) {
		gw := newGateway(t)
		ctx := context.Background()

		assert.ErrorIs(t, gw.DeleteByID(ctx, "does-not-exist"), domain.ErrNotFound)

		b, err := gw.Create(ctx, "u1", "once", "u")
		require.NoError(t, err)
		require.NoError(t, gw.DeleteByID(ctx, b.ID))
		assert.ErrorIs(t, gw.DeleteByID(ctx, b.ID), domain.ErrNotFound)
	})

	t.Run("concurrent deletes have one winner", func(t *testing.T) {
		gw := newGateway(t)
		ctx := context.Background()

		b, err := gw.Create(ctx, "u1", "race", "u")
		require.NoError(t, err)

		const racers = 8
		errs := make(chan error, racers)
		var wg sync.WaitGroup
		for i := 0; i < racers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- gw.DeleteByID(ctx, b.ID)
			}()
		}
		wg.Wait()
		close(errs)

		winners := 0
		for err := range errs {
			if err == nil {
				winners++
				continue
			}
			assert.ErrorIs(t, err, domain.ErrNotFound)
		}
		assert.Equal(t, 1, winners)
	})
}

func ids(list []*domain.Bookmark) []string {
	out := make([]string, 0, len(list))
	for _, b := range list {
		out = append(out, b.ID)
	}
	return out
}
