package redis

import (
	"context"
	"testing"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/store"
	"github.com/MrSnakeDoc/shelf/internal/store/storetest"
)

func newClient(t *testing.T) (*mr.Miniredis, *redis.Client) {
	t.Helper()
	m := mr.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return m, client
}

func TestStoreConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T, opts ...store.Option) domain.Gateway {
		_, client := newClient(t)
		return NewStore(client, opts...)
	})
}

func TestStoreKeyLayout(t *testing.T) {
	m, client := newClient(t)
	s := NewStore(client)
	ctx := context.Background()

	b, err := s.Create(ctx, "u1", "Docs", "https://example.com")
	require.NoError(t, err)

	assert.True(t, m.Exists(BookmarkKey(b.ID)))
	members, err := m.ZMembers(OwnerBookmarksKey("u1"))
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, members)

	require.NoError(t, s.DeleteByID(ctx, b.ID))
	assert.False(t, m.Exists(BookmarkKey(b.ID)))
	assert.False(t, m.Exists(OwnerBookmarksKey("u1")))
}

func TestListSkipsDanglingIndexEntries(t *testing.T) {
	m, client := newClient(t)
	s := NewStore(client)
	ctx := context.Background()

	b, err := s.Create(ctx, "u1", "Docs", "https://example.com")
	require.NoError(t, err)
	_, err = m.ZAdd(OwnerBookmarksKey("u1"), 1, "ghost")
	require.NoError(t, err)

	list, err := s.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)
}

func TestStoreErrorsWhenRedisIsDown(t *testing.T) {
	m, client := newClient(t)
	s := NewStore(client)
	m.Close()

	_, err := s.Create(context.Background(), "u1", "Docs", "https://example.com")
	require.Error(t, err)
	var storeErr *domain.StoreError
	assert.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "create", storeErr.Op)

	_, err = s.ListByOwner(context.Background(), "u1")
	assert.ErrorAs(t, err, &storeErr)
	assert.Error(t, s.Ping(context.Background()))
}

func TestExtractBookmarkID(t *testing.T) {
	id, err := ExtractBookmarkID(BookmarkKey("abc"))
	require.NoError(t, err)
	assert.Equal(t, "abc", id)

	_, err = ExtractBookmarkID("shelf:bookmark:")
	assert.Error(t, err)
	_, err = ExtractBookmarkID("other:abc")
	assert.Error(t, err)
}
