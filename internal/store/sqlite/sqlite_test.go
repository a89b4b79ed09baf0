package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/store"
	"github.com/MrSnakeDoc/shelf/internal/store/storetest"
)

func openTemp(t *testing.T, opts ...store.Option) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "data", "shelf.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T, opts ...store.Option) domain.Gateway {
		return openTemp(t, opts...)
	})
}

func TestMemoryDatabase(t *testing.T) {
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Create(context.Background(), "u1", "Docs", "https://example.com")
	require.NoError(t, err)
	list, err := s.ListByOwner(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestDataSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shelf.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	require.NoError(t, err)
	b, err := s.Create(ctx, "u1", "Docs", "https://example.com")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.Title, got.Title)
	assert.True(t, got.CreatedAt.Equal(b.CreatedAt))
	require.NoError(t, s.Ping(ctx))
}

func TestClosedStoreReturnsStoreError(t *testing.T) {
	s := openTemp(t)
	require.NoError(t, s.Close())

	_, err := s.ListByOwner(context.Background(), "u1")
	var storeErr *domain.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "list", storeErr.Op)
}
