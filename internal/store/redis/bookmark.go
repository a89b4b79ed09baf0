package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/store"
)

// Store is the Redis bookmark gateway.
//
// Layout:
//
//	shelf:bookmark:<id>               JSON record (no TTL)
//	shelf:owner:<owner>:bookmarks     ZSET of ids scored by CreatedAt (µs)
type Store struct {
	client *redis.Client
	opts   store.Options
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client, opts ...store.Option) *Store {
	return &Store{
		client: client,
		opts:   store.Apply(opts...),
	}
}

// Create stores a new bookmark and indexes it under its owner in one transaction
func (s *Store) Create(ctx context.Context, ownerID, title, url string) (*domain.Bookmark, error) {
	bookmark := s.opts.NewBookmark(ownerID, title, url)

	data, err := json.Marshal(bookmark)
	if err != nil {
		return nil, domain.NewStoreError("create", fmt.Errorf("failed to marshal bookmark: %w", err))
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, BookmarkKey(bookmark.ID), data, 0)
		pipe.ZAdd(ctx, OwnerBookmarksKey(ownerID), redis.Z{
			Score:  score(bookmark),
			Member: bookmark.ID,
		})
		return nil
	})
	if err != nil {
		return nil, domain.NewStoreError("create", fmt.Errorf("failed to save bookmark: %w", err))
	}

	return bookmark, nil
}

// ListByOwner returns the owner's bookmarks, newest first.
// Equal scores come back in reverse lexicographic id order, which matches the tie-break.
func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Bookmark, error) {
	ids, err := s.client.ZRevRange(ctx, OwnerBookmarksKey(ownerID), 0, -1).Result()
	if err != nil {
		return nil, domain.NewStoreError("list", fmt.Errorf("failed to get bookmark IDs: %w", err))
	}

	if len(ids) == 0 {
		return []*domain.Bookmark{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = BookmarkKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, domain.NewStoreError("list", fmt.Errorf("failed to get bookmarks: %w", err))
	}

	bookmarks := make([]*domain.Bookmark, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Index entry without a record: deleted between ZREVRANGE and MGET
			continue
		}
		bookmark, err := decode([]byte(raw))
		if err != nil {
			return nil, domain.NewStoreError("list", fmt.Errorf("bookmark %s: %w", ids[i], err))
		}
		bookmarks = append(bookmarks, bookmark)
	}

	return bookmarks, nil
}

// FindByID retrieves a bookmark from Redis by ID
func (s *Store) FindByID(ctx context.Context, id string) (*domain.Bookmark, error) {
	data, err := s.client.Get(ctx, BookmarkKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.NewStoreError("find", fmt.Errorf("failed to get bookmark: %w", err))
	}

	bookmark, err := decode(data)
	if err != nil {
		return nil, domain.NewStoreError("find", err)
	}
	return bookmark, nil
}

// DeleteByID removes the record and its owner index entry in one transaction.
// When two deletes race, only the one whose DEL removed the key succeeds.
func (s *Store) DeleteByID(ctx context.Context, id string) error {
	bookmark, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}

	var del *redis.IntCmd
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, BookmarkKey(id))
		pipe.ZRem(ctx, OwnerBookmarksKey(bookmark.OwnerID), id)
		return nil
	})
	if err != nil {
		return domain.NewStoreError("delete", fmt.Errorf("failed to delete bookmark: %w", err))
	}

	if del.Val() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Ping checks the connection
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func score(b *domain.Bookmark) float64 {
	// Microseconds stay below 2^53 for the foreseeable future, so float64 is exact.
	return float64(b.CreatedAt.UnixMicro())
}

func decode(data []byte) (*domain.Bookmark, error) {
	var bookmark domain.Bookmark
	if err := json.Unmarshal(data, &bookmark); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bookmark: %w", err)
	}
	return &bookmark, nil
}
