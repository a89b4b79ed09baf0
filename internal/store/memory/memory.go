// Package memory is an in-process bookmark gateway for development and tests.
// Nothing survives a restart.
package memory

import (
	"context"
	"sync"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/store"
)

// Store keeps bookmarks in maps guarded by a single RWMutex.
type Store struct {
	mu        sync.RWMutex
	opts      store.Options
	bookmarks map[string]*domain.Bookmark    // ID -> Bookmark
	byOwner   map[string]map[string]struct{} // OwnerID -> set of IDs
}

// NewStore creates an empty memory store.
func NewStore(opts ...store.Option) *Store {
	return &Store{
		opts:      store.Apply(opts...),
		bookmarks: make(map[string]*domain.Bookmark),
		byOwner:   make(map[string]map[string]struct{}),
	}
}

// Create inserts a new bookmark.
func (s *Store) Create(_ context.Context, ownerID, title, url string) (*domain.Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bookmark := s.opts.NewBookmark(ownerID, title, url)
	s.bookmarks[bookmark.ID] = bookmark

	ids, ok := s.byOwner[ownerID]
	if !ok {
		ids = make(map[string]struct{})
		s.byOwner[ownerID] = ids
	}
	ids[bookmark.ID] = struct{}{}

	return clone(bookmark), nil
}

// ListByOwner returns copies of the owner's bookmarks, newest first.
func (s *Store) ListByOwner(_ context.Context, ownerID string) ([]*domain.Bookmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byOwner[ownerID]
	bookmarks := make([]*domain.Bookmark, 0, len(ids))
	for id := range ids {
		bookmarks = append(bookmarks, clone(s.bookmarks[id]))
	}
	store.SortNewestFirst(bookmarks)
	return bookmarks, nil
}

// FindByID retrieves a bookmark by ID.
func (s *Store) FindByID(_ context.Context, id string) (*domain.Bookmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bookmark, ok := s.bookmarks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return clone(bookmark), nil
}

// DeleteByID removes a bookmark.
func (s *Store) DeleteByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bookmark, ok := s.bookmarks[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(s.bookmarks, id)

	if ids := s.byOwner[bookmark.OwnerID]; ids != nil {
		delete(ids, id)
		if len(ids) == 0 {
			delete(s.byOwner, bookmark.OwnerID)
		}
	}
	return nil
}

// Count returns the number of stored bookmarks, all owners included.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.bookmarks)
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

func clone(b *domain.Bookmark) *domain.Bookmark {
	c := *b
	return &c
}
