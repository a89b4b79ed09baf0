package memory

import (
	"context"
	"testing"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/store"
	"github.com/MrSnakeDoc/shelf/internal/store/storetest"
)

func TestStoreConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T, opts ...store.Option) domain.Gateway {
		return NewStore(opts...)
	})
}

func TestReturnedBookmarksAreCopies(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	b, err := s.Create(ctx, "u1", "Docs", "https://example.com")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	b.Title = "mutated"
	b.OwnerID = "u2"

	got, err := s.FindByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if got.Title != "Docs" || got.OwnerID != "u1" {
		t.Errorf("stored bookmark was mutated through a returned pointer: %+v", got)
	}
}

func TestCountTracksDeletes(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	a, _ := s.Create(ctx, "u1", "a", "https://a")
	_, _ = s.Create(ctx, "u2", "b", "https://b")
	if s.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", s.Count())
	}

	if err := s.DeleteByID(ctx, a.ID); err != nil {
		t.Fatalf("DeleteByID failed: %v", err)
	}
	if s.Count() != 1 {
		t.Errorf("Count() = %d, want 1", s.Count())
	}
	if _, ok := s.byOwner["u1"]; ok {
		t.Error("empty owner set should be dropped")
	}
}
