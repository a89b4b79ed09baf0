package domain

import "context"

// Gateway is the typed data access the service needs from a bookmark store.
//
// Implementations must:
//   - assign ID, CreatedAt and UpdatedAt in Create
//   - order ListByOwner by CreatedAt descending, ties by ID descending,
//     and return an empty non-nil slice when the owner has nothing
//   - return ErrNotFound from FindByID and DeleteByID for unknown ids
//   - wrap infrastructure failures in *StoreError
type Gateway interface {
	Create(ctx context.Context, ownerID, title, url string) (*Bookmark, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*Bookmark, error)
	FindByID(ctx context.Context, id string) (*Bookmark, error)
	DeleteByID(ctx context.Context, id string) error
}

// Pinger is implemented by gateways that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SessionResolver extracts the authenticated owner from a request context.
// It returns ErrUnauthenticated when there is no usable session.
type SessionResolver interface {
	Resolve(ctx context.Context) (string, error)
}

// SessionResolverFunc adapts a function to SessionResolver.
type SessionResolverFunc func(ctx context.Context) (string, error)

func (f SessionResolverFunc) Resolve(ctx context.Context) (string, error) { return f(ctx) }

// Invalidator signals that an owner's bookmark list changed and any
// rendered or cached view must be recomputed on the next read.
type Invalidator interface {
	Invalidate(ctx context.Context, ownerID string) error
}

// NopInvalidator drops every signal.
type NopInvalidator struct{}

func (NopInvalidator) Invalidate(context.Context, string) error { return nil }
