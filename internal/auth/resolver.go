package auth

import (
	"context"

	"github.com/MrSnakeDoc/shelf/internal/domain"
)

// ContextResolver reads the session placed in the context by Middleware.
type ContextResolver struct{}

var _ domain.SessionResolver = ContextResolver{}

// Resolve returns the session owner, or domain.ErrUnauthenticated.
func (ContextResolver) Resolve(ctx context.Context) (string, error) {
	s := FromContext(ctx)
	if s == nil || s.OwnerID == "" {
		return "", domain.ErrUnauthenticated
	}
	return s.OwnerID, nil
}
