package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revisions implements domain.Invalidator with a per-owner counter.
// Pollers compare the revision they last saw to decide whether to re-render.
type Revisions struct {
	client *redis.Client
}

// NewRevisions creates a revision counter store
func NewRevisions(client *redis.Client) *Revisions {
	return &Revisions{client: client}
}

// Invalidate bumps the owner's revision
func (r *Revisions) Invalidate(ctx context.Context, ownerID string) error {
	if err := r.client.Incr(ctx, OwnerRevisionKey(ownerID)).Err(); err != nil {
		return fmt.Errorf("failed to bump revision: %w", err)
	}
	return nil
}

// Current returns the owner's revision, 0 when the list never changed
func (r *Revisions) Current(ctx context.Context, ownerID string) (int64, error) {
	rev, err := r.client.Get(ctx, OwnerRevisionKey(ownerID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get revision: %w", err)
	}
	return rev, nil
}

// Revocations records session token ids that were signed out before they expired.
type Revocations struct {
	client *redis.Client
}

// NewRevocations creates a revocation list store
func NewRevocations(client *redis.Client) *Revocations {
	return &Revocations{client: client}
}

// Revoke marks tokenID as revoked for ttl, which should be the token's remaining lifetime.
// An already expired token needs no marker.
func (r *Revocations) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, RevokedSessionKey(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID was revoked
func (r *Revocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, RevokedSessionKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check revocation: %w", err)
	}
	return n > 0, nil
}
