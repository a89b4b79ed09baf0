package domain

import "time"

// Bookmark is a saved link owned by exactly one user.
//
// Records are only created through Service.Create and only destroyed through
// Service.Delete; nothing mutates them in between.
type Bookmark struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is assigned by the store gateway at creation (UUIDv7).
	ID string `json:"id" bson:"id"`

	// OwnerID is the session subject of the creator.
	// It is the authorization anchor for delete.
	OwnerID string `json:"owner_id" bson:"owner_id"`

	// ─────────────────────────────
	// User supplied
	// ─────────────────────────────

	// Title is a non-empty label.
	Title string `json:"title" bson:"title"`

	// URL is non-empty; its format is not validated server-side.
	URL string `json:"url" bson:"url"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	// CreatedAt is set by the gateway, UTC.
	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	// UpdatedAt equals CreatedAt since no update path exists.
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// OwnedBy reports whether ownerID may see and delete the bookmark.
func (b *Bookmark) OwnedBy(ownerID string) bool {
	return b != nil && ownerID != "" && b.OwnerID == ownerID
}
