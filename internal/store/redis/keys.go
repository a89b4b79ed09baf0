package redis

import "fmt"

const (
	// KeyPrefixBookmark is the prefix for bookmark records (JSON strings)
	KeyPrefixBookmark = "shelf:bookmark:"
	// KeyPrefixOwner is the prefix for per-owner keys
	KeyPrefixOwner = "shelf:owner:"
	// KeyPrefixRevokedSession is the prefix for revoked session token ids
	KeyPrefixRevokedSession = "shelf:session:revoked:"
)

// BookmarkKey returns the Redis key for a bookmark record
func BookmarkKey(id string) string {
	return KeyPrefixBookmark + id
}

// OwnerBookmarksKey returns the sorted set of an owner's bookmark IDs, scored by creation time
func OwnerBookmarksKey(ownerID string) string {
	return KeyPrefixOwner + ownerID + ":bookmarks"
}

// OwnerRevisionKey returns the counter bumped each time an owner's list changes
func OwnerRevisionKey(ownerID string) string {
	return KeyPrefixOwner + ownerID + ":revision"
}

// RevokedSessionKey returns the marker key of a revoked session token id
func RevokedSessionKey(tokenID string) string {
	return KeyPrefixRevokedSession + tokenID
}

// ExtractBookmarkID extracts the bookmark ID from a Redis key
func ExtractBookmarkID(key string) (string, error) {
	if len(key) <= len(KeyPrefixBookmark) || key[:len(KeyPrefixBookmark)] != KeyPrefixBookmark {
		return "", fmt.Errorf("invalid bookmark key: %s", key)
	}
	return key[len(KeyPrefixBookmark):], nil
}
