// Package mongo is the MongoDB bookmark gateway.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MrSnakeDoc/shelf/internal/connect"
	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/store"
)

// Collection is where bookmarks live.
const Collection = "bookmarks"

// Connect opens a client and waits for the server to answer a ping.
// The caller disconnects the client on shutdown.
func Connect(ctx context.Context, uri string, policy connect.Policy, log logger.Logger) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetConnectTimeout(policy.PingTimeout).
		SetServerSelectionTimeout(policy.PingTimeout))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	target := connect.Target{
		Name: "mongo",
		Addr: "mongodb",
		Ping: func(ctx context.Context) error { return client.Ping(ctx, nil) },
	}
	if err := connect.WithRetry(ctx, target, policy, log); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// Store is the MongoDB gateway. Documents keep the string id in an "id"
// field with a unique index, rather than using ObjectIDs.
type Store struct {
	col  *mongo.Collection
	opts store.Options
}

// NewStore ensures indexes on col and returns the gateway.
func NewStore(ctx context.Context, col *mongo.Collection, opts ...store.Option) (*Store, error) {
	_, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}, {Key: "id", Value: -1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("mongo indexes: %w", err)
	}
	return &Store{col: col, opts: store.Apply(opts...)}, nil
}

func (m *Store) Create(ctx context.Context, ownerID, title, url string) (*domain.Bookmark, error) {
	b := m.opts.NewBookmark(ownerID, title, url)
	if _, err := m.col.InsertOne(ctx, b); err != nil {
		return nil, domain.NewStoreError("create", err)
	}
	return b, nil
}

func (m *Store) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Bookmark, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "id", Value: -1}})
	cur, err := m.col.Find(ctx, bson.M{"owner_id": ownerID}, findOpts)
	if err != nil {
		return nil, domain.NewStoreError("list", err)
	}
	defer cur.Close(ctx)

	out := []*domain.Bookmark{}
	for cur.Next(ctx) {
		var b domain.Bookmark
		if err := cur.Decode(&b); err != nil {
			return nil, domain.NewStoreError("list", err)
		}
		normalize(&b)
		out = append(out, &b)
	}
	if err := cur.Err(); err != nil {
		return nil, domain.NewStoreError("list", err)
	}
	return out, nil
}

func (m *Store) FindByID(ctx context.Context, id string) (*domain.Bookmark, error) {
	var b domain.Bookmark
	err := m.col.FindOne(ctx, bson.M{"id": id}).Decode(&b)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.NewStoreError("find", err)
	}
	normalize(&b)
	return &b, nil
}

func (m *Store) DeleteByID(ctx context.Context, id string) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return domain.NewStoreError("delete", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Ping checks the server.
func (m *Store) Ping(ctx context.Context) error {
	return m.col.Database().Client().Ping(ctx, nil)
}

// bson decodes dates in local time.
func normalize(b *domain.Bookmark) {
	b.CreatedAt = b.CreatedAt.UTC().Truncate(time.Millisecond)
	b.UpdatedAt = b.UpdatedAt.UTC().Truncate(time.Millisecond)
}
