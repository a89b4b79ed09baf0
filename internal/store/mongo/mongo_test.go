package mongo

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/shelf/internal/connect"
	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/idgen"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/store"
	"github.com/MrSnakeDoc/shelf/internal/store/storetest"
)

// Requires a reachable server, e.g.
//
//	SHELF_TEST_MONGO_URI=mongodb://localhost:27017 go test ./internal/store/mongo/
func TestStoreConformance(t *testing.T) {
	uri := os.Getenv("SHELF_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("SHELF_TEST_MONGO_URI not set")
	}

	policy := connect.Policy{
		ConnectTimeout: 5 * time.Second,
		RetryInterval:  100 * time.Millisecond,
		MaxWait:        time.Second,
		PingTimeout:    time.Second,
		WarnThreshold:  3,
	}
	client, err := Connect(context.Background(), uri, policy, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	storetest.Run(t, func(t *testing.T, opts ...store.Option) domain.Gateway {
		db := client.Database("shelf_test_" + strings.ReplaceAll(idgen.New(), "-", ""))
		t.Cleanup(func() { _ = db.Drop(context.Background()) })

		s, err := NewStore(context.Background(), db.Collection(Collection), opts...)
		require.NoError(t, err)
		return s
	})
}

func TestConnectFailsFast(t *testing.T) {
	policy := connect.Policy{
		ConnectTimeout: 300 * time.Millisecond,
		RetryInterval:  10 * time.Millisecond,
		MaxWait:        50 * time.Millisecond,
		PingTimeout:    100 * time.Millisecond,
		WarnThreshold:  1,
	}
	_, err := Connect(context.Background(), "mongodb://127.0.0.1:1", policy, logger.NewNop())
	require.Error(t, err)
}
