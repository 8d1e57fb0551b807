package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/mongo"
)

// TestMongoStoreSuite runs the repository contracts against a real MongoDB when
// STOREFRONT_TEST_MONGO_URI is set. Each test gets a fresh database.
func TestMongoStoreSuite(t *testing.T) {
	uri := os.Getenv("STOREFRONT_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("STOREFRONT_TEST_MONGO_URI not set")
	}

	ctx := context.Background()
	client, err := ConnectDB(ctx, uri)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(ctx) })

	var dbs []*mongo.Database
	t.Cleanup(func() {
		for _, db := range dbs {
			_ = db.Drop(ctx)
		}
	})

	suite.Run(t, &StoreSuite{open: func() *Store {
		db := client.Database(fmt.Sprintf("storefront_test_%d", time.Now().UnixNano()))
		dbs = append(dbs, db)
		require.NoError(t, EnsureIndexes(ctx, db))
		return NewMongo(db)
	}})
}
