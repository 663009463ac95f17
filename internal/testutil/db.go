// Package testutil provides shared helpers for store and handler tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/dalemusser/instafram/internal/app/system/indexes"
)

// SetupTestDB connects to the MongoDB named by INSTAFRAM_TEST_MONGO_URI
// and returns a per-test database with the app's indexes ensured. Tests
// that call it are skipped when the variable is unset, so the suite
// stays runnable without a live server.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("INSTAFRAM_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("INSTAFRAM_TEST_MONGO_URI not set; skipping store integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("mongo connect: %v", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		t.Skipf("mongo unreachable at %s: %v", uri, err)
	}

	db := client.Database(fmt.Sprintf("instafram_test_%d", time.Now().UnixNano()))

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	return db
}

// TestContext returns a context with the default test deadline.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 15*time.Second)
}
