// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dalemusser/instafram/internal/app/system/media"
)

// DBDeps holds database/back-end dependencies for the app.
// Extend this struct as your app evolves.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Redis is nil when the cache server could not be reached at
	// startup; the cache layer treats a nil client as always-miss.
	Redis *redis.Client

	// Media is nil when no media endpoint is configured; profile image
	// updates are rejected in that case.
	Media *media.Client
}
