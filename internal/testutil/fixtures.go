package testutil

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dalemusser/instafram/internal/app/system/normalize"
	"github.com/dalemusser/instafram/internal/domain/models"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user document directly, bypassing the store, and
// returns it. createdAt lets ranking tests control tie-break order.
func (f *Fixtures) CreateUser(ctx context.Context, name, alias string, postCount int, createdAt time.Time) models.User {
	f.t.Helper()

	posts := make([]primitive.ObjectID, postCount)
	for i := range posts {
		posts[i] = primitive.NewObjectID()
	}

	u := models.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     normalize.Email(alias + "@example.com"),
		Password:  "$2a$10$testhashtesthashtesthash",
		Alias:     normalize.Alias(alias),
		Posts:     posts,
		Followers: []primitive.ObjectID{},
		Following: []primitive.ObjectID{},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// User reloads a user document directly from the collection.
func (f *Fixtures) User(ctx context.Context, id primitive.ObjectID) models.User {
	f.t.Helper()

	var u models.User
	if err := f.db.Collection("users").FindOne(ctx, map[string]any{"_id": id}).Decode(&u); err != nil {
		f.t.Fatalf("failed to reload test user: %v", err)
	}
	return u
}
