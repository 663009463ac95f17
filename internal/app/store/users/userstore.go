package userstore

import (
	"context"
	"errors"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/dalemusser/instafram/internal/app/system/faults"
	"github.com/dalemusser/instafram/internal/app/system/normalize"
	"github.com/dalemusser/instafram/internal/domain/models"
)

// Edge fields of the denormalized follow graph. AddEdge/RemoveEdge
// mutate exactly one of these sets on exactly one document; keeping the
// pair symmetric across two documents is the caller's protocol.
const (
	EdgeFollowers = "followers"
	EdgeFollowing = "following"
)

var (
	// ErrDuplicateEmail is returned when a write would reuse an email
	// that belongs to another user.
	ErrDuplicateEmail = faults.Conflict("a user with this email already exists")
	// ErrDuplicateAlias is returned when a write would reuse an alias
	// that belongs to another user.
	ErrDuplicateAlias = faults.Conflict("alias is already taken")
	// ErrNotFound is the adapter's not-found signal.
	ErrNotFound = faults.NotFound("user does not exist")
)

// noSecret excludes the password hash from decoded snapshots. Every
// read goes through it except GetByEmailWithSecret.
var noSecret = bson.M{"password": 0}

type Store struct {
	db *mongo.Database
	c  *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{db: db, c: db.Collection("users")}
}

// GetByID loads a user snapshot by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"_id": id},
		options.FindOne().SetProjection(noSecret)).Decode(&u)
	if err != nil {
		return nil, mapFindErr(err)
	}
	return &u, nil
}

// GetByAlias loads a user snapshot by its normalized alias.
func (s *Store) GetByAlias(ctx context.Context, alias string) (*models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"alias": normalize.Alias(alias)},
		options.FindOne().SetProjection(noSecret)).Decode(&u)
	if err != nil {
		return nil, mapFindErr(err)
	}
	return &u, nil
}

// GetByEmailWithSecret loads a user by email including the password
// hash. This is the only read that decodes the secret; callers opt in
// explicitly (login verification, password change).
func (s *Store) GetByEmailWithSecret(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u)
	if err != nil {
		return nil, mapFindErr(err)
	}
	return &u, nil
}

// List returns all user snapshots sorted by name. Admin surface only;
// not paginated and not cached.
func (s *Store) List(ctx context.Context) ([]models.User, error) {
	cur, err := s.c.Find(ctx, bson.M{},
		options.Find().SetProjection(noSecret).SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ListByIDs returns snapshots for the given IDs (order unspecified).
// Used to expand follower/following edge sets into user rows.
func (s *Store) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(noSecret))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// NewUser holds the fields accepted when creating a user.
type NewUser struct {
	Name     string
	Email    string
	Password string // plaintext; hashed here before it touches the store
	Alias    string
	Bio      string
}

// Create inserts a new user after normalizing and hashing fields.
// Uniqueness of email and alias is enforced by the indexes the store
// owns; duplicates map to the corresponding Conflict fault.
func (s *Store) Create(ctx context.Context, nu NewUser) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(nu.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	now := time.Now().UTC()
	u := models.User{
		ID:        primitive.NewObjectID(),
		Name:      normalize.Name(nu.Name),
		Email:     normalize.Email(nu.Email),
		Password:  string(hash),
		Alias:     normalize.Alias(nu.Alias),
		Bio:       nu.Bio,
		Posts:     []primitive.ObjectID{},
		Followers: []primitive.ObjectID{},
		Following: []primitive.ObjectID{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, dupFault(err)
		}
		return models.User{}, err
	}

	u.Password = "" // the snapshot handed back carries no secret
	return u, nil
}

// DeleteByID removes a user document (hard delete, no tombstone).
func (s *Store) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddEdge adds member to one edge set of one user document. $addToSet
// makes the write idempotent: re-adding an existing member is a no-op.
func (s *Store) AddEdge(ctx context.Context, id primitive.ObjectID, field string, member primitive.ObjectID) error {
	return s.edgeUpdate(ctx, id, bson.M{
		"$addToSet": bson.M{field: member},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
}

// RemoveEdge removes member from one edge set of one user document.
// Pulling an absent member is a no-op, not an error.
func (s *Store) RemoveEdge(ctx context.Context, id primitive.ObjectID, field string, member primitive.ObjectID) error {
	return s.edgeUpdate(ctx, id, bson.M{
		"$pull": bson.M{field: member},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

func (s *Store) edgeUpdate(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func mapFindErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

// dupFault resolves which unique index a duplicate-key error hit.
func dupFault(err error) error {
	if strings.Contains(err.Error(), "uniq_users_alias") {
		return ErrDuplicateAlias
	}
	return ErrDuplicateEmail
}
