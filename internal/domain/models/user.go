package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a document in the users collection.
//
// NOTE:
//   - followers/following are denormalized bidirectional sets of user
//     IDs. The pair of writes that keeps them symmetric lives in the
//     users feature (graph toggle); the store only exposes the
//     single-document edge operations.
//   - posts holds IDs of content owned elsewhere; this service only
//     reads its cardinality when ranking creators.
type User struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"-"`

	// Password is the bcrypt hash. It is excluded from every outward
	// shape; only GetByEmailWithSecret decodes it.
	Password string `bson:"password" json:"-"`

	// Alias is the unique, lowercase, human-readable handle.
	Alias string `bson:"alias" json:"alias"`

	Bio   string `bson:"bio,omitempty" json:"bio,omitempty"`
	Image string `bson:"image,omitempty" json:"image,omitempty"`

	// Social holds optional per-network handles (e.g. "twitter",
	// "github"). Partial updates merge this map key-by-key.
	Social map[string]string `bson:"social,omitempty" json:"social,omitempty"`

	Posts     []primitive.ObjectID `bson:"posts" json:"posts"`
	Followers []primitive.ObjectID `bson:"followers" json:"followers"`
	Following []primitive.ObjectID `bson:"following" json:"following"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Follows reports whether target is in the user's following set.
func (u *User) Follows(target primitive.ObjectID) bool {
	for _, id := range u.Following {
		if id == target {
			return true
		}
	}
	return false
}
