// Package projection whitelists which user fields are externally
// visible, independent of what is persisted.
//
// PublicUser deliberately has no email or password field: those can
// only leave the process through the explicit with-secret store query,
// never through a projected view.
package projection

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/instafram/internal/domain/models"
)

// FieldSet is an allow-list of projected field names.
type FieldSet map[string]struct{}

// NewFieldSet builds a FieldSet from field names.
func NewFieldSet(fields ...string) FieldSet {
	s := make(FieldSet, len(fields))
	for _, f := range fields {
		s[f] = struct{}{}
	}
	return s
}

// Has reports whether the set allows the given field.
func (s FieldSet) Has(field string) bool {
	_, ok := s[field]
	return ok
}

// ProfileFields is the allow-list for single-profile responses.
var ProfileFields = NewFieldSet(
	"name", "alias", "bio", "image", "social",
	"posts", "followers", "following",
	"created_at", "updated_at",
)

// ListFields is the allow-list for ranked and searched list rows. The
// edge sets are omitted; list rows carry the derived post count
// instead.
var ListFields = NewFieldSet(
	"name", "alias", "bio", "image", "created_at",
)

// PublicUser is the externally visible shape of a user.
type PublicUser struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Alias string             `bson:"alias" json:"alias"`
	Bio   string             `bson:"bio,omitempty" json:"bio,omitempty"`
	Image string             `bson:"image,omitempty" json:"image,omitempty"`

	Social map[string]string `bson:"social,omitempty" json:"social,omitempty"`

	Posts     []primitive.ObjectID `bson:"posts,omitempty" json:"posts,omitempty"`
	Followers []primitive.ObjectID `bson:"followers,omitempty" json:"followers,omitempty"`
	Following []primitive.ObjectID `bson:"following,omitempty" json:"following,omitempty"`

	// PostCount is derived (size of posts) and only present on list
	// rows produced by the ranking pipelines.
	PostCount int64 `bson:"postCount,omitempty" json:"post_count,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// Project copies the allowed fields of source into a PublicUser. The ID
// is always carried; everything else obeys the allow-list. The
// transform is pure: source is never modified.
func Project(fields FieldSet, source *models.User) PublicUser {
	p := PublicUser{ID: source.ID}
	if fields.Has("name") {
		p.Name = source.Name
	}
	if fields.Has("alias") {
		p.Alias = source.Alias
	}
	if fields.Has("bio") {
		p.Bio = source.Bio
	}
	if fields.Has("image") {
		p.Image = source.Image
	}
	if fields.Has("social") && len(source.Social) > 0 {
		social := make(map[string]string, len(source.Social))
		for k, v := range source.Social {
			social[k] = v
		}
		p.Social = social
	}
	if fields.Has("posts") {
		p.Posts = cloneIDs(source.Posts)
	}
	if fields.Has("followers") {
		p.Followers = cloneIDs(source.Followers)
	}
	if fields.Has("following") {
		p.Following = cloneIDs(source.Following)
	}
	if fields.Has("created_at") {
		p.CreatedAt = source.CreatedAt
	}
	if fields.Has("updated_at") {
		p.UpdatedAt = source.UpdatedAt
	}
	return p
}

func cloneIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, len(ids))
	copy(out, ids)
	return out
}
