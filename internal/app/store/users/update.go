package userstore

import (
	"context"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dalemusser/instafram/internal/domain/models"
)

// UpdateByID applies a partial update: only the fields present in patch
// change, and nested objects merge key-by-key rather than being
// replaced wholesale. A patch of {"social": {"twitter": "x"}} becomes
// {$set: {"social.twitter": "x"}}, so a sibling social.github survives.
// Returns the post-update snapshot.
func (s *Store) UpdateByID(ctx context.Context, id primitive.ObjectID, patch map[string]any) (*models.User, error) {
	set := flattenPatch(patch)
	set["updated_at"] = time.Now().UTC()

	var u models.User
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(noSecret),
	).Decode(&u)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return nil, dupFault(err)
		}
		return nil, mapFindErr(err)
	}
	return &u, nil
}

// flattenPatch converts nested maps into dotted $set paths, which is
// what gives UpdateByID its deep-merge semantics.
func flattenPatch(patch map[string]any) bson.M {
	out := bson.M{}
	flattenInto(out, "", patch)
	return out
}

func flattenInto(out bson.M, prefix string, m map[string]any) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch nested := v.(type) {
		case map[string]any:
			flattenInto(out, key, nested)
		case map[string]string:
			for nk, nv := range nested {
				out[key+"."+nk] = nv
			}
		default:
			out[key] = v
		}
	}
}
