// Package userqueries provides the aggregation pipelines behind ranked
// discovery and user search.
//
// Both pipelines are re-evaluated on every call: postCount is derived
// from the posts array at query time, so a pre-materialized ranking
// would go stale the moment content changes. Freshness over a window is
// the cache layer's job, not the store's.
package userqueries

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dalemusser/instafram/internal/app/system/paging"
	"github.com/dalemusser/instafram/internal/app/system/projection"
)

// listProjection is the public list-row shape produced by both
// pipelines. The password and email never enter the stage.
var listProjection = bson.M{
	"_id":        1,
	"name":       1,
	"alias":      1,
	"bio":        1,
	"image":      1,
	"postCount":  1,
	"created_at": 1,
}

// TopCreators returns one page of users ranked by content volume.
// Sort is (postCount desc, created_at desc): the created_at tie-break
// makes the ordering deterministic, with the newer account winning ties.
func TopCreators(ctx context.Context, db *mongo.Database, page int) ([]projection.PublicUser, error) {
	pipeline := []bson.M{
		{"$addFields": bson.M{"postCount": bson.M{"$size": "$posts"}}},
		{"$sort": bson.D{
			{Key: "postCount", Value: -1},
			{Key: "created_at", Value: -1},
		}},
		{"$skip": paging.Skip(page)},
		{"$limit": paging.Limit()},
		{"$project": listProjection},
	}

	cur, err := db.Collection("users").Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	rows := []projection.PublicUser{}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
