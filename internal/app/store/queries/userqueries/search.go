package userqueries

import (
	"context"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dalemusser/instafram/internal/app/system/paging"
	"github.com/dalemusser/instafram/internal/app/system/projection"
)

// Search returns one page of users matching the free-text query against
// the name+alias text index. The query is quoted so multi-word input is
// matched as a phrase, not OR-ed word by word. Sort is (relevance desc,
// created_at desc) with the same newest-wins tie-break as the ranking.
func Search(ctx context.Context, db *mongo.Database, query string, page int) ([]projection.PublicUser, error) {
	// strconv.Quote produces the escaped, quoted phrase form the $text
	// operator expects for adjacency matching.
	phrase := strconv.Quote(query)

	pipeline := []bson.M{
		{"$match": bson.M{"$text": bson.M{"$search": phrase}}},
		{"$sort": bson.D{
			{Key: "score", Value: bson.M{"$meta": "textScore"}},
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
