package userstore

import (
	"context"

	"github.com/dalemusser/instafram/internal/app/store/queries/userqueries"
	"github.com/dalemusser/instafram/internal/app/system/projection"
)

// TopCreators returns one page of the creator ranking in public
// list-row shape. See userqueries.TopCreators for pipeline semantics.
func (s *Store) TopCreators(ctx context.Context, page int) ([]projection.PublicUser, error) {
	return userqueries.TopCreators(ctx, s.db, page)
}

// Search returns one page of text-search results in public list-row
// shape. See userqueries.Search for pipeline semantics.
func (s *Store) Search(ctx context.Context, query string, page int) ([]projection.PublicUser, error) {
	return userqueries.Search(ctx, s.db, query, page)
}
