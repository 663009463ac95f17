// Package users implements the account/social-graph operations:
// profile reads, ranked discovery, search, profile updates with image
// replacement, and the follow/unfollow toggle.
package users

import (
	"context"
	"encoding/json"

	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dalemusser/instafram/internal/app/store/users"
	"github.com/dalemusser/instafram/internal/app/system/cache"
	"github.com/dalemusser/instafram/internal/app/system/faults"
	"github.com/dalemusser/instafram/internal/app/system/normalize"
	"github.com/dalemusser/instafram/internal/app/system/projection"
	"github.com/dalemusser/instafram/internal/domain/models"
)

// Store is the slice of the user store this feature consumes. The
// concrete implementation is userstore.Store; tests substitute fakes.
type Store interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByAlias(ctx context.Context, alias string) (*models.User, error)
	Create(ctx context.Context, nu userstore.NewUser) (models.User, error)
	UpdateByID(ctx context.Context, id primitive.ObjectID, patch map[string]any) (*models.User, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	AddEdge(ctx context.Context, id primitive.ObjectID, field string, member primitive.ObjectID) error
	RemoveEdge(ctx context.Context, id primitive.ObjectID, field string, member primitive.ObjectID) error
	TopCreators(ctx context.Context, page int) ([]projection.PublicUser, error)
	Search(ctx context.Context, query string, page int) ([]projection.PublicUser, error)
}

// Cache is the advisory cache in front of the read-heavy operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, payload []byte)
	Invalidate(ctx context.Context, keys ...string)
}

// Media is the external blob store holding profile images.
type Media interface {
	Upload(ctx context.Context, data []byte, folder, publicIDHint string) (string, error)
	Delete(ctx context.Context, key string) error
}

// ServiceOptions tunes operation behavior.
type ServiceOptions struct {
	// FollowRetryAttempts bounds retries of the surviving half of a
	// follow/unfollow write pair before the operation is downgraded to
	// an integrity failure.
	FollowRetryAttempts int
}

type Service struct {
	store Store
	cache Cache
	media Media
	opts  ServiceOptions
	log   *zap.Logger

	bioPolicy *bluemonday.Policy
}

func NewService(store Store, cch Cache, med Media, opts ServiceOptions, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.FollowRetryAttempts <= 0 {
		opts.FollowRetryAttempts = 3
	}
	return &Service{
		store:     store,
		cache:     cch,
		media:     med,
		opts:      opts,
		log:       logger,
		bioPolicy: bluemonday.StrictPolicy(),
	}
}

// GetUser returns the public profile for an ID or alias, cache-aside.
// A profile may be cached under both its ID and its normalized alias,
// depending on which identifier callers use.
func (s *Service) GetUser(ctx context.Context, idOrAlias string) (projection.PublicUser, error) {
	// Alias lookups are keyed on the normalized form, matching what the
	// store queries and what the write paths invalidate. Keying on the
	// caller's raw casing would strand entries no write can evict.
	lookup := idOrAlias
	if _, err := primitive.ObjectIDFromHex(idOrAlias); err != nil {
		lookup = normalize.Alias(idOrAlias)
	}
	key := cache.UserKey(lookup)
	if raw, ok := s.cache.Get(ctx, key); ok {
		var pub projection.PublicUser
		if err := json.Unmarshal(raw, &pub); err == nil {
			return pub, nil
		}
		// Undecodable payloads are dropped and refetched.
		s.cache.Invalidate(ctx, key)
	}

	u, err := s.resolve(ctx, lookup)
	if err != nil {
		return projection.PublicUser{}, err
	}

	pub := projection.Project(projection.ProfileFields, u)
	s.populate(ctx, key, pub)
	return pub, nil
}

// GetTopCreators returns one page of the creator ranking, cache-aside.
func (s *Service) GetTopCreators(ctx context.Context, page int) ([]projection.PublicUser, error) {
	key := cache.TopCreatorsKey(page)
	if rows, ok := s.cachedList(ctx, key); ok {
		return rows, nil
	}

	rows, err := s.store.TopCreators(ctx, page)
	if err != nil {
		return nil, err
	}
	s.populate(ctx, key, rows)
	return rows, nil
}

// SearchUsers returns one page of text-search matches, cache-aside.
func (s *Service) SearchUsers(ctx context.Context, query string, page int) ([]projection.PublicUser, error) {
	if query == "" {
		return []projection.PublicUser{}, nil
	}

	key := cache.SearchKey(query, page)
	if rows, ok := s.cachedList(ctx, key); ok {
		return rows, nil
	}

	rows, err := s.store.Search(ctx, query, page)
	if err != nil {
		return nil, err
	}
	s.populate(ctx, key, rows)
	return rows, nil
}

// CreateUser registers a new account and returns its public profile.
func (s *Service) CreateUser(ctx context.Context, nu userstore.NewUser) (projection.PublicUser, error) {
	nu.Bio = s.bioPolicy.Sanitize(nu.Bio)
	u, err := s.store.Create(ctx, nu)
	if err != nil {
		return projection.PublicUser{}, err
	}
	pub := projection.Project(projection.ProfileFields, &u)
	s.populate(ctx, cache.UserKey(u.ID.Hex()), pub)
	return pub, nil
}

// DeleteUser hard-deletes an account and drops its cached profile. The
// user's image blob is removed best-effort after the document is gone.
func (s *Service) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteByID(ctx, id); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, cache.UserKey(id.Hex()), cache.UserKey(u.Alias))

	if u.Image != "" && s.media != nil {
		if err := s.media.Delete(ctx, u.Image); err != nil {
			s.log.Warn("orphaned image blob after account deletion",
				zap.String("user_id", id.Hex()),
				zap.String("image", u.Image),
				zap.Error(err))
		}
	}
	return nil
}

// GetFollowers expands a user's followers set into public list rows.
func (s *Service) GetFollowers(ctx context.Context, id primitive.ObjectID) ([]projection.PublicUser, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.expand(ctx, u.Followers)
}

// GetFollowing expands a user's following set into public list rows.
func (s *Service) GetFollowing(ctx context.Context, id primitive.ObjectID) ([]projection.PublicUser, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.expand(ctx, u.Following)
}

// UpdateInput holds the optional fields of a profile update. Nil means
// "leave unchanged"; Social merges key-by-key into the stored map.
type UpdateInput struct {
	Name   *string
	Alias  *string
	Bio    *string
	Social map[string]string
	Image  *ImageUpload
}

// UpdateUser applies a partial profile update. An alias change is
// checked against other users first; a new image goes through the
// replacement sequence in image.go. On success the cached profile is
// refreshed (the same request path usually reads it straight back).
func (s *Service) UpdateUser(ctx context.Context, userID primitive.ObjectID, in UpdateInput) (projection.PublicUser, error) {
	// The pre-update snapshot supplies the current alias: its cache key
	// holds this profile too and must be dropped even when the alias
	// itself changes (after which no read would ever repopulate it).
	current, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return projection.PublicUser{}, err
	}

	patch := map[string]any{}
	staleKeys := []string{cache.UserKey(userID.Hex()), cache.UserKey(current.Alias)}

	if in.Alias != nil {
		alias := normalize.Alias(*in.Alias)
		other, err := s.store.GetByAlias(ctx, alias)
		switch {
		case err == nil && other.ID != userID:
			return projection.PublicUser{}, userstore.ErrDuplicateAlias
		case err != nil && !faults.IsKind(err, faults.KindNotFound):
			return projection.PublicUser{}, err
		}
		patch["alias"] = alias
		staleKeys = append(staleKeys, cache.UserKey(alias))
	}
	if in.Name != nil {
		patch["name"] = normalize.Name(*in.Name)
	}
	if in.Bio != nil {
		patch["bio"] = s.bioPolicy.Sanitize(*in.Bio)
	}
	if len(in.Social) > 0 {
		patch["social"] = in.Social
	}

	var oldImage string
	if in.Image != nil {
		newKey, old, err := s.replaceImage(ctx, userID, in.Image)
		if err != nil {
			return projection.PublicUser{}, err
		}
		patch["image"] = newKey
		oldImage = old
	}

	updated, err := s.store.UpdateByID(ctx, userID, patch)
	if err != nil {
		// The new blob is orphaned; drop it best-effort. The previous
		// image is untouched — it is only removed after the document
		// durably references its replacement.
		if key, ok := patch["image"].(string); ok && s.media != nil {
			if derr := s.media.Delete(ctx, key); derr != nil {
				s.log.Warn("orphaned image blob after failed update",
					zap.String("image", key), zap.Error(derr))
			}
		}
		return projection.PublicUser{}, err
	}

	if oldImage != "" && oldImage != updated.Image && s.media != nil {
		if err := s.media.Delete(ctx, oldImage); err != nil {
			s.log.Warn("orphaned image blob after replacement",
				zap.String("user_id", userID.Hex()),
				zap.String("image", oldImage),
				zap.Error(err))
		}
	}

	pub := projection.Project(projection.ProfileFields, updated)

	// Refresh the ID-keyed profile, drop the alias-keyed entries (both
	// the pre-update alias and, on a change, the new one).
	s.cache.Invalidate(ctx, staleKeys...)
	s.populate(ctx, cache.UserKey(userID.Hex()), pub)

	return pub, nil
}

// resolve treats ObjectID-shaped identifiers as IDs and everything else
// as an alias.
func (s *Service) resolve(ctx context.Context, idOrAlias string) (*models.User, error) {
	if oid, err := primitive.ObjectIDFromHex(idOrAlias); err == nil {
		return s.store.GetByID(ctx, oid)
	}
	return s.store.GetByAlias(ctx, idOrAlias)
}

func (s *Service) expand(ctx context.Context, ids []primitive.ObjectID) ([]projection.PublicUser, error) {
	rows, err := s.store.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]projection.PublicUser, 0, len(rows))
	for i := range rows {
		out = append(out, projection.Project(projection.ListFields, &rows[i]))
	}
	return out, nil
}

// populate stores a payload under key with the cache's jittered TTL.
func (s *Service) populate(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		s.log.Warn("cache payload marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	s.cache.Set(ctx, key, raw)
}

func (s *Service) cachedList(ctx context.Context, key string) ([]projection.PublicUser, bool) {
	raw, ok := s.cache.Get(ctx, key)
	if !ok {
		return nil, false
	}
	var rows []projection.PublicUser
	if err := json.Unmarshal(raw, &rows); err != nil {
		s.cache.Invalidate(ctx, key)
		return nil, false
	}
	return rows, true
}
