package users

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/instafram/internal/app/store/users"
	"github.com/dalemusser/instafram/internal/app/system/projection"
	"github.com/dalemusser/instafram/internal/domain/models"
)

// fakeStore is an in-memory Store with call counters and injectable
// failures. Edge writes are mutex-guarded because the follow toggle
// issues them from two goroutines.
type fakeStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
	calls map[string]int

	createErr     error
	updateErr     error
	addEdgeErr    func(id primitive.ObjectID, field string) error
	removeEdgeErr func(id primitive.ObjectID, field string) error

	topRows    []projection.PublicUser
	searchRows []projection.PublicUser
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: map[primitive.ObjectID]*models.User{},
		calls: map[string]int{},
	}
}

func (f *fakeStore) seed(name, alias string) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := &models.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     alias + "@example.com",
		Alias:     alias,
		Posts:     []primitive.ObjectID{},
		Followers: []primitive.ObjectID{},
		Following: []primitive.ObjectID{},
	}
	f.users[u.ID] = u
	return snapshot(u)
}

func (f *fakeStore) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// snapshot copies a user so callers cannot mutate stored state.
func snapshot(u *models.User) *models.User {
	cp := *u
	cp.Posts = append([]primitive.ObjectID{}, u.Posts...)
	cp.Followers = append([]primitive.ObjectID{}, u.Followers...)
	cp.Following = append([]primitive.ObjectID{}, u.Following...)
	if u.Social != nil {
		cp.Social = map[string]string{}
		for k, v := range u.Social {
			cp.Social[k] = v
		}
	}
	return &cp
}

func (f *fakeStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["GetByID"]++
	u, ok := f.users[id]
	if !ok {
		return nil, userstore.ErrNotFound
	}
	return snapshot(u), nil
}

func (f *fakeStore) GetByAlias(_ context.Context, alias string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["GetByAlias"]++
	for _, u := range f.users {
		if u.Alias == alias {
			return snapshot(u), nil
		}
	}
	return nil, userstore.ErrNotFound
}

func (f *fakeStore) Create(_ context.Context, nu userstore.NewUser) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["Create"]++
	if f.createErr != nil {
		return models.User{}, f.createErr
	}
	u := models.User{
		ID:        primitive.NewObjectID(),
		Name:      nu.Name,
		Email:     nu.Email,
		Alias:     nu.Alias,
		Bio:       nu.Bio,
		Posts:     []primitive.ObjectID{},
		Followers: []primitive.ObjectID{},
		Following: []primitive.ObjectID{},
	}
	f.users[u.ID] = snapshot(&u)
	return u, nil
}

func (f *fakeStore) UpdateByID(_ context.Context, id primitive.ObjectID, patch map[string]any) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["UpdateByID"]++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, userstore.ErrNotFound
	}
	for k, v := range patch {
		switch k {
		case "name":
			u.Name = v.(string)
		case "alias":
			u.Alias = v.(string)
		case "bio":
			u.Bio = v.(string)
		case "image":
			u.Image = v.(string)
		case "social":
			if u.Social == nil {
				u.Social = map[string]string{}
			}
			for sk, sv := range v.(map[string]string) {
				u.Social[sk] = sv
			}
		}
	}
	return snapshot(u), nil
}

func (f *fakeStore) DeleteByID(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["DeleteByID"]++
	if _, ok := f.users[id]; !ok {
		return userstore.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeStore) ListByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["ListByIDs"]++
	var out []models.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, *snapshot(u))
		}
	}
	return out, nil
}

func (f *fakeStore) AddEdge(_ context.Context, id primitive.ObjectID, field string, member primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["AddEdge"]++
	if f.addEdgeErr != nil {
		if err := f.addEdgeErr(id, field); err != nil {
			return err
		}
	}
	u, ok := f.users[id]
	if !ok {
		return userstore.ErrNotFound
	}
	set := edgeSet(u, field)
	for _, m := range *set {
		if m == member {
			return nil
		}
	}
	*set = append(*set, member)
	return nil
}

func (f *fakeStore) RemoveEdge(_ context.Context, id primitive.ObjectID, field string, member primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["RemoveEdge"]++
	if f.removeEdgeErr != nil {
		if err := f.removeEdgeErr(id, field); err != nil {
			return err
		}
	}
	u, ok := f.users[id]
	if !ok {
		return userstore.ErrNotFound
	}
	set := edgeSet(u, field)
	kept := (*set)[:0]
	for _, m := range *set {
		if m != member {
			kept = append(kept, m)
		}
	}
	*set = kept
	return nil
}

func edgeSet(u *models.User, field string) *[]primitive.ObjectID {
	if field == userstore.EdgeFollowers {
		return &u.Followers
	}
	return &u.Following
}

func (f *fakeStore) TopCreators(_ context.Context, page int) ([]projection.PublicUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["TopCreators"]++
	return f.topRows, nil
}

func (f *fakeStore) Search(_ context.Context, query string, page int) ([]projection.PublicUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["Search"]++
	return f.searchRows, nil
}

// fakeCache is a map-backed Cache recording population and invalidation.
type fakeCache struct {
	mu   sync.Mutex
	m    map[string][]byte
	sets int
}

func newFakeCache() *fakeCache {
	return &fakeCache{m: map[string][]byte{}}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.m[key]
	return raw, ok
}

func (c *fakeCache) Set(_ context.Context, key string, payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.m[key] = payload
}

func (c *fakeCache) Invalidate(_ context.Context, keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.m, k)
	}
}

func (c *fakeCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.m[key]
	return ok
}

// fakeMedia records uploads and deletions against the blob store.
type fakeMedia struct {
	mu        sync.Mutex
	n         int
	uploads   []string
	deleted   []string
	uploadErr error
	deleteErr error
}

func (m *fakeMedia) Upload(_ context.Context, data []byte, folder, hint string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	m.n++
	key := fmt.Sprintf("%s/%s_%d", folder, hint, m.n)
	m.uploads = append(m.uploads, key)
	return key, nil
}

func (m *fakeMedia) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *fakeMedia) deletedKeys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.deleted...)
}
