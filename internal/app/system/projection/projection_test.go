package projection

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/instafram/internal/domain/models"
)

func sampleUser() *models.User {
	return &models.User{
		ID:        primitive.NewObjectID(),
		Name:      "Jane Doe",
		Email:     "jane@example.com",
		Password:  "$2a$10$notarealhash",
		Alias:     "janedoe",
		Bio:       "hello",
		Image:     "instafram/users/pic_abc",
		Social:    map[string]string{"twitter": "jane", "github": "janedoe"},
		Posts:     []primitive.ObjectID{primitive.NewObjectID()},
		Followers: []primitive.ObjectID{primitive.NewObjectID()},
		Following: []primitive.ObjectID{primitive.NewObjectID()},
		CreatedAt: time.Now().Add(-time.Hour),
		UpdatedAt: time.Now(),
	}
}

func TestProject_ProfileFields(t *testing.T) {
	u := sampleUser()
	p := Project(ProfileFields, u)

	if p.ID != u.ID {
		t.Error("ID should always be carried")
	}
	if p.Name != u.Name || p.Alias != u.Alias || p.Bio != u.Bio {
		t.Error("profile fields should be copied")
	}
	if len(p.Followers) != 1 || len(p.Following) != 1 || len(p.Posts) != 1 {
		t.Error("edge sets should be present in the profile view")
	}
	if p.Social["github"] != "janedoe" {
		t.Error("social map should be copied")
	}
}

func TestProject_ListFields(t *testing.T) {
	u := sampleUser()
	p := Project(ListFields, u)

	if p.Name != u.Name || p.Alias != u.Alias {
		t.Error("list fields should be copied")
	}
	if p.Followers != nil || p.Following != nil || p.Posts != nil {
		t.Error("edge sets must not be present in list rows")
	}
	if p.Social != nil {
		t.Error("social must not be present in list rows")
	}
}

// The public shape must never marshal the password hash or the raw
// email, regardless of the allow-list in play.
func TestProject_NeverLeaksSecrets(t *testing.T) {
	u := sampleUser()
	for name, fields := range map[string]FieldSet{
		"profile": ProfileFields,
		"list":    ListFields,
	} {
		p := Project(fields, u)
		raw, err := json.Marshal(p)
		if err != nil {
			t.Fatalf("%s: marshal failed: %v", name, err)
		}
		body := string(raw)
		if strings.Contains(body, u.Email) {
			t.Errorf("%s view leaks email", name)
		}
		if strings.Contains(body, u.Password) {
			t.Errorf("%s view leaks password hash", name)
		}
	}
}

func TestProject_Pure(t *testing.T) {
	u := sampleUser()
	p := Project(ProfileFields, u)

	// Mutating the projection must not touch the source snapshot.
	p.Followers[0] = primitive.NewObjectID()
	p.Social["twitter"] = "tampered"

	if u.Social["twitter"] != "jane" {
		t.Error("projection shares the social map with the source")
	}
	if p.Followers[0] == u.Followers[0] {
		t.Error("expected follower slices to be independent")
	}
}
