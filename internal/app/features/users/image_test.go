package users

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/instafram/internal/app/system/faults"
)

func TestUpdateUser_ImageReplacement(t *testing.T) {
	store := newFakeStore()
	med := &fakeMedia{}
	svc := newTestService(store, newFakeCache(), med)
	ctx := context.Background()

	u := store.seed("Pic Person", "picperson")
	store.mu.Lock()
	store.users[u.ID].Image = "instafram/users/old_0"
	store.mu.Unlock()

	pub, err := svc.UpdateUser(ctx, u.ID, UpdateInput{
		Image: &ImageUpload{Data: []byte("jpegbytes"), Filename: "selfie.jpg"},
	})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}

	if pub.Image == "" || pub.Image == "instafram/users/old_0" {
		t.Fatalf("Image = %q, want a fresh key", pub.Image)
	}
	if got := med.deletedKeys(); len(got) != 1 || got[0] != "instafram/users/old_0" {
		t.Errorf("deleted blobs = %v, want only the replaced image", got)
	}
}

func TestUpdateUser_FirstImageDeletesNothing(t *testing.T) {
	store := newFakeStore()
	med := &fakeMedia{}
	svc := newTestService(store, newFakeCache(), med)
	ctx := context.Background()

	u := store.seed("No Pic Yet", "nopicyet")

	pub, err := svc.UpdateUser(ctx, u.ID, UpdateInput{
		Image: &ImageUpload{Data: []byte("jpegbytes"), Filename: "first.jpg"},
	})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if pub.Image == "" {
		t.Fatalf("Image not set")
	}
	if got := med.deletedKeys(); len(got) != 0 {
		t.Errorf("deleted blobs = %v, want none", got)
	}
}

func TestUpdateUser_MetadataFailureKeepsOldImage(t *testing.T) {
	store := newFakeStore()
	med := &fakeMedia{}
	svc := newTestService(store, newFakeCache(), med)
	ctx := context.Background()

	u := store.seed("Pic Person", "picperson")
	store.mu.Lock()
	store.users[u.ID].Image = "instafram/users/old_0"
	store.mu.Unlock()

	store.updateErr = errors.New("write concern failure")

	_, err := svc.UpdateUser(ctx, u.ID, UpdateInput{
		Image: &ImageUpload{Data: []byte("jpegbytes"), Filename: "selfie.jpg"},
	})
	if err == nil {
		t.Fatalf("UpdateUser succeeded despite metadata failure")
	}

	// The account still references old_0, so that blob must survive;
	// only the unreferenced fresh upload is cleaned up.
	deleted := med.deletedKeys()
	for _, key := range deleted {
		if key == "instafram/users/old_0" {
			t.Fatalf("referenced image deleted after failed metadata write")
		}
	}
	if len(med.uploads) != 1 || len(deleted) != 1 || deleted[0] != med.uploads[0] {
		t.Errorf("uploads = %v, deleted = %v; want the fresh blob cleaned up", med.uploads, deleted)
	}
}

func TestUpdateUser_ImageForMissingUser(t *testing.T) {
	store := newFakeStore()
	med := &fakeMedia{}
	svc := newTestService(store, newFakeCache(), med)

	_, err := svc.UpdateUser(context.Background(), primitive.NewObjectID(), UpdateInput{
		Image: &ImageUpload{Data: []byte("jpegbytes"), Filename: "selfie.jpg"},
	})
	if !faults.IsKind(err, faults.KindNotFound) {
		t.Fatalf("err = %v, want NotFound fault", err)
	}
	// The upload may have landed before the fetch failed; it must not
	// stay orphaned.
	if len(med.uploads) == 1 {
		if got := med.deletedKeys(); len(got) != 1 || got[0] != med.uploads[0] {
			t.Errorf("orphaned blob not cleaned up: uploads = %v, deleted = %v", med.uploads, got)
		}
	}
}

func TestUpdateUser_UploadFailure(t *testing.T) {
	store := newFakeStore()
	med := &fakeMedia{uploadErr: errors.New("bucket unreachable")}
	svc := newTestService(store, newFakeCache(), med)

	u := store.seed("Pic Person", "picperson")

	_, err := svc.UpdateUser(context.Background(), u.ID, UpdateInput{
		Image: &ImageUpload{Data: []byte("jpegbytes"), Filename: "selfie.jpg"},
	})
	if !faults.IsKind(err, faults.KindUpstream) {
		t.Fatalf("err = %v, want Upstream fault", err)
	}
	if store.count("UpdateByID") != 0 {
		t.Errorf("metadata written despite failed upload")
	}
}

func TestUpdateUser_ImageWithoutMediaStore(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, newFakeCache(), nil)

	u := store.seed("Pic Person", "picperson")

	_, err := svc.UpdateUser(context.Background(), u.ID, UpdateInput{
		Image: &ImageUpload{Data: []byte("jpegbytes"), Filename: "selfie.jpg"},
	})
	if !faults.IsKind(err, faults.KindUpstream) {
		t.Fatalf("err = %v, want Upstream fault", err)
	}
}
