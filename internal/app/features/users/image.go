package users

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dalemusser/instafram/internal/app/system/faults"
	"github.com/dalemusser/instafram/internal/domain/models"
)

// mediaFolder is the destination folder for profile images.
const mediaFolder = "instafram/users"

// ImageUpload carries the raw bytes and original filename of a new
// profile image. The filename only seeds the public-ID hint.
type ImageUpload struct {
	Data     []byte
	Filename string
}

// replaceImage runs the first half of the image-replacement sequence:
// the upload and the current-user fetch run concurrently and are both
// awaited before anything else happens.
//
// Outcomes:
//   - upload failed: nothing was written, fail Upstream.
//   - user gone: the fresh blob is orphaned, delete it best-effort and
//     fail with the fetch error.
//   - both fine: return the new key and the previous key. The caller
//     must write the metadata referencing the new key BEFORE deleting
//     the old blob — if that write fails, the old image stays both in
//     storage and referenced, so the account never loses its image.
func (s *Service) replaceImage(ctx context.Context, userID primitive.ObjectID, img *ImageUpload) (newKey, oldKey string, err error) {
	if s.media == nil {
		return "", "", faults.Upstream("media storage not configured", nil)
	}

	type uploadResult struct {
		key string
		err error
	}
	uploadCh := make(chan uploadResult, 1)
	go func() {
		key, err := s.media.Upload(ctx, img.Data, mediaFolder, img.Filename)
		uploadCh <- uploadResult{key, err}
	}()

	var current *models.User
	current, fetchErr := s.store.GetByID(ctx, userID)
	up := <-uploadCh

	if up.err != nil {
		return "", "", faults.Upstream("image upload failed", up.err)
	}
	if fetchErr != nil {
		if derr := s.media.Delete(ctx, up.key); derr != nil {
			s.log.Warn("orphaned image blob after missing user",
				zap.String("image", up.key), zap.Error(derr))
		}
		return "", "", fetchErr
	}

	return up.key, current.Image, nil
}
