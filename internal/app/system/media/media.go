// Package media adapts an S3-compatible object store into the
// upload/delete surface the profile-image flow needs. The store is
// external; this package only guarantees that a successful Upload
// returns a durable object key and that Delete is safe to call on keys
// that no longer exist.
package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// Internal adapter interface to enable mocking without a real object store.
type objectAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// Wrapper to adapt *minio.Client to objectAPI.
type minioWrapper struct{ c *minio.Client }

func (w minioWrapper) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	return w.c.BucketExists(ctx, bucketName)
}
func (w minioWrapper) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return w.c.MakeBucket(ctx, bucketName, opts)
}
func (w minioWrapper) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	return w.c.PutObject(ctx, bucketName, objectName, reader, objectSize, opts)
}
func (w minioWrapper) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	return w.c.RemoveObject(ctx, bucketName, objectName, opts)
}

type Client struct {
	api    objectAPI
	bucket string
}

// NewClient creates a media client over a real *minio.Client.
func NewClient(ctx context.Context, client *minio.Client, bucket string) (*Client, error) {
	return NewClientWithAPI(ctx, minioWrapper{c: client}, bucket)
}

// NewClientWithAPI allows injecting a mockable API (used in tests).
func NewClientWithAPI(ctx context.Context, api objectAPI, bucket string) (*Client, error) {
	c := &Client{api: api, bucket: bucket}
	if err := c.ensureBucketExists(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}
	return c, nil
}

func (c *Client) ensureBucketExists(ctx context.Context) error {
	exists, err := c.api.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := c.api.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return nil
}

// Upload stores data under a key derived from the destination folder
// and the caller's hint plus a random suffix, and returns that key.
// Two uploads with the same hint never collide.
func (c *Client) Upload(ctx context.Context, data []byte, folder, publicIDHint string) (string, error) {
	key := ObjectKey(folder, publicIDHint)
	_, err := c.api.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}
	return key, nil
}

// Delete removes the object with the given key. Deleting a missing key
// is not an error.
func (c *Client) Delete(ctx context.Context, key string) error {
	if err := c.api.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// ObjectKey builds the storage key for an upload: the sanitized hint
// plus a random suffix, under the destination folder.
func ObjectKey(folder, hint string) string {
	base := strings.TrimSuffix(path.Base(hint), path.Ext(hint))
	if base == "" || base == "." {
		base = "image"
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	return path.Join(folder, base+"_"+suffix)
}
