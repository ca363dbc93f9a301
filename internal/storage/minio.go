// Package storage wraps the MinIO object store used for mission
// documents (delivery receipts, condition reports, photos).
package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Client is a bucket-scoped MinIO client. It satisfies the document
// store contract of the mission module.
type Client struct {
	client *minio.Client
	bucket string
}

// NewClient connects to MinIO and makes sure the bucket exists.
func NewClient(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*Client, error) {
	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	exists, err := minioClient.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := minioClient.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
		log.Printf("Created object store bucket: %s", bucket)
	}

	return &Client{client: minioClient, bucket: bucket}, nil
}

// Upload stores an object under the given key.
func (c *Client) Upload(ctx context.Context, objectKey, contentType string, body io.Reader, size int64) error {
	_, err := c.client.PutObject(ctx, c.bucket, objectKey, body, size,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("failed to upload object %s: %w", objectKey, err)
	}
	return nil
}

// PresignedURL generates a temporary download URL for an object.
func (c *Client) PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	presignedURL, err := c.client.PresignedGetObject(ctx, c.bucket, objectKey, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL for %s: %w", objectKey, err)
	}
	return presignedURL.String(), nil
}
