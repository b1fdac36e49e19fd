package minio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/storage"
)

// Client stores product images in a MinIO (or any S3-compatible) bucket.
type Client struct {
	client    *miniogo.Client
	bucket    string
	publicURL string
}

var _ storage.Store = (*Client)(nil)

// NewClient connects to MinIO and creates the bucket when it does not exist yet.
func NewClient(ctx context.Context, cfg config.MinIOConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("minio endpoint is required")
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("minio bucket is required")
	}

	raw, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}

	exists, err := raw.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("checking minio bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := raw.MakeBucket(ctx, cfg.Bucket, miniogo.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("creating minio bucket %q: %w", cfg.Bucket, err)
		}
	}

	if logg != nil {
		ctx = logg.WithFields(ctx, map[string]any{"bucket": cfg.Bucket, "created": !exists})
		logg.Info(ctx, "minio client initialized")
	}

	return &Client{
		client:    raw,
		bucket:    cfg.Bucket,
		publicURL: publicBase(cfg),
	}, nil
}

// Put uploads the object and returns its public URL.
func (c *Client) Put(ctx context.Context, obj storage.Object) (string, error) {
	if c == nil || c.client == nil {
		return "", errors.New("minio client not initialized")
	}
	_, err := c.client.PutObject(ctx, c.bucket, obj.Key, obj.Body, obj.Size, miniogo.PutObjectOptions{
		ContentType: obj.ContentType,
	})
	if err != nil {
		return "", fmt.Errorf("uploading %q: %w", obj.Key, err)
	}
	return c.publicURL + "/" + obj.Key, nil
}

// Delete removes the object; a missing object is not an error.
func (c *Client) Delete(ctx context.Context, key string) error {
	if c == nil || c.client == nil {
		return errors.New("minio client not initialized")
	}
	if key == "" {
		return nil
	}
	if err := c.client.RemoveObject(ctx, c.bucket, key, miniogo.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("removing %q: %w", key, err)
	}
	return nil
}

// Ping verifies the bucket is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errors.New("minio client not initialized")
	}
	exists, err := c.client.BucketExists(ctx, c.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("bucket %q does not exist", c.bucket)
	}
	return nil
}

func publicBase(cfg config.MinIOConfig) string {
	if base := strings.TrimRight(strings.TrimSpace(cfg.PublicURL), "/"); base != "" {
		return base
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
}
