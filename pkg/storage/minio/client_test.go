package minio

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/pkg/config"
)

func TestPublicBase(t *testing.T) {
	assert.Equal(t, "http://localhost:9000/images", publicBase(config.MinIOConfig{Endpoint: "localhost:9000", Bucket: "images"}))
	assert.Equal(t, "https://s3.example.com/images", publicBase(config.MinIOConfig{Endpoint: "s3.example.com", Bucket: "images", UseSSL: true}))
	assert.Equal(t, "https://cdn.example.com", publicBase(config.MinIOConfig{Endpoint: "s3.example.com", Bucket: "images", PublicURL: "https://cdn.example.com/"}))
}

func TestNewClientValidatesConfig(t *testing.T) {
	_, err := NewClient(context.Background(), config.MinIOConfig{Bucket: "images"}, nil)
	require.Error(t, err)

	_, err = NewClient(context.Background(), config.MinIOConfig{Endpoint: "localhost:9000"}, nil)
	require.Error(t, err)
}

func TestNilClientErrors(t *testing.T) {
	var c *Client
	assert.Error(t, c.Ping(context.Background()))
	assert.Error(t, c.Delete(context.Background(), "products/a.png"))
}
