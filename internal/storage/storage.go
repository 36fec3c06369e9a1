package storage

import (
	"context"
	"errors"
	"io"
	"strings"
)

//go:generate mockgen -source=storage.go -destination=mocks/mock_storage.go -package=mocks

var ErrForeignURL = errors.New("url does not belong to the bucket")

// FileStorage defines the interface for object storage operations.
type FileStorage interface {
	// Upload stores body under bucket/key and returns the public URL of the object.
	Upload(ctx context.Context, bucket, key, contentType string, body io.Reader, size int64) (string, error)

	// Delete removes the object served at publicURL from bucket.
	Delete(ctx context.Context, bucket, publicURL string) error
}

// PublicURL joins the base URL, bucket and key.
func PublicURL(baseURL, bucket, key string) string {
	return strings.TrimRight(baseURL, "/") + "/" + bucket + "/" + key
}

// KeyFromURL recovers the object key of a URL built by PublicURL.
func KeyFromURL(baseURL, bucket, publicURL string) (string, error) {
	prefix := strings.TrimRight(baseURL, "/") + "/" + bucket + "/"
	if !strings.HasPrefix(publicURL, prefix) || len(publicURL) == len(prefix) {
		return "", ErrForeignURL
	}
	return strings.TrimPrefix(publicURL, prefix), nil
}
