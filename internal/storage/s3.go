package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chartmuseum/storage"

	"github.com/andresuchdata/demandplan/internal/config"
)

// Client implements ObjectStorage on top of a chartmuseum storage backend.
type Client struct {
	backend storage.Backend
	name    string
}

// NewS3Client builds a Client backed by chartmuseum's Amazon S3 backend, which
// also serves S3-compatible providers through path-style addressing.
func NewS3Client(cfg config.StorageConfig) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("storage endpoint must be provided")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("storage credentials must be provided")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket must be provided")
	}

	endpoint := normalizeEndpoint(cfg.Endpoint, cfg.UseSSL)

	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	os.Setenv("AWS_ACCESS_KEY_ID", cfg.AccessKey)
	os.Setenv("AWS_SECRET_ACCESS_KEY", cfg.SecretKey)
	os.Setenv("AWS_REGION", region)
	os.Setenv("AWS_DEFAULT_REGION", region)

	backend := storage.NewAmazonS3BackendWithOptions(
		cfg.Bucket,
		"", // no prefix
		region,
		endpoint,
		"",
		&storage.AmazonS3Options{
			S3ForcePathStyle: awsBool(true),
		},
	)

	return &Client{backend: backend, name: "s3"}, nil
}

// NewLocalClient stores objects under rootDir on the local filesystem.
func NewLocalClient(rootDir string) *Client {
	return &Client{
		backend: storage.NewLocalFilesystemBackend(rootDir),
		name:    "local",
	}
}

// ListObjects lists all objects for a given prefix.
func (c *Client) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	files, err := c.backend.ListObjects(prefix)
	if err != nil {
		return nil, fmt.Errorf("%s list failed: %w", c.name, err)
	}
	results := make([]ObjectInfo, 0, len(files))
	for _, object := range files {
		results = append(results, ObjectInfo{
			Key:  object.Path,
			Size: int64(len(object.Content)),
		})
	}
	return results, nil
}

// ReadObject returns the object's bytes.
func (c *Client) ReadObject(ctx context.Context, key string) ([]byte, error) {
	object, err := c.backend.GetObject(key)
	if err != nil {
		return nil, fmt.Errorf("%s get %s failed: %w", c.name, key, err)
	}
	return object.Content, nil
}

// DownloadObject downloads an object to the provided destination path.
func (c *Client) DownloadObject(ctx context.Context, key, destPath string) error {
	content, err := c.ReadObject(ctx, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("failed creating directory for %s: %w", destPath, err)
	}
	if err := os.WriteFile(destPath, content, 0o644); err != nil {
		return fmt.Errorf("failed writing %s: %w", destPath, err)
	}
	return nil
}

// UploadObject writes data under key, replacing any existing object.
func (c *Client) UploadObject(ctx context.Context, key string, data []byte) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%s upload: empty key", c.name)
	}
	if err := c.backend.PutObject(key, data); err != nil {
		return fmt.Errorf("%s put %s failed: %w", c.name, key, err)
	}
	return nil
}

var _ ObjectStorage = (*Client)(nil)

func normalizeEndpoint(raw string, useSSL bool) string {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	scheme := "https"
	if !useSSL {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s", scheme, strings.TrimPrefix(raw, "//"))
}

func awsBool(v bool) *bool {
	return &v
}
